package message

import (
	"errors"
	"fmt"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
)

// AnswerVisitor receives the answer records of the queried type owned by
// the most canonical name, in wire order. Returning an *rdata.IgnoredError
// skips the record; any other error rejects the response.
type AnswerVisitor interface {
	DataType() rdata.DataType
	VisitAnswer(rr ResourceRecord) error
}

// parser carries the state of one Parse call
type parser struct {
	msg      []byte
	query    Query
	visitor  AnswerVisitor
	response *Response
	records  []ResourceRecord
}

// Parse validates msg as the response to q and hands matching answer
// records to visitor. A validation failure at any step aborts with a typed
// error; the visitor must discard what it accumulated in that case.
//
// The steps run in order: header, question, record framing, OPT and the
// extended response code, duplicates, answer, authority, additional. The
// response code is only judged after the additional section has been
// searched for OPT because its high eight bits live there.
func Parse(msg []byte, q Query, visitor AnswerVisitor) (*Response, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ParseDuration)

	p := &parser{msg: msg, query: q, visitor: visitor, response: &Response{}}
	stage, err := p.run()
	if err != nil {
		metrics.ResponseErrorsTotal.WithLabelValues(stage).Inc()
		logger := log.WithQuery("message", q.Name.String(), q.Type.String())
		logger.Debug().
			Str("stage", stage).
			Err(err).
			Msg("response rejected")
		return nil, err
	}

	metrics.ResponsesTotal.WithLabelValues(p.response.Outcome.String()).Inc()
	return p.response, nil
}

func (p *parser) run() (string, error) {
	steps := []struct {
		stage string
		run   func() error
	}{
		{"header", p.header},
		{"question", p.question},
		{"records", p.frame},
		{"edns", p.edns},
		{"duplicates", p.duplicates},
		{"answer", p.answer},
		{"authority", p.authority},
		{"additional", p.additional},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return step.stage, err
		}
	}
	p.outcome()
	return "", nil
}

func (p *parser) header() error {
	h, err := ParseHeader(p.msg)
	if err != nil {
		return err
	}
	if err := h.validate(p.query, len(p.msg)); err != nil {
		return err
	}
	p.response.Header = h
	return nil
}

func (p *parser) question() error {
	if p.response.Header.QuestionCount != 1 {
		return fmt.Errorf("%d questions: %w", p.response.Header.QuestionCount, ErrQuestionCount)
	}
	qname, offset, err := name.ParseName(p.msg, HeaderSize, len(p.msg))
	if err != nil {
		return fmt.Errorf("question name: %w", err)
	}
	qtype, offset, err := wire.ReadUint16(p.msg, offset)
	if err != nil {
		return err
	}
	qclass, _, err := wire.ReadUint16(p.msg, offset)
	if err != nil {
		return err
	}
	if !qname.EqualFolded(p.query.Name) || rdata.DataType(qtype) != p.query.Type || qclass != p.query.Class {
		return fmt.Errorf("%s %s class %d: %w", qname, rdata.DataType(qtype), qclass, ErrQuestionMismatch)
	}
	p.response.Question = qname
	return nil
}

// frame locates every record without decoding its data
func (p *parser) frame() error {
	h := p.response.Header
	// The question is exactly one name plus four bytes.
	_, offset, _ := name.ParseName(p.msg, HeaderSize, len(p.msg))
	offset += 4

	// Counts are already bounded by the message length.
	p.records = make([]ResourceRecord, 0, h.recordCount())
	sections := []struct {
		section Section
		count   uint16
	}{
		{SectionAnswer, h.AnswerCount},
		{SectionAuthority, h.AuthorityCount},
		{SectionAdditional, h.AdditionalCount},
	}
	for _, s := range sections {
		for i := 0; i < int(s.count); i++ {
			rr, next, err := parseRecord(p.msg, offset)
			if err != nil {
				return &RecordError{Section: s.section, Index: i, Type: rr.Type, Err: err}
			}
			rr.Section, rr.Index = s.section, i
			if rr.Type.IsQueryOnly() {
				return recordError(rr, ErrQueryOnlyType)
			}
			p.records = append(p.records, rr)
			offset = next
		}
	}
	if offset != len(p.msg) {
		return fmt.Errorf("%d bytes: %w", len(p.msg)-offset, ErrTrailingBytes)
	}
	return nil
}

func (p *parser) edns() error {
	edns, err := locateOPT(p.records)
	if err != nil {
		return err
	}
	code := combineResponseCode(p.response.Header.ResponseCode, edns)
	if edns.Present && edns.Version != 0 && code != RcodeBadVers {
		return fmt.Errorf("version %d: %w", edns.Version, ErrUnsupportedEDNSVersion)
	}
	p.response.EDNS = edns
	p.response.ResponseCode = code
	return code.classify()
}

// duplicates rejects a (type, class, owner, data) tuple repeated across the
// answer and authority sections. The additional section is checked on its
// own since glue may repeat an answer record.
func (p *parser) duplicates() error {
	seen := make(map[string]struct{}, len(p.records))
	var buf []byte
	additional := false
	for _, rr := range p.records {
		if rr.Type == rdata.TypeOPT {
			continue
		}
		if rr.Section == SectionAdditional && !additional {
			additional = true
			clear(seen)
		}
		buf = rr.canonicalKey(buf)
		if _, ok := seen[string(buf)]; ok {
			return &DuplicateResourceRecordError{Type: rr.Type, Section: rr.Section, Index: rr.Index}
		}
		seen[string(buf)] = struct{}{}
	}
	return nil
}

func (p *parser) section(s Section) []ResourceRecord {
	start := 0
	for start < len(p.records) && p.records[start].Section < s {
		start++
	}
	end := start
	for end < len(p.records) && p.records[end].Section == s {
		end++
	}
	return p.records[start:end]
}

func (p *parser) answer() error {
	answers := p.section(SectionAnswer)
	for _, rr := range answers {
		if rr.Class != p.query.Class {
			return recordError(rr, ErrUnexpectedClass)
		}
	}

	// A CNAME query is answered by the CNAME record itself.
	following := p.query.Type != rdata.TypeCNAME
	var aliases []name.Alias
	var ttls []wire.TimeToLiveInSeconds
	for _, rr := range answers {
		if !following || rr.Type != rdata.TypeCNAME {
			continue
		}
		target, err := rdata.DecodeCNAME(rr.Data)
		if err != nil {
			return recordError(rr, err)
		}
		aliases = append(aliases, name.Alias{Owner: rr.Owner, Target: target})
		ttls = append(ttls, rr.TTL)
	}
	chain, err := name.AssembleChain(p.response.Question, aliases)
	if err != nil {
		return err
	}
	p.response.Chain = chain
	p.response.ChainTTLs = make([]wire.TimeToLiveInSeconds, 0, chain.Len())
	for _, link := range chain.Links() {
		for i, alias := range aliases {
			if alias.Owner.Equal(link.Owner) {
				p.response.ChainTTLs = append(p.response.ChainTTLs, ttls[i])
				break
			}
		}
	}

	tip := chain.MostCanonicalName()
	want := p.visitor.DataType()
	for _, rr := range answers {
		// DNAME and DNSSEC records in the answer are not cached.
		if rr.Type != want || (following && rr.Type == rdata.TypeCNAME) {
			continue
		}
		if !rr.Owner.Equal(tip) {
			return recordError(rr, fmt.Errorf("%s: %w", rr.Owner, ErrUnrelatedAnswer))
		}
		if err := p.visit(rr); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) visit(rr ResourceRecord) error {
	err := p.visitor.VisitAnswer(rr)
	if err == nil {
		p.response.Answers++
		return nil
	}
	if rdata.IsIgnored(err) {
		metrics.RecordsIgnoredTotal.WithLabelValues(rr.Type.String()).Inc()
		data, _ := rdata.DecodeRaw(rr.Data)
		p.response.Ignored = append(p.response.Ignored, &RecordError{
			Section: rr.Section,
			Index:   rr.Index,
			Type:    rr.Type,
			Err:     err,
			Data:    data,
		})
		return nil
	}
	return recordError(rr, err)
}

func (p *parser) authority() error {
	var delegation *Delegation
	for _, rr := range p.section(SectionAuthority) {
		if rr.Type != rdata.TypeSOA && rr.Type != rdata.TypeNS {
			continue
		}
		if rr.Class != p.query.Class {
			return recordError(rr, ErrUnexpectedClass)
		}
		if err := p.response.Chain.ValidateAuthoritySectionName(rr.Owner); err != nil {
			return recordError(rr, err)
		}

		switch rr.Type {
		case rdata.TypeSOA:
			if p.response.SOA != nil {
				return recordError(rr, ErrMultipleSOA)
			}
			soa, err := rdata.DecodeSOA(rr.Data)
			if err != nil {
				return recordError(rr, err)
			}
			p.response.SOA = &Authority{Zone: rr.Owner, TTL: rr.TTL, Record: soa}
		case rdata.TypeNS:
			target, err := rdata.DecodeNS(rr.Data)
			if err != nil {
				return recordError(rr, err)
			}
			if delegation == nil {
				delegation = &Delegation{Zone: rr.Owner}
			} else if !delegation.Zone.Equal(rr.Owner) {
				return recordError(rr, ErrMultipleDelegationPoints)
			}
			delegation.NameServers = append(delegation.NameServers, NameServer{Name: target, TTL: rr.TTL})
		}
	}
	p.response.Delegation = delegation
	return nil
}

// additional attaches glue addresses to the authority name servers
func (p *parser) additional() error {
	delegation := p.response.Delegation
	if delegation == nil {
		return nil
	}
	for _, rr := range p.section(SectionAdditional) {
		if rr.Type != rdata.TypeA && rr.Type != rdata.TypeAAAA {
			continue
		}
		for i := range delegation.NameServers {
			ns := &delegation.NameServers[i]
			if !ns.Name.Equal(rr.Owner) {
				continue
			}
			decode := rdata.DecodeA
			if rr.Type == rdata.TypeAAAA {
				decode = rdata.DecodeAAAA
			}
			addr, err := decode(rr.Data)
			if err != nil {
				return recordError(rr, err)
			}
			ns.Addresses = append(ns.Addresses, Glue{Address: addr, TTL: rr.TTL})
		}
	}
	return nil
}

func (p *parser) outcome() {
	r := p.response
	shape := negativeShape(r.SOA != nil, r.Delegation != nil)
	switch {
	case r.ResponseCode == RcodeNXDomain:
		r.Outcome, r.NegativeType = OutcomeNoDomain, shape
	case r.Answers > 0:
		r.Outcome = OutcomeAnswered
	case shape == NegativeReferral:
		r.Outcome = OutcomeReferral
	default:
		r.Outcome, r.NegativeType = OutcomeNoData, shape
	}
}

func negativeShape(soa, ns bool) NegativeResponseType {
	switch {
	case soa && ns:
		return NegativeSOAAndNS
	case soa:
		return NegativeSOAOnly
	case ns:
		return NegativeReferral
	}
	return NegativeNoAuthority
}

// IsTruncated reports whether err asks for the query to be retried over TCP
func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncatedRetryOverTCP)
}
