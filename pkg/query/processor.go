package query

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/message"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
)

// ErrAlreadyFinished is returned by a second Finish on the same visitor
var ErrAlreadyFinished = errors.New("query processor already finished")

// Processor binds a query type to the owned record it produces and the
// cache slot it commits to. T is one record; C is the container a record
// set is stored in.
type Processor[T, C any] struct {
	Type rdata.DataType
	// Decode turns one answer record into an owned value
	Decode func(rr message.ResourceRecord) (T, error)
	// Collect builds the stored container from the decoded records
	Collect func(records []T) C
	// Slot selects where the container lives
	Slot func(*cache.QueryTypesCache) *cache.Slot[C]
	// Format renders one record for display
	Format func(T) string
	// Cached overrides the cache read, for types with fixed entries
	Cached func(c *cache.Cache, owner name.CaseFoldedName, now wire.NanosecondsSinceUnixEpoch) cache.Answer[C]
}

// Lookup reads the cached answer for owner
func (p *Processor[T, C]) Lookup(c *cache.Cache, owner name.CaseFoldedName, now wire.NanosecondsSinceUnixEpoch) cache.Answer[C] {
	if p.Cached != nil {
		return p.Cached(c, owner, now)
	}
	return cache.Lookup(c, owner, p.Slot, now)
}

// Answer converts a result into the form a cache lookup returns, for
// results that were not cacheable
func (p *Processor[T, C]) Answer(result Result[T]) cache.Answer[C] {
	answer := cache.Answer[C]{CanonicalName: result.CanonicalName, Until: result.Until}
	switch result.Outcome {
	case message.OutcomeAnswered:
		answer.Kind, answer.Records = cache.Hit, p.Collect(result.Records)
	case message.OutcomeNoData:
		answer.Kind, answer.Zone = cache.NoData, result.Negative.Zone
	case message.OutcomeNoDomain:
		answer.Kind, answer.Zone = cache.NoDomain, result.Negative.Zone
	}
	return answer
}

// Result is what one processed response committed
type Result[T any] struct {
	Outcome       message.Outcome
	CanonicalName name.CaseFoldedName
	Records       []T
	Until         cache.CacheUntil
	Negative      cache.NegativeCacheUntil
	Ignored       []error
}

// Visitor accumulates the answers of one response. It is created per
// response and finished exactly once.
type Visitor[T, C any] struct {
	processor *Processor[T, C]
	now       wire.NanosecondsSinceUnixEpoch
	records   []T
	until     cache.CacheUntil
	seen      bool
	finished  bool
}

// NewVisitor starts accumulating for a response received at now
func (p *Processor[T, C]) NewVisitor(now wire.NanosecondsSinceUnixEpoch) *Visitor[T, C] {
	return &Visitor[T, C]{processor: p, now: now}
}

func (v *Visitor[T, C]) DataType() rdata.DataType {
	return v.processor.Type
}

// VisitAnswer decodes one record and folds its TTL into the set's expiry
func (v *Visitor[T, C]) VisitAnswer(rr message.ResourceRecord) error {
	record, err := v.processor.Decode(rr)
	if err != nil {
		return err
	}
	v.records = append(v.records, record)

	until := cache.FromTimeToLive(v.now, rr.TTL)
	if !v.seen {
		v.until, v.seen = until, true
		return nil
	}
	// An inconsistent merge leaves the set uncacheable; the records still
	// answer this query.
	_ = v.until.Update(until)
	return nil
}

// Finish commits the response to c: the canonical name chain always, then
// the record set, NODATA, NXDOMAIN or referral
func (v *Visitor[T, C]) Finish(c *cache.Cache, resp *message.Response) (Result[T], error) {
	if v.finished {
		return Result[T]{}, ErrAlreadyFinished
	}
	v.finished = true

	commitChain(c, resp, v.now)

	canonical := resp.CanonicalName().ToCaseFolded()
	result := Result[T]{Outcome: resp.Outcome, CanonicalName: canonical, Ignored: resp.Ignored}
	switch resp.Outcome {
	case message.OutcomeAnswered:
		cache.Store(c, canonical, v.processor.Slot, v.processor.Collect(v.records), v.until)
		result.Records, result.Until = v.records, v.until
	case message.OutcomeNoData:
		result.Negative = commitSOA(c, resp, v.now)
		cache.StoreNoData(c, canonical, v.processor.Slot, result.Negative)
		result.Until = result.Negative.Until
	case message.OutcomeNoDomain:
		result.Negative = commitSOA(c, resp, v.now)
		c.StoreNoDomain(canonical, result.Negative)
		result.Until = result.Negative.Until
	case message.OutcomeReferral:
		commitDelegation(c, resp.Delegation, v.now)
		result.Until = cache.UseOnce(v.now)
	default:
		return result, fmt.Errorf("unknown outcome %s", resp.Outcome)
	}

	logger := log.WithQuery("query", canonical.String(), v.processor.Type.String())
	logger.Debug().
		Str("outcome", resp.Outcome.String()).
		Int("records", len(result.Records)).
		Int("chain", resp.Chain.Len()).
		Str("until", result.Until.String()).
		Msg("response committed")
	return result, nil
}

func commitChain(c *cache.Cache, resp *message.Response, now wire.NanosecondsSinceUnixEpoch) {
	for i, link := range resp.Chain.Links() {
		c.StoreAlias(link.Owner.ToCaseFolded(), link.Target.ToCaseFolded(), cache.FromTimeToLive(now, resp.ChainTTLs[i]))
	}
}

// commitSOA caches the proving SOA under its zone and returns the negative
// expiry it allows. Without an SOA a negative answer is used once (RFC 2308
// section 5).
func commitSOA(c *cache.Cache, resp *message.Response, now wire.NanosecondsSinceUnixEpoch) cache.NegativeCacheUntil {
	if resp.SOA == nil {
		return cache.NegativeCacheUntil{Until: cache.UseOnce(now), Zone: name.Root}
	}
	zone := resp.SOA.Zone.ToCaseFolded()
	cache.Store(c, zone, cache.SlotSOA, cache.NewRecords([]cache.StartOfAuthority{ownSOA(resp.SOA.Record)}), cache.FromTimeToLive(now, resp.SOA.TTL))
	return cache.NegativeCacheUntil{
		Until: cache.FromTimeToLive(now, resp.SOA.NegativeTimeToLive()),
		Zone:  zone,
	}
}

// commitDelegation caches the referral name servers and their glue
func commitDelegation(c *cache.Cache, delegation *message.Delegation, now wire.NanosecondsSinceUnixEpoch) {
	var servers []name.CaseFoldedName
	var until cache.CacheUntil
	for i, ns := range delegation.NameServers {
		servers = append(servers, ns.Name.ToCaseFolded())
		observed := cache.FromTimeToLive(now, ns.TTL)
		if i == 0 {
			until = observed
		} else {
			_ = until.Update(observed)
		}
		commitGlue(c, ns, now)
	}
	cache.Store(c, delegation.Zone.ToCaseFolded(), cache.SlotNS, cache.NewMultipleSortedRecords(servers, cache.CompareNames), until)
}

func commitGlue(c *cache.Cache, ns message.NameServer, now wire.NanosecondsSinceUnixEpoch) {
	var v4, v6 []netip.Addr
	var until4, until6 cache.CacheUntil
	for _, glue := range ns.Addresses {
		observed := cache.FromTimeToLive(now, glue.TTL)
		if glue.Address.Is4() {
			if len(v4) > 0 {
				_ = until4.Update(observed)
			} else {
				until4 = observed
			}
			v4 = append(v4, glue.Address)
			continue
		}
		if len(v6) > 0 {
			_ = until6.Update(observed)
		} else {
			until6 = observed
		}
		v6 = append(v6, glue.Address)
	}
	owner := ns.Name.ToCaseFolded()
	if len(v4) > 0 {
		cache.Store(c, owner, cache.SlotA, cache.NewMultipleSortedRecords(v4, cache.CompareAddresses), until4)
	}
	if len(v6) > 0 {
		cache.Store(c, owner, cache.SlotAAAA, cache.NewMultipleSortedRecords(v6, cache.CompareAddresses), until6)
	}
}

// Process parses msg as the response to q and commits it. A response that
// fails validation leaves the cache unchanged.
func (p *Processor[T, C]) Process(c *cache.Cache, q message.Query, msg []byte, now wire.NanosecondsSinceUnixEpoch) (Result[T], error) {
	v := p.NewVisitor(now)
	resp, err := message.Parse(msg, q, v)
	if err != nil {
		return Result[T]{}, err
	}
	return v.Finish(c, resp)
}
