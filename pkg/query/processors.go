package query

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/cuemby/burrow/pkg/message"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
)

type (
	addresses      = cache.MultipleSortedRecords[netip.Addr]
	names          = cache.MultipleSortedRecords[name.CaseFoldedName]
	mailServers    = cache.MultiplePrioritizedThenSortedRecords[cache.MailServer]
	texts          = cache.MultipleSortedRecords[cache.Text]
	services       = cache.MultiplePrioritizedThenWeightedRecords[cache.ServiceLocation]
	identifiers    = cache.MultiplePrioritizedThenWeightedRecords[cache.ResourceIdentifier]
	authorities    = cache.MultiplePrioritizedThenSortedRecords[cache.NamingAuthority]
	startOfAuth    = cache.Records[cache.StartOfAuthority]
	keys           = cache.Records[rdata.DNSKey]
	signers        = cache.Records[rdata.DelegationSigner]
	nameProcessor  = Processor[name.CaseFoldedName, names]
	addrProcessor  = Processor[netip.Addr, addresses]
	soaProcessor   = Processor[cache.StartOfAuthority, startOfAuth]
	keyProcessor   = Processor[rdata.DNSKey, keys]
	dsProcessor    = Processor[rdata.DelegationSigner, signers]
	naptrProcessor = Processor[cache.NamingAuthority, authorities]
)

func sortedAddresses(records []netip.Addr) addresses {
	return cache.NewMultipleSortedRecords(records, cache.CompareAddresses)
}

func sortedNames(records []name.CaseFoldedName) names {
	return cache.NewMultipleSortedRecords(records, cache.CompareNames)
}

func decodeName(decode func(rdata.ResourceData) (name.ParsedName, error)) func(message.ResourceRecord) (name.CaseFoldedName, error) {
	return func(rr message.ResourceRecord) (name.CaseFoldedName, error) {
		n, err := decode(rr.Data)
		if err != nil {
			return name.CaseFoldedName{}, err
		}
		return n.ToCaseFolded(), nil
	}
}

var A = &addrProcessor{
	Type:    rdata.TypeA,
	Decode:  func(rr message.ResourceRecord) (netip.Addr, error) { return rdata.DecodeA(rr.Data) },
	Collect: sortedAddresses,
	Slot:    cache.SlotA,
	Format:  netip.Addr.String,
	Cached:  (*cache.Cache).LookupA,
}

var AAAA = &addrProcessor{
	Type:    rdata.TypeAAAA,
	Decode:  func(rr message.ResourceRecord) (netip.Addr, error) { return rdata.DecodeAAAA(rr.Data) },
	Collect: sortedAddresses,
	Slot:    cache.SlotAAAA,
	Format:  netip.Addr.String,
	Cached:  (*cache.Cache).LookupAAAA,
}

var NS = &nameProcessor{
	Type:    rdata.TypeNS,
	Decode:  decodeName(rdata.DecodeNS),
	Collect: sortedNames,
	Slot:    cache.SlotNS,
	Format:  name.CaseFoldedName.String,
}

var PTR = &nameProcessor{
	Type:    rdata.TypePTR,
	Decode:  decodeName(rdata.DecodePTR),
	Collect: sortedNames,
	Slot:    cache.SlotPTR,
	Format:  name.CaseFoldedName.String,
}

var MX = &Processor[cache.MailServer, mailServers]{
	Type: rdata.TypeMX,
	Decode: func(rr message.ResourceRecord) (cache.MailServer, error) {
		mx, err := rdata.DecodeMX(rr.Data)
		if err != nil {
			return cache.MailServer{}, err
		}
		return cache.MailServer{Preference: mx.Preference, Exchange: mx.Exchange.ToCaseFolded()}, nil
	},
	Collect: func(records []cache.MailServer) mailServers {
		return cache.NewMultiplePrioritizedThenSortedRecords(records, cache.MailServerPreference, cache.CompareMailServers)
	},
	Slot: cache.SlotMX,
	Format: func(mx cache.MailServer) string {
		return fmt.Sprintf("%d %s", mx.Preference, mx.Exchange)
	},
}

var TXT = &Processor[cache.Text, texts]{
	Type: rdata.TypeTXT,
	Decode: func(rr message.ResourceRecord) (cache.Text, error) {
		txt, err := rdata.DecodeTXT(rr.Data)
		if err != nil {
			return nil, err
		}
		owned := make(cache.Text, len(txt))
		for i, s := range txt {
			owned[i] = string(s)
		}
		return owned, nil
	},
	Collect: func(records []cache.Text) texts {
		return cache.NewMultipleSortedRecords(records, cache.CompareTexts)
	},
	Slot: cache.SlotTXT,
	Format: func(txt cache.Text) string {
		quoted := make([]string, len(txt))
		for i, s := range txt {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, " ")
	},
}

var SRV = &Processor[cache.ServiceLocation, services]{
	Type: rdata.TypeSRV,
	Decode: func(rr message.ResourceRecord) (cache.ServiceLocation, error) {
		srv, err := rdata.DecodeSRV(rr.Data)
		if err != nil {
			return cache.ServiceLocation{}, err
		}
		return cache.ServiceLocation{Priority: srv.Priority, Weight: srv.Weight, Port: srv.Port, Target: srv.Target.ToCaseFolded()}, nil
	},
	Collect: func(records []cache.ServiceLocation) services {
		return cache.NewMultiplePrioritizedThenWeightedRecords(records, cache.ServiceLocationPriority, cache.ServiceLocationWeight, cache.CompareServiceLocations)
	},
	Slot: cache.SlotSRV,
	Format: func(s cache.ServiceLocation) string {
		return fmt.Sprintf("%d %d %d %s", s.Priority, s.Weight, s.Port, s.Target)
	},
}

var URI = &Processor[cache.ResourceIdentifier, identifiers]{
	Type: rdata.TypeURI,
	Decode: func(rr message.ResourceRecord) (cache.ResourceIdentifier, error) {
		uri, err := rdata.DecodeURI(rr.Data)
		if err != nil {
			return cache.ResourceIdentifier{}, err
		}
		return cache.ResourceIdentifier{Priority: uri.Priority, Weight: uri.Weight, Target: string(uri.Target)}, nil
	},
	Collect: func(records []cache.ResourceIdentifier) identifiers {
		return cache.NewMultiplePrioritizedThenWeightedRecords(records, cache.ResourceIdentifierPriority, cache.ResourceIdentifierWeight, cache.CompareResourceIdentifiers)
	},
	Slot: cache.SlotURI,
	Format: func(u cache.ResourceIdentifier) string {
		return fmt.Sprintf("%d %d %q", u.Priority, u.Weight, u.Target)
	},
}

var NAPTR = &naptrProcessor{
	Type: rdata.TypeNAPTR,
	Decode: func(rr message.ResourceRecord) (cache.NamingAuthority, error) {
		naptr, err := rdata.DecodeNAPTR(rr.Data)
		if err != nil {
			return cache.NamingAuthority{}, err
		}
		return cache.NamingAuthority{
			Order:       naptr.Order,
			Preference:  naptr.Preference,
			Flag:        naptr.Flag,
			Service:     naptr.Service,
			Regexp:      string(naptr.Regexp),
			Replacement: naptr.Replacement.ToCaseFolded(),
		}, nil
	},
	Collect: func(records []cache.NamingAuthority) authorities {
		return cache.NewMultiplePrioritizedThenSortedRecords(records, cache.NamingAuthorityOrder, cache.CompareNamingAuthorities)
	},
	Slot: cache.SlotNAPTR,
	Format: func(n cache.NamingAuthority) string {
		return fmt.Sprintf("%d %d %q %q %q %s", n.Order, n.Preference, n.Flag, n.Service.Tag, n.Regexp, n.Replacement)
	},
}

func ownSOA(soa rdata.StartOfAuthority) cache.StartOfAuthority {
	return cache.StartOfAuthority{
		PrimaryNameServer:  soa.PrimaryNameServer.ToCaseFolded(),
		ResponsibleMailbox: soa.ResponsibleMailbox.ToCaseFolded(),
		Serial:             soa.Serial,
		Refresh:            soa.Refresh,
		Retry:              soa.Retry,
		Expire:             soa.Expire,
		Minimum:            soa.Minimum,
	}
}

var SOA = &soaProcessor{
	Type: rdata.TypeSOA,
	Decode: func(rr message.ResourceRecord) (cache.StartOfAuthority, error) {
		soa, err := rdata.DecodeSOA(rr.Data)
		if err != nil {
			return cache.StartOfAuthority{}, err
		}
		return ownSOA(soa), nil
	},
	Collect: cache.NewRecords[cache.StartOfAuthority],
	Slot:    cache.SlotSOA,
	Format: func(s cache.StartOfAuthority) string {
		return fmt.Sprintf("%s %s %d %d %d %d %d", s.PrimaryNameServer, s.ResponsibleMailbox, s.Serial, s.Refresh, s.Retry, s.Expire, s.Minimum)
	},
}

var DNSKEY = &keyProcessor{
	Type: rdata.TypeDNSKEY,
	Decode: func(rr message.ResourceRecord) (rdata.DNSKey, error) {
		key, err := rdata.DecodeDNSKEY(rr.Data)
		if err != nil {
			return rdata.DNSKey{}, err
		}
		key.PublicKey = bytes.Clone(key.PublicKey)
		return key, nil
	},
	Collect: cache.NewRecords[rdata.DNSKey],
	Slot:    cache.SlotDNSKEY,
	Format: func(k rdata.DNSKey) string {
		return fmt.Sprintf("%d %d %d %s", k.Flags, k.Protocol, k.Algorithm, base64.StdEncoding.EncodeToString(k.PublicKey))
	},
}

var DS = &dsProcessor{
	Type: rdata.TypeDS,
	Decode: func(rr message.ResourceRecord) (rdata.DelegationSigner, error) {
		ds, err := rdata.DecodeDS(rr.Data)
		if err != nil {
			return rdata.DelegationSigner{}, err
		}
		ds.Digest = bytes.Clone(ds.Digest)
		return ds, nil
	},
	Collect: cache.NewRecords[rdata.DelegationSigner],
	Slot:    cache.SlotDS,
	Format: func(d rdata.DelegationSigner) string {
		return fmt.Sprintf("%d %d %d %s", d.KeyTag, d.Algorithm, d.DigestType, strings.ToUpper(hex.EncodeToString(d.Digest)))
	},
}

// Summary is a type-independent view of a Result for display
type Summary struct {
	Outcome       message.Outcome
	CanonicalName name.CaseFoldedName
	Records       []string
	Until         cache.CacheUntil
	Zone          name.CaseFoldedName
	Ignored       []error
}

// Handler is a Processor with its record type erased
type Handler interface {
	DataType() rdata.DataType
	Handle(c *cache.Cache, q message.Query, msg []byte, now wire.NanosecondsSinceUnixEpoch) (Summary, error)
}

func (p *Processor[T, C]) DataType() rdata.DataType {
	return p.Type
}

// Handle processes msg and formats what was committed
func (p *Processor[T, C]) Handle(c *cache.Cache, q message.Query, msg []byte, now wire.NanosecondsSinceUnixEpoch) (Summary, error) {
	result, err := p.Process(c, q, msg, now)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{
		Outcome:       result.Outcome,
		CanonicalName: result.CanonicalName,
		Until:         result.Until,
		Zone:          result.Negative.Zone,
		Ignored:       result.Ignored,
	}
	for _, record := range result.Records {
		summary.Records = append(summary.Records, p.Format(record))
	}
	return summary, nil
}

var handlers = map[rdata.DataType]Handler{
	rdata.TypeA:      A,
	rdata.TypeAAAA:   AAAA,
	rdata.TypeNS:     NS,
	rdata.TypePTR:    PTR,
	rdata.TypeMX:     MX,
	rdata.TypeTXT:    TXT,
	rdata.TypeSRV:    SRV,
	rdata.TypeURI:    URI,
	rdata.TypeNAPTR:  NAPTR,
	rdata.TypeSOA:    SOA,
	rdata.TypeDNSKEY: DNSKEY,
	rdata.TypeDS:     DS,
}

// ForType returns the processor for a query type
func ForType(t rdata.DataType) (Handler, bool) {
	h, ok := handlers[t]
	return h, ok
}

// Types lists the query types with a processor, in numeric order
func Types() []rdata.DataType {
	types := make([]rdata.DataType, 0, len(handlers))
	for t := range handlers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
