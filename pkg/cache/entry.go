package cache

import (
	"net/netip"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
)

type slotState uint8

const (
	slotUnknown slotState = iota
	slotPositive
	slotNegative
)

// Slot holds what is known about one (name, type) pair: nothing, a
// positive record set or a NODATA marker. Every store replaces it whole.
type Slot[C any] struct {
	state    slotState
	records  C
	until    CacheUntil
	negative NegativeCacheUntil
}

func (s *Slot[C]) storePositive(records C, until CacheUntil) {
	*s = Slot[C]{state: slotPositive, records: records, until: until}
}

func (s *Slot[C]) storeNegative(negative NegativeCacheUntil) {
	*s = Slot[C]{state: slotNegative, until: negative.Until, negative: negative}
}

// QueryTypesCache is the per-owner storage, one slot per query type
type QueryTypesCache struct {
	NS     Slot[MultipleSortedRecords[name.CaseFoldedName]]
	SOA    Slot[Records[StartOfAuthority]]
	A      Slot[MultipleSortedRecords[netip.Addr]]
	AAAA   Slot[MultipleSortedRecords[netip.Addr]]
	PTR    Slot[MultipleSortedRecords[name.CaseFoldedName]]
	MX     Slot[MultiplePrioritizedThenSortedRecords[MailServer]]
	TXT    Slot[MultipleSortedRecords[Text]]
	SRV    Slot[MultiplePrioritizedThenWeightedRecords[ServiceLocation]]
	URI    Slot[MultiplePrioritizedThenWeightedRecords[ResourceIdentifier]]
	NAPTR  Slot[MultiplePrioritizedThenSortedRecords[NamingAuthority]]
	DNSKEY Slot[Records[rdata.DNSKey]]
	DS     Slot[Records[rdata.DelegationSigner]]
}

// Slot accessors select one slot of a QueryTypesCache

func SlotNS(q *QueryTypesCache) *Slot[MultipleSortedRecords[name.CaseFoldedName]]       { return &q.NS }
func SlotSOA(q *QueryTypesCache) *Slot[Records[StartOfAuthority]]                       { return &q.SOA }
func SlotA(q *QueryTypesCache) *Slot[MultipleSortedRecords[netip.Addr]]                 { return &q.A }
func SlotAAAA(q *QueryTypesCache) *Slot[MultipleSortedRecords[netip.Addr]]              { return &q.AAAA }
func SlotPTR(q *QueryTypesCache) *Slot[MultipleSortedRecords[name.CaseFoldedName]]      { return &q.PTR }
func SlotMX(q *QueryTypesCache) *Slot[MultiplePrioritizedThenSortedRecords[MailServer]] { return &q.MX }
func SlotTXT(q *QueryTypesCache) *Slot[MultipleSortedRecords[Text]]                     { return &q.TXT }
func SlotSRV(q *QueryTypesCache) *Slot[MultiplePrioritizedThenWeightedRecords[ServiceLocation]] {
	return &q.SRV
}
func SlotURI(q *QueryTypesCache) *Slot[MultiplePrioritizedThenWeightedRecords[ResourceIdentifier]] {
	return &q.URI
}
func SlotNAPTR(q *QueryTypesCache) *Slot[MultiplePrioritizedThenSortedRecords[NamingAuthority]] {
	return &q.NAPTR
}
func SlotDNSKEY(q *QueryTypesCache) *Slot[Records[rdata.DNSKey]]       { return &q.DNSKEY }
func SlotDS(q *QueryTypesCache) *Slot[Records[rdata.DelegationSigner]] { return &q.DS }

// FixedDomainCacheEntry is a never-expiring entry from a static source such
// as /etc/hosts: either addresses or an alias
type FixedDomainCacheEntry struct {
	IPv4  []netip.Addr
	IPv6  []netip.Addr
	Alias *name.CaseFoldedName
}

// IsAlias reports whether the entry redirects to another name
func (f FixedDomainCacheEntry) IsAlias() bool {
	return f.Alias != nil
}

type aliasEntry struct {
	target name.CaseFoldedName
	until  CacheUntil
}
