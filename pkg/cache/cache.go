package cache

import (
	"fmt"
	"net/netip"
	"sync"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/wire"
)

// Kind is the result of a cache lookup
type Kind uint8

const (
	Miss Kind = iota
	Hit
	NoData
	NoDomain
)

func (k Kind) String() string {
	switch k {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case NoData:
		return "no_data"
	case NoDomain:
		return "no_domain"
	}
	return fmt.Sprintf("kind%d", uint8(k))
}

// Answer is what the cache knows about a (name, type) pair
type Answer[C any] struct {
	Kind    Kind
	Records C
	// CanonicalName is where cached aliases led; the queried name otherwise
	CanonicalName name.CaseFoldedName
	Until         CacheUntil
	// Zone scopes a negative answer
	Zone name.CaseFoldedName
	// Fixed is set when the answer came from a static entry
	Fixed bool
}

// Cache maps (owner, type) to positive, negative or unknown. A single
// writer completes each store before the next begins; readers share the
// lock.
type Cache struct {
	mu        sync.RWMutex
	fixed     map[name.CaseFoldedName]FixedDomainCacheEntry
	aliases   map[name.CaseFoldedName]aliasEntry
	noDomains map[name.CaseFoldedName]NegativeCacheUntil
	entries   map[name.CaseFoldedName]*QueryTypesCache
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		fixed:     make(map[name.CaseFoldedName]FixedDomainCacheEntry),
		aliases:   make(map[name.CaseFoldedName]aliasEntry),
		noDomains: make(map[name.CaseFoldedName]NegativeCacheUntil),
		entries:   make(map[name.CaseFoldedName]*QueryTypesCache),
	}
}

// AddFixed installs a static entry; a later call for the same name replaces it
func (c *Cache) AddFixed(owner name.CaseFoldedName, entry FixedDomainCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fixed[owner] = entry
}

// Fixed returns a copy of the static entries
func (c *Cache) Fixed() map[name.CaseFoldedName]FixedDomainCacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[name.CaseFoldedName]FixedDomainCacheEntry, len(c.fixed))
	for k, v := range c.fixed {
		out[k] = v
	}
	return out
}

func (c *Cache) entry(owner name.CaseFoldedName) *QueryTypesCache {
	e, ok := c.entries[owner]
	if !ok {
		e = &QueryTypesCache{}
		c.entries[owner] = e
	}
	return e
}

// Store replaces the slot of owner with a positive record set
func Store[C any](c *Cache, owner name.CaseFoldedName, slot func(*QueryTypesCache) *Slot[C], records C, until CacheUntil) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exists(owner)
	slot(c.entry(owner)).storePositive(records, until)
}

// StoreNoData replaces the slot of owner with a NODATA marker
func StoreNoData[C any](c *Cache, owner name.CaseFoldedName, slot func(*QueryTypesCache) *Slot[C], negative NegativeCacheUntil) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exists(owner)
	slot(c.entry(owner)).storeNegative(negative)
}

// exists drops the NXDOMAIN markers of owner and its ancestors; data at a
// name proves every name above it exists
func (c *Cache) exists(owner name.CaseFoldedName) {
	for candidate, ok := owner, true; ok; candidate, ok = candidate.Parent() {
		delete(c.noDomains, candidate)
	}
}

// StoreNoDomain records that owner does not exist. Every slot of owner is
// dropped since NXDOMAIN covers all types.
func (c *Cache) StoreNoDomain(owner name.CaseFoldedName, negative NegativeCacheUntil) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, owner)
	delete(c.aliases, owner)
	c.noDomains[owner] = negative
}

// StoreAlias records a CNAME from owner to target
func (c *Cache) StoreAlias(owner, target name.CaseFoldedName, until CacheUntil) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exists(owner)
	c.aliases[owner] = aliasEntry{target: target, until: until}
}

// Lookup consults the cache for owner. Fixed entries are checked first and
// aliases are followed up to the CNAME chain limit.
func Lookup[C any](c *Cache, owner name.CaseFoldedName, slot func(*QueryTypesCache) *Slot[C], now wire.NanosecondsSinceUnixEpoch) Answer[C] {
	return lookup(c, owner, slot, nil, now)
}

// LookupA is Lookup for IPv4 addresses, answered by fixed addresses first
func (c *Cache) LookupA(owner name.CaseFoldedName, now wire.NanosecondsSinceUnixEpoch) Answer[MultipleSortedRecords[netip.Addr]] {
	return lookup(c, owner, SlotA, fixedAddresses(func(f FixedDomainCacheEntry) []netip.Addr { return f.IPv4 }), now)
}

// LookupAAAA is Lookup for IPv6 addresses, answered by fixed addresses first
func (c *Cache) LookupAAAA(owner name.CaseFoldedName, now wire.NanosecondsSinceUnixEpoch) Answer[MultipleSortedRecords[netip.Addr]] {
	return lookup(c, owner, SlotAAAA, fixedAddresses(func(f FixedDomainCacheEntry) []netip.Addr { return f.IPv6 }), now)
}

func fixedAddresses(family func(FixedDomainCacheEntry) []netip.Addr) func(FixedDomainCacheEntry) (MultipleSortedRecords[netip.Addr], bool) {
	return func(f FixedDomainCacheEntry) (MultipleSortedRecords[netip.Addr], bool) {
		addresses := family(f)
		return NewMultipleSortedRecords(addresses, CompareAddresses), len(addresses) > 0
	}
}

// fixedRecords, when set, answers from address entries of the fixed table
func lookup[C any](c *Cache, owner name.CaseFoldedName, slot func(*QueryTypesCache) *Slot[C], fixedRecords func(FixedDomainCacheEntry) (C, bool), now wire.NanosecondsSinceUnixEpoch) Answer[C] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	answer := resolve(c, owner, slot, fixedRecords, now)
	result := answer.Kind.String()
	if answer.Fixed {
		result = "fixed"
	}
	metrics.CacheLookupsTotal.WithLabelValues(result).Inc()
	return answer
}

func resolve[C any](c *Cache, owner name.CaseFoldedName, slot func(*QueryTypesCache) *Slot[C], fixedRecords func(FixedDomainCacheEntry) (C, bool), now wire.NanosecondsSinceUnixEpoch) Answer[C] {
	current := owner
	for hops := 0; ; hops++ {
		miss := Answer[C]{Kind: Miss, CanonicalName: current}

		if fixed, ok := c.fixed[current]; ok {
			if fixed.IsAlias() {
				if hops == name.MaximumChainLength {
					return miss
				}
				current = *fixed.Alias
				continue
			}
			if fixedRecords != nil {
				answer := Answer[C]{Kind: NoData, CanonicalName: current, Fixed: true}
				if records, ok := fixedRecords(fixed); ok {
					answer.Kind, answer.Records = Hit, records
				}
				return answer
			}
		}

		if alias, ok := c.aliases[current]; ok && alias.until.IsValidAt(now) {
			if hops == name.MaximumChainLength {
				return miss
			}
			current = alias.target
			continue
		}

		if negative, ok := c.noDomainCovering(current, now); ok {
			return Answer[C]{Kind: NoDomain, CanonicalName: current, Until: negative.Until, Zone: negative.Zone}
		}

		entry, ok := c.entries[current]
		if !ok {
			return miss
		}
		s := slot(entry)
		if !s.until.IsValidAt(now) {
			return miss
		}
		switch s.state {
		case slotPositive:
			return Answer[C]{Kind: Hit, Records: s.records, CanonicalName: current, Until: s.until}
		case slotNegative:
			return Answer[C]{Kind: NoData, CanonicalName: current, Until: s.until, Zone: s.negative.Zone}
		}
		return miss
	}
}

// noDomainCovering finds an unexpired NXDOMAIN for n or an ancestor; a
// name below a nonexistent name does not exist either (RFC 8020)
func (c *Cache) noDomainCovering(n name.CaseFoldedName, now wire.NanosecondsSinceUnixEpoch) (NegativeCacheUntil, bool) {
	for candidate, ok := n, true; ok; candidate, ok = candidate.Parent() {
		if negative, found := c.noDomains[candidate]; found && negative.Until.IsValidAt(now) {
			return negative, true
		}
	}
	return NegativeCacheUntil{}, false
}

// ZoneOf finds the nearest enclosing zone with an unexpired cached SOA, so a
// negative answer for one name can inform another in the same zone
// (RFC 2308 section 5)
func (c *Cache) ZoneOf(n name.CaseFoldedName, now wire.NanosecondsSinceUnixEpoch) (name.CaseFoldedName, StartOfAuthority, CacheUntil, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for candidate, ok := n, true; ok; candidate, ok = candidate.Parent() {
		entry, found := c.entries[candidate]
		if !found {
			continue
		}
		s := entry.SOA
		if s.state == slotPositive && s.until.IsValidAt(now) && s.records.Len() > 0 {
			return candidate, s.records.Values()[0], s.until, true
		}
	}
	return name.CaseFoldedName{}, StartOfAuthority{}, CacheUntil{}, false
}

// Purge drops everything expired at now and reports how many slots went
func (c *Cache) Purge(now wire.NanosecondsSinceUnixEpoch) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	purged := 0
	for owner, alias := range c.aliases {
		if !alias.until.IsValidAt(now) {
			delete(c.aliases, owner)
			purged++
		}
	}
	for owner, negative := range c.noDomains {
		if !negative.Until.IsValidAt(now) {
			delete(c.noDomains, owner)
			purged++
		}
	}
	for owner, entry := range c.entries {
		if entry.purge(now) {
			delete(c.entries, owner)
			purged++
		}
	}
	return purged
}

func purgeSlot[C any](s *Slot[C], now wire.NanosecondsSinceUnixEpoch) bool {
	if s.state != slotUnknown && !s.until.IsValidAt(now) {
		*s = Slot[C]{}
	}
	return s.state == slotUnknown
}

// purge resets expired slots and reports whether the entry is now empty
func (q *QueryTypesCache) purge(now wire.NanosecondsSinceUnixEpoch) bool {
	empty := true
	for _, unknown := range []bool{
		purgeSlot(&q.NS, now),
		purgeSlot(&q.SOA, now),
		purgeSlot(&q.A, now),
		purgeSlot(&q.AAAA, now),
		purgeSlot(&q.PTR, now),
		purgeSlot(&q.MX, now),
		purgeSlot(&q.TXT, now),
		purgeSlot(&q.SRV, now),
		purgeSlot(&q.URI, now),
		purgeSlot(&q.NAPTR, now),
		purgeSlot(&q.DNSKEY, now),
		purgeSlot(&q.DS, now),
	} {
		empty = empty && unknown
	}
	return empty
}
