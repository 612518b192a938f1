package cache

import (
	"net/netip"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
)

// AddressSnapshot is one cached address set
type AddressSnapshot struct {
	Name      name.CaseFoldedName            `json:"name"`
	Type      rdata.DataType                 `json:"type"`
	Addresses []netip.Addr                   `json:"addresses"`
	Expires   wire.NanosecondsSinceUnixEpoch `json:"expires"`
}

// AliasSnapshot is one cached CNAME
type AliasSnapshot struct {
	Name    name.CaseFoldedName            `json:"name"`
	Target  name.CaseFoldedName            `json:"target"`
	Expires wire.NanosecondsSinceUnixEpoch `json:"expires"`
}

// NoDomainSnapshot is one cached NXDOMAIN
type NoDomainSnapshot struct {
	Name    name.CaseFoldedName            `json:"name"`
	Zone    name.CaseFoldedName            `json:"zone"`
	Expires wire.NanosecondsSinceUnixEpoch `json:"expires"`
}

// Snapshot is the part of the cache worth keeping across restarts
type Snapshot struct {
	Addresses []AddressSnapshot  `json:"addresses"`
	Aliases   []AliasSnapshot    `json:"aliases"`
	NoDomains []NoDomainSnapshot `json:"no_domains"`
}

// Len is the number of entries in the snapshot
func (s Snapshot) Len() int {
	return len(s.Addresses) + len(s.Aliases) + len(s.NoDomains)
}

// Export copies every address, alias and NXDOMAIN entry still valid at now
func (c *Cache) Export(now wire.NanosecondsSinceUnixEpoch) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Snapshot
	for owner, entry := range c.entries {
		for _, slot := range []struct {
			t    rdata.DataType
			slot *Slot[MultipleSortedRecords[netip.Addr]]
		}{
			{rdata.TypeA, &entry.A},
			{rdata.TypeAAAA, &entry.AAAA},
		} {
			if slot.slot.state != slotPositive || !slot.slot.until.IsValidAt(now) {
				continue
			}
			s.Addresses = append(s.Addresses, AddressSnapshot{
				Name:      owner,
				Type:      slot.t,
				Addresses: slot.slot.records.Values(),
				Expires:   slot.slot.until.Instant(),
			})
		}
	}
	for owner, alias := range c.aliases {
		if alias.until.IsValidAt(now) {
			s.Aliases = append(s.Aliases, AliasSnapshot{Name: owner, Target: alias.target, Expires: alias.until.Instant()})
		}
	}
	for owner, negative := range c.noDomains {
		if negative.Until.IsValidAt(now) {
			s.NoDomains = append(s.NoDomains, NoDomainSnapshot{Name: owner, Zone: negative.Zone, Expires: negative.Until.Instant()})
		}
	}
	return s
}

// Restore stores every snapshot entry that has not expired by now and
// reports how many were restored
func (c *Cache) Restore(s Snapshot, now wire.NanosecondsSinceUnixEpoch) int {
	restored := 0
	for _, a := range s.Addresses {
		if !now.Before(a.Expires) {
			continue
		}
		slot := SlotA
		if a.Type == rdata.TypeAAAA {
			slot = SlotAAAA
		}
		Store(c, a.Name, slot, NewMultipleSortedRecords(a.Addresses, CompareAddresses), Cached(a.Expires))
		restored++
	}
	for _, a := range s.Aliases {
		if now.Before(a.Expires) {
			c.StoreAlias(a.Name, a.Target, Cached(a.Expires))
			restored++
		}
	}
	for _, n := range s.NoDomains {
		if now.Before(n.Expires) {
			c.StoreNoDomain(n.Name, NegativeCacheUntil{Until: Cached(n.Expires), Zone: n.Zone})
			restored++
		}
	}
	return restored
}
