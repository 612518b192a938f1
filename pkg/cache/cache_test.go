package cache

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addresses(values ...string) MultipleSortedRecords[netip.Addr] {
	addrs := make([]netip.Addr, 0, len(values))
	for _, v := range values {
		addrs = append(addrs, netip.MustParseAddr(v))
	}
	return NewMultipleSortedRecords(addrs, CompareAddresses)
}

func TestStoreAndLookup(t *testing.T) {
	c := New()
	owner := name.MustParse("example.com")
	Store(c, owner, SlotA, addresses("93.184.216.34"), FromTimeToLive(epoch, 300))

	answer := c.LookupA(owner, at(10))
	require.Equal(t, Hit, answer.Kind)
	assert.Equal(t, addresses("93.184.216.34"), answer.Records)
	assert.Equal(t, Cached(at(300)), answer.Until)
	assert.Equal(t, owner, answer.CanonicalName)

	assert.Equal(t, Miss, c.LookupA(owner, at(300)).Kind, "expired")
	assert.Equal(t, Miss, c.LookupAAAA(owner, at(10)).Kind, "other slot")
	assert.Equal(t, Miss, c.LookupA(name.MustParse("example.org"), at(10)).Kind)
}

func TestStoreUseOnceIsNotServed(t *testing.T) {
	c := New()
	owner := name.MustParse("example.com")
	Store(c, owner, SlotA, addresses("192.0.2.1"), FromTimeToLive(epoch, 0))
	assert.Equal(t, Miss, c.LookupA(owner, epoch).Kind)
}

func TestStoreReplacesSlot(t *testing.T) {
	c := New()
	owner := name.MustParse("example.com")
	Store(c, owner, SlotA, addresses("192.0.2.1", "192.0.2.2"), Cached(at(300)))
	Store(c, owner, SlotA, addresses("192.0.2.3"), Cached(at(60)))

	answer := c.LookupA(owner, epoch)
	assert.Equal(t, addresses("192.0.2.3"), answer.Records)
	assert.Equal(t, Cached(at(60)), answer.Until)

	StoreNoData(c, owner, SlotA, NegativeCacheUntil{Until: Cached(at(30)), Zone: name.MustParse("com")})
	answer = c.LookupA(owner, epoch)
	assert.Equal(t, NoData, answer.Kind)
	assert.Equal(t, name.MustParse("com"), answer.Zone)
}

func TestFixedEntryPrecedence(t *testing.T) {
	c := New()
	localhost := name.MustParse("localhost")
	Store(c, localhost, SlotA, addresses("192.0.2.99"), Cached(at(1<<30)))
	c.AddFixed(localhost, FixedDomainCacheEntry{
		IPv4: []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		IPv6: []netip.Addr{netip.MustParseAddr("::1")},
	})

	answer := c.LookupA(localhost, epoch)
	require.Equal(t, Hit, answer.Kind)
	assert.True(t, answer.Fixed)
	assert.Equal(t, addresses("127.0.0.1"), answer.Records)

	// Fixed entries never expire.
	answer = c.LookupAAAA(localhost, at(1<<31))
	require.Equal(t, Hit, answer.Kind)
	assert.Equal(t, addresses("::1"), answer.Records)
}

func TestFixedEntryWithoutFamily(t *testing.T) {
	c := New()
	host := name.MustParse("v6only.lan")
	c.AddFixed(host, FixedDomainCacheEntry{IPv6: []netip.Addr{netip.MustParseAddr("fd00::1")}})
	Store(c, host, SlotA, addresses("192.0.2.1"), Cached(at(300)))

	answer := c.LookupA(host, epoch)
	assert.Equal(t, NoData, answer.Kind)
	assert.True(t, answer.Fixed)
}

func TestFixedAlias(t *testing.T) {
	c := New()
	target := name.MustParse("localhost")
	c.AddFixed(target, FixedDomainCacheEntry{IPv4: []netip.Addr{netip.MustParseAddr("127.0.0.1")}})
	c.AddFixed(name.MustParse("me"), FixedDomainCacheEntry{Alias: &target})

	answer := c.LookupA(name.MustParse("me"), epoch)
	require.Equal(t, Hit, answer.Kind)
	assert.Equal(t, target, answer.CanonicalName)
}

func TestLookupFollowsAliases(t *testing.T) {
	c := New()
	www, cdn := name.MustParse("www.example.com"), name.MustParse("cdn.example.net")
	c.StoreAlias(www, cdn, Cached(at(60)))
	Store(c, cdn, SlotMX, NewMultiplePrioritizedThenSortedRecords(
		[]MailServer{{Preference: 10, Exchange: name.MustParse("mx.example.net")}},
		MailServerPreference, CompareMailServers,
	), Cached(at(300)))

	answer := Lookup(c, www, SlotMX, epoch)
	require.Equal(t, Hit, answer.Kind)
	assert.Equal(t, cdn, answer.CanonicalName)
	assert.Equal(t, 1, answer.Records.Len())

	// Once the alias expires the name is unknown again.
	assert.Equal(t, Miss, Lookup(c, www, SlotMX, at(60)).Kind)
}

func TestLookupAliasChainLimit(t *testing.T) {
	hop := func(i int) name.CaseFoldedName {
		return name.MustParse(string(rune('a'+i)) + ".example.com")
	}

	for _, tt := range []struct {
		links int
		want  Kind
	}{
		{name.MaximumChainLength, Hit},
		{name.MaximumChainLength + 1, Miss},
	} {
		c := New()
		for i := 0; i < tt.links; i++ {
			c.StoreAlias(hop(i), hop(i+1), Cached(at(300)))
		}
		Store(c, hop(tt.links), SlotA, addresses("192.0.2.1"), Cached(at(300)))
		assert.Equal(t, tt.want, c.LookupA(hop(0), epoch).Kind, "%d links", tt.links)
	}

	c := New()
	c.StoreAlias(hop(0), hop(1), Cached(at(300)))
	c.StoreAlias(hop(1), hop(0), Cached(at(300)))
	assert.Equal(t, Miss, c.LookupA(hop(0), epoch).Kind, "a cached loop terminates")
}

func TestNoDomain(t *testing.T) {
	c := New()
	missing := name.MustParse("missing.example.com")
	zone := name.MustParse("example.com")
	Store(c, missing, SlotA, addresses("192.0.2.1"), Cached(at(600)))
	c.StoreNoDomain(missing, NegativeCacheUntil{Until: Cached(at(300)), Zone: zone})

	for _, owner := range []string{"missing.example.com", "deep.below.missing.example.com"} {
		answer := c.LookupA(name.MustParse(owner), epoch)
		assert.Equal(t, NoDomain, answer.Kind, owner)
		assert.Equal(t, zone, answer.Zone)
	}
	assert.Equal(t, Miss, c.LookupA(name.MustParse("sibling.example.com"), epoch).Kind)
	assert.Equal(t, Miss, c.LookupA(missing, at(300)).Kind, "expired and the old record was dropped")

	// The name came into existence.
	Store(c, missing, SlotA, addresses("192.0.2.2"), Cached(at(600)))
	assert.Equal(t, Hit, c.LookupA(missing, epoch).Kind)
}

func TestZoneOf(t *testing.T) {
	c := New()
	zone := name.MustParse("example.com")
	soa := StartOfAuthority{PrimaryNameServer: name.MustParse("ns1.example.com"), Minimum: 300}
	Store(c, zone, SlotSOA, NewRecords([]StartOfAuthority{soa}), Cached(at(3600)))

	got, record, until, ok := c.ZoneOf(name.MustParse("a.b.example.com"), epoch)
	require.True(t, ok)
	assert.Equal(t, zone, got)
	assert.Equal(t, soa, record)
	assert.Equal(t, Cached(at(3600)), until)

	_, _, _, ok = c.ZoneOf(name.MustParse("example.org"), epoch)
	assert.False(t, ok)
	_, _, _, ok = c.ZoneOf(name.MustParse("a.example.com"), at(3600))
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	c := New()
	Store(c, name.MustParse("short.example.com"), SlotA, addresses("192.0.2.1"), Cached(at(10)))
	Store(c, name.MustParse("long.example.com"), SlotA, addresses("192.0.2.2"), Cached(at(1000)))
	c.StoreAlias(name.MustParse("alias.example.com"), name.MustParse("long.example.com"), Cached(at(10)))
	c.StoreNoDomain(name.MustParse("gone.example.com"), NegativeCacheUntil{Until: Cached(at(10))})

	assert.Equal(t, 3, c.Purge(at(100)))
	assert.Equal(t, Hit, c.LookupA(name.MustParse("long.example.com"), at(100)).Kind)
	assert.Equal(t, 0, c.Purge(at(100)))
}

func TestExportRestore(t *testing.T) {
	c := New()
	Store(c, name.MustParse("example.com"), SlotA, addresses("93.184.216.34"), Cached(at(300)))
	Store(c, name.MustParse("example.com"), SlotAAAA, addresses("2606:2800:220:1::1"), Cached(at(300)))
	Store(c, name.MustParse("stale.example.com"), SlotA, addresses("192.0.2.1"), Cached(at(5)))
	Store(c, name.MustParse("mail.example.com"), SlotMX, NewMultiplePrioritizedThenSortedRecords(nil, MailServerPreference, CompareMailServers), Cached(at(300)))
	c.StoreAlias(name.MustParse("www.example.com"), name.MustParse("example.com"), Cached(at(300)))
	c.StoreNoDomain(name.MustParse("gone.example.com"), NegativeCacheUntil{Until: Cached(at(300)), Zone: name.MustParse("example.com")})

	snapshot := c.Export(at(10))
	assert.Len(t, snapshot.Addresses, 2)
	assert.Len(t, snapshot.Aliases, 1)
	assert.Len(t, snapshot.NoDomains, 1)
	assert.Equal(t, 4, snapshot.Len())

	restored := New()
	assert.Equal(t, 4, restored.Restore(snapshot, at(20)))
	answer := restored.LookupA(name.MustParse("www.example.com"), at(20))
	require.Equal(t, Hit, answer.Kind)
	assert.Equal(t, addresses("93.184.216.34"), answer.Records)
	assert.Equal(t, NoDomain, restored.LookupA(name.MustParse("gone.example.com"), at(20)).Kind)

	assert.Equal(t, 0, New().Restore(snapshot, at(300)), "everything expired")
}

func TestCoalescer(t *testing.T) {
	var (
		coalescer Coalescer
		calls     atomic.Int32
		started   = make(chan struct{})
		release   = make(chan struct{})
		wg        sync.WaitGroup
	)
	owner := name.MustParse("example.com")
	fetch := func() error {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return nil
	}

	shared := make([]bool, 5)
	for i := range shared {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			shared[i], err = coalescer.Do(context.Background(), owner, rdata.TypeA, fetch)
			assert.NoError(t, err)
		}(i)
		if i == 0 {
			<-started
		}
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []bool{true, true, true, true, true}, shared)

	// A different type is a different key.
	_, err := coalescer.Do(context.Background(), owner, rdata.TypeAAAA, func() error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")
}

func TestCoalescerContext(t *testing.T) {
	var coalescer Coalescer
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := coalescer.Do(ctx, name.MustParse("example.com"), rdata.TypeA, func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreBelowNoDomainAncestor(t *testing.T) {
	zone := name.MustParse("example.com")
	parent := name.MustParse("b.example.com")
	child := name.MustParse("a.b.example.com")
	negative := NegativeCacheUntil{Until: Cached(at(3600)), Zone: zone}

	tests := []struct {
		name  string
		store func(c *Cache)
		check func(t *testing.T, c *Cache)
	}{
		{
			name:  "records",
			store: func(c *Cache) { Store(c, child, SlotA, addresses("192.0.2.4"), Cached(at(300))) },
			check: func(t *testing.T, c *Cache) {
				answer := c.LookupA(child, at(1))
				require.Equal(t, Hit, answer.Kind)
				assert.Equal(t, addresses("192.0.2.4"), answer.Records)
			},
		},
		{
			name: "no data",
			store: func(c *Cache) {
				StoreNoData(c, child, SlotAAAA, NegativeCacheUntil{Until: Cached(at(300)), Zone: zone})
			},
			check: func(t *testing.T, c *Cache) {
				assert.Equal(t, NoData, c.LookupAAAA(child, at(1)).Kind)
			},
		},
		{
			name:  "alias",
			store: func(c *Cache) { c.StoreAlias(child, zone, Cached(at(300))) },
			check: func(t *testing.T, c *Cache) {
				assert.Equal(t, zone, c.LookupA(child, at(1)).CanonicalName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.StoreNoDomain(parent, negative)
			tt.store(c)
			tt.check(t, c)
			assert.NotEqual(t, NoDomain, c.LookupA(parent, at(1)).Kind, "the parent exists")
			assert.Equal(t, Miss, c.LookupA(parent, at(1)).Kind)
		})
	}
}
