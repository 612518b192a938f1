package query

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/cuemby/burrow/pkg/message"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = wire.FromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

func at(seconds int) wire.NanosecondsSinceUnixEpoch {
	return epoch + wire.NanosecondsSinceUnixEpoch(seconds)*wire.NanosecondsSinceUnixEpoch(time.Second)
}

func queryFor(owner string, t rdata.DataType) message.Query {
	return message.NewQuery(0xbeef, name.MustParse(owner), t)
}

func reply(q message.Query) *dns.Msg {
	m := new(dns.Msg)
	m.Id = q.ID
	m.Response = true
	m.RecursionDesired = q.RecursionDesired
	m.RecursionAvailable = true
	m.Question = []dns.Question{{Name: q.Name.String(), Qtype: uint16(q.Type), Qclass: dns.ClassINET}}
	return m
}

func pack(t *testing.T, m *dns.Msg) []byte {
	t.Helper()
	b, err := m.Pack()
	require.NoError(t, err)
	return b
}

func hdr(owner string, rrtype uint16, ttl uint32) dns.RR_Header {
	return dns.RR_Header{Name: owner, Rrtype: rrtype, Class: dns.ClassINET, Ttl: ttl}
}

func soa(zone string, ttl, minimum uint32) *dns.SOA {
	return &dns.SOA{
		Hdr:     hdr(zone, dns.TypeSOA, ttl),
		Ns:      "ns1." + zone,
		Mbox:    "hostmaster." + zone,
		Serial:  2024010101,
		Refresh: 7200,
		Retry:   3600,
		Expire:  1209600,
		Minttl:  minimum,
	}
}

func addrs(values ...string) cache.MultipleSortedRecords[netip.Addr] {
	out := make([]netip.Addr, 0, len(values))
	for _, v := range values {
		out = append(out, netip.MustParseAddr(v))
	}
	return cache.NewMultipleSortedRecords(out, cache.CompareAddresses)
}

func TestProcessAnswerIsCached(t *testing.T) {
	c := cache.New()
	q := queryFor("example.com", rdata.TypeA)
	m := reply(q)
	m.Answer = []dns.RR{&dns.A{Hdr: hdr("example.com.", dns.TypeA, 300), A: net.ParseIP("93.184.216.34")}}

	result, err := A.Process(c, q, pack(t, m), epoch)
	require.NoError(t, err)
	assert.Equal(t, message.OutcomeAnswered, result.Outcome)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("93.184.216.34")}, result.Records)
	assert.Equal(t, cache.Cached(at(300)), result.Until)

	answer := c.LookupA(name.MustParse("example.com"), at(1))
	require.Equal(t, cache.Hit, answer.Kind)
	assert.Equal(t, addrs("93.184.216.34"), answer.Records)
	assert.Equal(t, cache.Cached(at(300)), answer.Until)
	assert.Equal(t, cache.Miss, c.LookupA(name.MustParse("example.com"), at(300)).Kind)
}

func TestProcessKeepsEarliestExpiry(t *testing.T) {
	c := cache.New()
	q := queryFor("example.com", rdata.TypeA)
	m := reply(q)
	m.Answer = []dns.RR{
		&dns.A{Hdr: hdr("example.com.", dns.TypeA, 300), A: net.ParseIP("192.0.2.2")},
		&dns.A{Hdr: hdr("example.com.", dns.TypeA, 60), A: net.ParseIP("192.0.2.1")},
	}

	result, err := A.Process(c, q, pack(t, m), epoch)
	require.NoError(t, err)
	assert.Equal(t, cache.Cached(at(60)), result.Until)

	answer := c.LookupA(name.MustParse("example.com"), epoch)
	assert.Equal(t, addrs("192.0.2.1", "192.0.2.2"), answer.Records)
}

func TestProcessFixedEntryTakesPrecedence(t *testing.T) {
	c := cache.New()
	localhost := name.MustParse("localhost")
	c.AddFixed(localhost, cache.FixedDomainCacheEntry{IPv4: []netip.Addr{netip.MustParseAddr("127.0.0.1")}})

	q := queryFor("localhost", rdata.TypeA)
	m := reply(q)
	m.Answer = []dns.RR{&dns.A{Hdr: hdr("localhost.", dns.TypeA, 300), A: net.ParseIP("192.0.2.1")}}
	_, err := A.Process(c, q, pack(t, m), epoch)
	require.NoError(t, err)

	answer := c.LookupA(localhost, epoch)
	require.Equal(t, cache.Hit, answer.Kind)
	assert.True(t, answer.Fixed)
	assert.Equal(t, addrs("127.0.0.1"), answer.Records)
}

func TestProcessInvalidResponseLeavesCacheUnchanged(t *testing.T) {
	c := cache.New()
	q := queryFor("www.example.com", rdata.TypeA)
	m := reply(q)
	m.Id = q.ID + 1
	m.Answer = []dns.RR{
		&dns.CNAME{Hdr: hdr("www.example.com.", dns.TypeCNAME, 600), Target: "example.com."},
		&dns.A{Hdr: hdr("example.com.", dns.TypeA, 300), A: net.ParseIP("93.184.216.34")},
	}
	m.Ns = []dns.RR{soa("example.com.", 3600, 300)}

	_, err := A.Process(c, q, pack(t, m), epoch)
	require.ErrorIs(t, err, message.ErrIDMismatch)

	assert.Equal(t, cache.Miss, c.LookupA(name.MustParse("www.example.com"), epoch).Kind)
	assert.Equal(t, cache.Miss, c.LookupA(name.MustParse("example.com"), epoch).Kind)
	_, _, _, ok := c.ZoneOf(name.MustParse("example.com"), epoch)
	assert.False(t, ok)
}

func TestFinishOnce(t *testing.T) {
	c := cache.New()
	q := queryFor("example.com", rdata.TypeA)
	m := reply(q)
	m.Answer = []dns.RR{&dns.A{Hdr: hdr("example.com.", dns.TypeA, 300), A: net.ParseIP("93.184.216.34")}}

	v := A.NewVisitor(epoch)
	resp, err := message.Parse(pack(t, m), q, v)
	require.NoError(t, err)

	_, err = v.Finish(c, resp)
	require.NoError(t, err)
	_, err = v.Finish(c, resp)
	assert.ErrorIs(t, err, ErrAlreadyFinished)
}

func TestProcessCommitsChain(t *testing.T) {
	c := cache.New()
	q := queryFor("www.example.com", rdata.TypeA)
	m := reply(q)
	m.Answer = []dns.RR{
		&dns.CNAME{Hdr: hdr("www.example.com.", dns.TypeCNAME, 600), Target: "cdn.example.net."},
		&dns.CNAME{Hdr: hdr("cdn.example.net.", dns.TypeCNAME, 120), Target: "edge.example.net."},
		&dns.A{Hdr: hdr("edge.example.net.", dns.TypeA, 30), A: net.ParseIP("198.51.100.7")},
	}

	result, err := A.Process(c, q, pack(t, m), epoch)
	require.NoError(t, err)
	assert.Equal(t, name.MustParse("edge.example.net"), result.CanonicalName)

	answer := c.LookupA(name.MustParse("www.example.com"), at(10))
	require.Equal(t, cache.Hit, answer.Kind)
	assert.Equal(t, name.MustParse("edge.example.net"), answer.CanonicalName)
	assert.Equal(t, addrs("198.51.100.7"), answer.Records)

	assert.Equal(t, cache.Miss, c.LookupAAAA(name.MustParse("www.example.com"), at(10)).Kind)

	// The second link expires first and the path stops at its owner.
	assert.Equal(t, name.MustParse("cdn.example.net"), cache.Lookup(c, name.MustParse("www.example.com"), cache.SlotMX, at(130)).CanonicalName)
}

func TestProcessNegative(t *testing.T) {
	zone := name.MustParse("example.com")

	t.Run("no domain", func(t *testing.T) {
		c := cache.New()
		q := queryFor("missing.example.com", rdata.TypeA)
		m := reply(q)
		m.Rcode = dns.RcodeNameError
		m.Ns = []dns.RR{soa("example.com.", 3600, 300)}

		result, err := A.Process(c, q, pack(t, m), epoch)
		require.NoError(t, err)
		assert.Equal(t, message.OutcomeNoDomain, result.Outcome)
		assert.Equal(t, cache.NegativeCacheUntil{Until: cache.Cached(at(300)), Zone: zone}, result.Negative)

		for _, owner := range []string{"missing.example.com", "deeper.missing.example.com"} {
			answer := c.LookupAAAA(name.MustParse(owner), at(1))
			assert.Equal(t, cache.NoDomain, answer.Kind, owner)
			assert.Equal(t, zone, answer.Zone, owner)
		}

		found, record, until, ok := c.ZoneOf(name.MustParse("missing.example.com"), at(1))
		require.True(t, ok)
		assert.Equal(t, zone, found)
		assert.Equal(t, uint32(2024010101), record.Serial)
		assert.Equal(t, cache.Cached(at(3600)), until)
	})

	t.Run("no data", func(t *testing.T) {
		c := cache.New()
		q := queryFor("example.com", rdata.TypeAAAA)
		m := reply(q)
		m.Ns = []dns.RR{soa("example.com.", 60, 900)}

		result, err := AAAA.Process(c, q, pack(t, m), epoch)
		require.NoError(t, err)
		assert.Equal(t, message.OutcomeNoData, result.Outcome)
		assert.Equal(t, cache.Cached(at(60)), result.Until)

		assert.Equal(t, cache.NoData, c.LookupAAAA(zone, at(1)).Kind)
		assert.Equal(t, cache.Miss, c.LookupA(zone, at(1)).Kind)
	})

	t.Run("no authority is used once", func(t *testing.T) {
		c := cache.New()
		q := queryFor("example.com", rdata.TypeAAAA)
		m := reply(q)

		result, err := AAAA.Process(c, q, pack(t, m), epoch)
		require.NoError(t, err)
		assert.Equal(t, message.OutcomeNoData, result.Outcome)
		assert.True(t, result.Until.IsUseOnce())
		assert.Equal(t, name.Root, result.Negative.Zone)
		assert.Equal(t, cache.Miss, c.LookupAAAA(zone, epoch).Kind)
	})
}

func TestProcessReferral(t *testing.T) {
	c := cache.New()
	q := queryFor("www.example.com", rdata.TypeA)
	m := reply(q)
	m.Ns = []dns.RR{
		&dns.NS{Hdr: hdr("example.com.", dns.TypeNS, 172800), Ns: "a.iana-servers.net."},
		&dns.NS{Hdr: hdr("example.com.", dns.TypeNS, 86400), Ns: "b.iana-servers.net."},
	}
	m.Extra = []dns.RR{
		&dns.A{Hdr: hdr("a.iana-servers.net.", dns.TypeA, 3600), A: net.ParseIP("199.43.135.53")},
		&dns.AAAA{Hdr: hdr("a.iana-servers.net.", dns.TypeAAAA, 3600), AAAA: net.ParseIP("2001:500:8f::53")},
	}

	result, err := A.Process(c, q, pack(t, m), epoch)
	require.NoError(t, err)
	assert.Equal(t, message.OutcomeReferral, result.Outcome)
	assert.True(t, result.Until.IsUseOnce())
	assert.Empty(t, result.Records)

	ns := cache.Lookup(c, name.MustParse("example.com"), cache.SlotNS, at(1))
	require.Equal(t, cache.Hit, ns.Kind)
	assert.Equal(t, []name.CaseFoldedName{name.MustParse("a.iana-servers.net"), name.MustParse("b.iana-servers.net")}, ns.Records.Values())
	assert.Equal(t, cache.Cached(at(86400)), ns.Until)

	assert.Equal(t, addrs("199.43.135.53"), c.LookupA(name.MustParse("a.iana-servers.net"), at(1)).Records)
	assert.Equal(t, addrs("2001:500:8f::53"), c.LookupAAAA(name.MustParse("a.iana-servers.net"), at(1)).Records)
	assert.Equal(t, cache.Miss, c.LookupA(name.MustParse("b.iana-servers.net"), at(1)).Kind)
	assert.Equal(t, cache.Miss, c.LookupA(name.MustParse("www.example.com"), at(1)).Kind)
}

func TestHandlersFormat(t *testing.T) {
	tests := []struct {
		name   string
		qtype  rdata.DataType
		answer dns.RR
		want   string
	}{
		{
			name:   "MX",
			qtype:  rdata.TypeMX,
			answer: &dns.MX{Hdr: hdr("example.com.", dns.TypeMX, 300), Preference: 10, Mx: "Mail.Example.com."},
			want:   "10 mail.example.com.",
		},
		{
			name:   "TXT",
			qtype:  rdata.TypeTXT,
			answer: &dns.TXT{Hdr: hdr("example.com.", dns.TypeTXT, 300), Txt: []string{"v=spf1 -all", "x"}},
			want:   `"v=spf1 -all" "x"`,
		},
		{
			name:   "SRV",
			qtype:  rdata.TypeSRV,
			answer: &dns.SRV{Hdr: hdr("example.com.", dns.TypeSRV, 300), Priority: 1, Weight: 5, Port: 5060, Target: "sip.example.com."},
			want:   "1 5 5060 sip.example.com.",
		},
		{
			name:   "PTR",
			qtype:  rdata.TypePTR,
			answer: &dns.PTR{Hdr: hdr("example.com.", dns.TypePTR, 300), Ptr: "host.example.net."},
			want:   "host.example.net.",
		},
		{
			name:   "DS",
			qtype:  rdata.TypeDS,
			answer: &dns.DS{Hdr: hdr("example.com.", dns.TypeDS, 300), KeyTag: 370, Algorithm: 13, DigestType: 2, Digest: "be74359954660069d5c63d200c39f5603827d7dd02b56f120ee9f3a86764247c"},
			want:   "370 13 2 BE74359954660069D5C63D200C39F5603827D7DD02B56F120EE9F3A86764247C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := ForType(tt.qtype)
			require.True(t, ok)
			assert.Equal(t, tt.qtype, h.DataType())

			q := queryFor("example.com", tt.qtype)
			m := reply(q)
			m.Answer = []dns.RR{tt.answer}
			summary, err := h.Handle(cache.New(), q, pack(t, m), epoch)
			require.NoError(t, err)
			assert.Equal(t, message.OutcomeAnswered, summary.Outcome)
			assert.Equal(t, []string{tt.want}, summary.Records)
		})
	}
}

func TestTypes(t *testing.T) {
	types := Types()
	assert.Len(t, types, 12)
	assert.Equal(t, rdata.TypeA, types[0])
	_, ok := ForType(rdata.TypeCNAME)
	assert.False(t, ok)
}

func TestProcessorLookupAndAnswer(t *testing.T) {
	c := cache.New()
	localhost := name.MustParse("localhost")
	c.AddFixed(localhost, cache.FixedDomainCacheEntry{IPv4: []netip.Addr{netip.MustParseAddr("127.0.0.1")}})

	assert.True(t, A.Lookup(c, localhost, epoch).Fixed, "A reads fixed entries")
	assert.Equal(t, cache.NoData, AAAA.Lookup(c, localhost, epoch).Kind)
	assert.Equal(t, cache.Miss, MX.Lookup(c, localhost, epoch).Kind, "fixed entries hold addresses only")

	answer := A.Answer(Result[netip.Addr]{
		Outcome:       message.OutcomeAnswered,
		CanonicalName: name.MustParse("example.com"),
		Records:       []netip.Addr{netip.MustParseAddr("192.0.2.2"), netip.MustParseAddr("192.0.2.1")},
		Until:         cache.UseOnce(epoch),
	})
	assert.Equal(t, cache.Hit, answer.Kind)
	assert.Equal(t, addrs("192.0.2.1", "192.0.2.2"), answer.Records)

	negative := MX.Answer(Result[cache.MailServer]{
		Outcome:  message.OutcomeNoDomain,
		Negative: cache.NegativeCacheUntil{Until: cache.Cached(at(60)), Zone: name.MustParse("com")},
		Until:    cache.Cached(at(60)),
	})
	assert.Equal(t, cache.NoDomain, negative.Kind)
	assert.Equal(t, name.MustParse("com"), negative.Zone)
}
