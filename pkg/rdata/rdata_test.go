package rdata

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/wire"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packed packs rr after a zeroed header and locates its record data
func packed(t *testing.T, rr dns.RR) ResourceData {
	t.Helper()
	msg := make([]byte, 4096)
	end, err := dns.PackRR(rr, msg, 12, nil, false)
	require.NoError(t, err)
	offset := 12 + name.MustParse(rr.Header().Name).Len() + 10
	return ResourceData{Message: msg[:end], Offset: offset, Length: end - offset}
}

// raw places data after a zeroed header
func raw(data ...byte) ResourceData {
	msg := append(make([]byte, 12), data...)
	return ResourceData{Message: msg, Offset: 12, Length: len(data)}
}

func hdr(rrtype uint16) dns.RR_Header {
	return dns.RR_Header{Name: "example.com.", Rrtype: rrtype, Class: dns.ClassINET, Ttl: 300}
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "A", TypeA.String())
	assert.Equal(t, "NAPTR", TypeNAPTR.String())
	assert.Equal(t, "TYPE65280", DataType(65280).String())
	assert.True(t, TypeANY.IsQueryOnly())
	assert.False(t, TypeA.IsQueryOnly())
	assert.True(t, TypeOPT.IsMeta())
	assert.True(t, TypeRRSIG.IsDNSSEC())
}

func TestDecodeAddresses(t *testing.T) {
	tests := []struct {
		name    string
		decode  func(ResourceData) (netip.Addr, error)
		rd      ResourceData
		want    netip.Addr
		wantErr bool
	}{
		{"A", DecodeA, raw(93, 184, 216, 34), netip.MustParseAddr("93.184.216.34"), false},
		{"A too long", DecodeA, raw(1, 2, 3, 4, 5), netip.Addr{}, true},
		{"A too short", DecodeA, raw(1, 2, 3), netip.Addr{}, true},
		{"AAAA", DecodeAAAA, raw(0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1), netip.MustParseAddr("2001:db8::1"), false},
		{"AAAA wrong length", DecodeAAAA, raw(1, 2, 3, 4), netip.Addr{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.decode(tt.rd)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncorrectLength)
				var lengthErr *LengthError
				assert.True(t, errors.As(err, &lengthErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeNameRecords(t *testing.T) {
	rd := packed(t, &dns.NS{Hdr: hdr(dns.TypeNS), Ns: "ns1.example.com."})
	ns, err := DecodeNS(rd)
	require.NoError(t, err)
	assert.Equal(t, "ns1.example.com.", ns.String())

	trailing := raw(append(name.MustParse("a.example").Wire(), 0xff)...)
	_, err = DecodeCNAME(trailing)
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestDecodeSOA(t *testing.T) {
	rd := packed(t, &dns.SOA{
		Hdr:     hdr(dns.TypeSOA),
		Ns:      "ns1.example.com.",
		Mbox:    "hostmaster.example.com.",
		Serial:  2024010101,
		Refresh: 7200,
		Retry:   3600,
		Expire:  1209600,
		Minttl:  0x8000_0010,
	})
	soa, err := DecodeSOA(rd)
	require.NoError(t, err)
	assert.Equal(t, "ns1.example.com.", soa.PrimaryNameServer.String())
	assert.Equal(t, "hostmaster.example.com.", soa.ResponsibleMailbox.String())
	assert.Equal(t, uint32(2024010101), soa.Serial)
	assert.Equal(t, wire.TimeToLiveInSeconds(7200), soa.Refresh)
	assert.Equal(t, wire.TimeToLiveInSeconds(0), soa.Minimum, "sign bit set means zero")

	rd = packed(t, &dns.SOA{Hdr: hdr(dns.TypeSOA), Ns: "a.", Mbox: "b.", Minttl: 60})
	soa, err = DecodeSOA(rd)
	require.NoError(t, err)
	assert.Equal(t, wire.TimeToLiveInSeconds(60), soa.NegativeTimeToLive(300))
	assert.Equal(t, wire.TimeToLiveInSeconds(30), soa.NegativeTimeToLive(30))

	short := ResourceData{Message: rd.Message, Offset: rd.Offset, Length: rd.Length - 1}
	_, err = DecodeSOA(short)
	assert.ErrorIs(t, err, ErrIncorrectLength)
}

func TestDecodeSRVCompressedTarget(t *testing.T) {
	msg := make([]byte, 12)
	msg = append(msg, 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0)
	offset := len(msg)
	msg = append(msg, 0, 1, 0, 5, 0x13, 0xc4, 3, 's', 'i', 'p', 0xc0, 12)
	rd := ResourceData{Message: msg, Offset: offset, Length: len(msg) - offset}

	srv, err := DecodeSRV(rd)
	require.NoError(t, err)
	assert.Equal(t, uint16(5060), srv.Port)
	assert.Equal(t, "sip.example.com.", srv.Target.String())
}

func TestDecodeRaw(t *testing.T) {
	rd := raw(0xc0, 0x00, 0x02, 0x01)
	got, err := DecodeRaw(rd)
	require.NoError(t, err)
	assert.Equal(t, `\# 4 c0000201`, got.String())

	rd.Message[12] = 0
	assert.Equal(t, byte(0xc0), got[0], "copy survives the message buffer being reused")

	empty, err := DecodeRaw(raw())
	require.NoError(t, err)
	assert.Equal(t, `\# 0`, empty.String())
}

func TestDecodeMXAndSRV(t *testing.T) {
	mx, err := DecodeMX(packed(t, &dns.MX{Hdr: hdr(dns.TypeMX), Preference: 10, Mx: "mail.example.com."}))
	require.NoError(t, err)
	assert.Equal(t, uint16(10), mx.Preference)
	assert.Equal(t, "mail.example.com.", mx.Exchange.String())

	_, err = DecodeMX(raw(0, 10))
	assert.ErrorIs(t, err, ErrIncorrectLength)

	srv, err := DecodeSRV(packed(t, &dns.SRV{Hdr: hdr(dns.TypeSRV), Priority: 1, Weight: 5, Port: 5060, Target: "sip.example.com."}))
	require.NoError(t, err)
	assert.Equal(t, Service{Priority: 1, Weight: 5, Port: 5060, Target: srv.Target}, srv)
	assert.Equal(t, "sip.example.com.", srv.Target.String())
}

func TestDecodeTXT(t *testing.T) {
	txt, err := DecodeTXT(packed(t, &dns.TXT{Hdr: hdr(dns.TypeTXT), Txt: []string{"v=spf1 -all", "second"}}))
	require.NoError(t, err)
	assert.Equal(t, Text{[]byte("v=spf1 -all"), []byte("second")}, txt)

	_, err = DecodeTXT(raw(2, 'o', 'k', 9, 'x'))
	var lengthErr *wire.CharacterStringLengthIncorrectError
	require.True(t, errors.As(err, &lengthErr))
	assert.Equal(t, 1, lengthErr.Index)
}

func TestDecodeHINFO(t *testing.T) {
	hinfo, err := DecodeHINFO(packed(t, &dns.HINFO{Hdr: hdr(dns.TypeHINFO), Cpu: "RFC8482", Os: ""}))
	require.NoError(t, err)
	assert.Equal(t, []byte("RFC8482"), hinfo.CPU)

	_, err = DecodeHINFO(raw(1, 'a'))
	assert.ErrorIs(t, err, ErrIncorrectLength)
}

func TestDecodeURI(t *testing.T) {
	uri, err := DecodeURI(packed(t, &dns.URI{Hdr: hdr(dns.TypeURI), Priority: 10, Weight: 1, Target: "https://example.com/"}))
	require.NoError(t, err)
	assert.Equal(t, uint16(10), uri.Priority)
	assert.Equal(t, []byte("https://example.com/"), uri.Target)

	_, err = DecodeURI(raw(0, 10, 0, 1))
	assert.ErrorIs(t, err, ErrEmptyURITarget)
}

func TestDecodeNSEC(t *testing.T) {
	rd := packed(t, &dns.NSEC{
		Hdr:        hdr(dns.TypeNSEC),
		NextDomain: "b.example.com.",
		TypeBitMap: []uint16{dns.TypeA, dns.TypeMX, dns.TypeRRSIG, dns.TypeNSEC, dns.TypeCAA},
	})
	nsec, err := DecodeNSEC(rd)
	require.NoError(t, err)
	assert.Equal(t, "b.example.com.", nsec.NextDomainName.String())
	assert.Equal(t, []DataType{TypeA, TypeMX, TypeRRSIG, TypeNSEC, TypeCAA}, nsec.Types.Types())
	assert.True(t, nsec.Types.Has(TypeMX))
	assert.True(t, nsec.Types.Has(TypeCAA))
	assert.False(t, nsec.Types.Has(TypeAAAA))

	next := name.MustParse("b.example").Wire()
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"truncated bitmap", append(append([]byte{}, next...), 0, 4, 0x40), wire.ErrTruncated},
		{"dangling window header", append(append([]byte{}, next...), 0, 1, 0x40, 1), wire.ErrTruncated},
		{"windows out of order", append(append([]byte{}, next...), 1, 1, 0x40, 0, 1, 0x40), ErrTypeBitmapWindowOrder},
		{"window too long", append(append([]byte{}, next...), append([]byte{0, 33}, make([]byte, 33)...)...), ErrTypeBitmapWindowLength},
		{"empty window", append(append([]byte{}, next...), 0, 1, 0x00), ErrTypeBitmapWindowEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeNSEC(raw(tt.data...))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("compressed next name", func(t *testing.T) {
		msg := append(make([]byte, 12), name.MustParse("example").Wire()...)
		offset := len(msg)
		msg = append(msg, 1, 'b', 0xc0, 12, 0, 1, 0x40)
		_, err := DecodeNSEC(ResourceData{Message: msg, Offset: offset, Length: len(msg) - offset})
		assert.ErrorIs(t, err, name.ErrCompressionNotPermitted)
	})
}

const ed25519Key = "l02Woi0iS8Aa25FQkUd9RMzZHJpBoRQwAQEX1SxZJA4="

func TestDecodeDNSKEY(t *testing.T) {
	key, err := DecodeDNSKEY(packed(t, &dns.DNSKEY{Hdr: hdr(dns.TypeDNSKEY), Flags: 257, Protocol: 3, Algorithm: dns.ED25519, PublicKey: ed25519Key}))
	require.NoError(t, err)
	assert.True(t, key.IsZoneKey())
	assert.True(t, key.IsSecureEntryPoint())
	assert.False(t, key.IsRevoked())
	assert.Equal(t, AlgorithmED25519, key.Algorithm)
	assert.Len(t, key.PublicKey, 32)

	tests := []struct {
		name    string
		rd      ResourceData
		wantErr error
	}{
		{"wrong protocol", raw(1, 0, 2, 15, 1), ErrDNSKEYProtocol},
		{"reserved algorithm", raw(1, 0, 3, 4, 1, 2, 3), ErrReservedCode},
		{"unassigned algorithm", raw(1, 0, 3, 50, 1, 2, 3), ErrUnassignedCode},
		{"algorithm zero", raw(1, 0, 3, 0, 0), ErrReservedCode},
		{"ed25519 short key", raw(1, 0, 3, 15, 1, 2, 3), ErrIncorrectLength},
		{"rsa without modulus", raw(1, 0, 3, 8, 3, 1, 0, 1), ErrIncorrectLength},
		{"too short", raw(1, 0, 3, 8), ErrIncorrectLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDNSKEY(tt.rd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = DecodeDNSKEY(raw(1, 0, 3, 1, 3, 1, 0, 1, 0xaa))
	assert.True(t, IsIgnored(err), "RSAMD5 is skipped, got %v", err)

	rsa, err := DecodeDNSKEY(raw(1, 0, 3, 8, 3, 1, 0, 1, 0xc1, 0x02))
	require.NoError(t, err)
	assert.Equal(t, AlgorithmRSASHA256, rsa.Algorithm)
}

func TestDecodeCDNSKEYDelete(t *testing.T) {
	key, err := DecodeCDNSKEY(raw(0, 0, 3, 0, 0))
	require.NoError(t, err)
	assert.True(t, key.Delete)

	_, err = DecodeCDNSKEY(raw(1, 0, 3, 0, 0))
	assert.ErrorIs(t, err, ErrIncorrectLength)

	_, err = DecodeDNSKEY(raw(0, 0, 3, 0, 0))
	assert.ErrorIs(t, err, ErrReservedCode, "delete form is only valid for CDNSKEY")
}

func TestDecodeDS(t *testing.T) {
	digest := "2bb183af5f22588179a53b0a98631fad1a292118e4c7e1f0b8b3b2c6b9f2a3c1"
	ds, err := DecodeDS(packed(t, &dns.DS{Hdr: hdr(dns.TypeDS), KeyTag: 20326, Algorithm: dns.RSASHA256, DigestType: dns.SHA256, Digest: digest}))
	require.NoError(t, err)
	assert.Equal(t, uint16(20326), ds.KeyTag)
	assert.Equal(t, DigestSHA256, ds.DigestType)
	assert.Len(t, ds.Digest, 32)

	tests := []struct {
		name    string
		rd      ResourceData
		wantErr error
	}{
		{"reserved digest type", raw(0, 1, 8, 0, 0xaa), ErrReservedCode},
		{"unassigned digest type", raw(0, 1, 8, 9, 0xaa), ErrUnassignedCode},
		{"wrong digest length", raw(0, 1, 8, 1, 0xaa), ErrIncorrectLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDS(tt.rd)
			assert.ErrorIs(t, err, tt.wantErr)
			var codeErr *CodeError
			if errors.As(err, &codeErr) {
				assert.Equal(t, "digest type", codeErr.Field)
			}
		})
	}

	cds, err := DecodeCDS(raw(0, 0, 0, 0, 0))
	require.NoError(t, err)
	assert.True(t, cds.Delete)
}

func TestDecodeNAPTR(t *testing.T) {
	naptr := func(flags, service, regexp, replacement string) ResourceData {
		return packed(t, &dns.NAPTR{
			Hdr:         hdr(dns.TypeNAPTR),
			Order:       100,
			Preference:  10,
			Flags:       flags,
			Service:     service,
			Regexp:      regexp,
			Replacement: replacement,
		})
	}

	t.Run("sip over udp", func(t *testing.T) {
		got, err := DecodeNAPTR(naptr("S", "SIP+D2U", "", "_sip._udp.example.com."))
		require.NoError(t, err)
		assert.Equal(t, uint16(100), got.Order)
		assert.Equal(t, NAPTRFlagS, got.Flag)
		assert.True(t, got.Flag.IsTerminal())
		assert.Equal(t, ServiceField{Tag: "sip+d2u", Application: ApplicationSIP, Service: "sip", Protocol: "udp"}, got.Service)
		assert.Equal(t, "_sip._udp.example.com.", got.Replacement.String())
	})

	t.Run("enum with regexp", func(t *testing.T) {
		got, err := DecodeNAPTR(naptr("u", "E2U+email:mailto", "!^.*$!mailto:info@example.com!", "."))
		require.NoError(t, err)
		assert.Equal(t, NAPTRFlagU, got.Flag)
		assert.Equal(t, ApplicationENUM, got.Service.Application)
		assert.Equal(t, "mailto", got.Service.Protocol)
		assert.True(t, got.Replacement.IsRoot())
	})

	t.Run("s-naptr radius", func(t *testing.T) {
		got, err := DecodeNAPTR(naptr("s", "aaa+auth:radius.tls.tcp", "", "_radiustls._tcp.example.com."))
		require.NoError(t, err)
		assert.Equal(t, ApplicationRADIUS, got.Service.Application)
		assert.Equal(t, "aaa+auth", got.Service.Service)
	})

	t.Run("protocol flag is not terminal", func(t *testing.T) {
		got, err := DecodeNAPTR(naptr("P", "RELAY:turn.udp", "", "turn.example.com."))
		require.NoError(t, err)
		assert.False(t, got.Flag.IsTerminal())
		assert.Equal(t, ApplicationTURN, got.Service.Application)
	})

	t.Run("empty flag and service", func(t *testing.T) {
		got, err := DecodeNAPTR(naptr("", "", "", "next.example.com."))
		require.NoError(t, err)
		assert.Equal(t, NAPTRFlagEmpty, got.Flag)
		assert.False(t, got.Flag.IsTerminal())
		assert.True(t, got.Service.IsEmpty())
	})

	ignored := []struct {
		name    string
		flags   string
		service string
		reason  IgnoredReason
	}{
		{"unrecognized service", "S", "X-FOO+BAR:baz", IgnoredUnrecognizedServiceField},
		{"malformed service", "S", "sip d2u", IgnoredMalformedServiceField},
		{"leading plus", "S", "+sip", IgnoredMalformedServiceField},
		{"unknown flag", "Z", "SIP+D2U", IgnoredUnknownFlag},
		{"two flags", "SA", "SIP+D2U", IgnoredUnknownFlag},
	}
	for _, tt := range ignored {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeNAPTR(naptr(tt.flags, tt.service, "", "x.example.com."))
			require.True(t, IsIgnored(err), "got %v", err)
			var ignoredErr *IgnoredError
			require.True(t, errors.As(err, &ignoredErr))
			assert.Equal(t, tt.reason, ignoredErr.Reason)
			assert.Equal(t, TypeNAPTR, ignoredErr.Type)
		})
	}

	t.Run("regexp and replacement", func(t *testing.T) {
		_, err := DecodeNAPTR(naptr("U", "E2U+sip", "!^.*$!sip:a@example.com!", "x.example.com."))
		assert.ErrorIs(t, err, ErrNAPTRRegexpAndReplacement)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := DecodeNAPTR(raw(0, 1, 0, 1, 1, 'S', 7, 'S'))
		require.Error(t, err)
		assert.False(t, IsIgnored(err))
	})
}

func TestServiceRegistry(t *testing.T) {
	fields := registeredServiceFields()
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		assert.False(t, seen[field.Tag], "duplicate tag %s", field.Tag)
		seen[field.Tag] = true

		got, err := ParseServiceField([]byte(field.Tag))
		require.NoError(t, err)
		assert.Equal(t, field, got)
	}

	got, err := ParseServiceField([]byte("AAA+AP4294967295:DIAMETER.TLS.TCP"))
	require.NoError(t, err)
	assert.Equal(t, ApplicationDiameter, got.Application)

	got, err = ParseServiceField([]byte("LIS:HELD"))
	require.NoError(t, err)
	assert.Equal(t, ApplicationHELD, got.Application)

	got, err = ParseServiceField([]byte("XCON:CCMP"))
	require.NoError(t, err)
	assert.Equal(t, ServiceField{Tag: "xcon:ccmp", Application: ApplicationXCON, Service: "xcon", Protocol: "ccmp"}, got)

	_, err = ParseServiceField([]byte("sip+d2"))
	assert.True(t, IsIgnored(err), "prefix of a tag is not a tag")
}
