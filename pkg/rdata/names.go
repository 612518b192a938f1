package rdata

import (
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/wire"
)

// DecodeNameTarget decodes data consisting of exactly one domain name, as
// used by NS, CNAME, PTR and DNAME
func DecodeNameTarget(t DataType) func(ResourceData) (name.ParsedName, error) {
	return func(rd ResourceData) (name.ParsedName, error) {
		n, next, err := rd.name(rd.Offset)
		if err != nil {
			return name.ParsedName{}, err
		}
		if err := rd.expectEnd(t, next); err != nil {
			return name.ParsedName{}, err
		}
		return n, nil
	}
}

var (
	DecodeNS    = DecodeNameTarget(TypeNS)
	DecodeCNAME = DecodeNameTarget(TypeCNAME)
	DecodePTR   = DecodeNameTarget(TypePTR)
	DecodeDNAME = DecodeNameTarget(TypeDNAME)
)

// StartOfAuthority is an SOA record
type StartOfAuthority struct {
	PrimaryNameServer  name.ParsedName
	ResponsibleMailbox name.ParsedName
	Serial             uint32
	Refresh            wire.TimeToLiveInSeconds
	Retry              wire.TimeToLiveInSeconds
	Expire             wire.TimeToLiveInSeconds
	Minimum            wire.TimeToLiveInSeconds
}

// NegativeTimeToLive is the lifetime of a negative answer proven by this
// SOA: the lesser of the record's own TTL and its MINIMUM field
func (s StartOfAuthority) NegativeTimeToLive(recordTTL wire.TimeToLiveInSeconds) wire.TimeToLiveInSeconds {
	return recordTTL.Min(s.Minimum)
}

// DecodeSOA decodes an SOA record
func DecodeSOA(rd ResourceData) (StartOfAuthority, error) {
	var soa StartOfAuthority
	mname, next, err := rd.name(rd.Offset)
	if err != nil {
		return soa, err
	}
	rname, next, err := rd.name(next)
	if err != nil {
		return soa, err
	}
	data := rd.Message[:rd.End()]
	if rd.End()-next != 20 {
		return soa, &LengthError{Type: TypeSOA, Length: rd.Length, Want: "names plus 20"}
	}
	soa.PrimaryNameServer = mname
	soa.ResponsibleMailbox = rname
	soa.Serial, next, _ = wire.ReadUint32(data, next)
	soa.Refresh, next, _ = wire.ReadTimeToLive(data, next)
	soa.Retry, next, _ = wire.ReadTimeToLive(data, next)
	soa.Expire, next, _ = wire.ReadTimeToLive(data, next)
	soa.Minimum, _, _ = wire.ReadTimeToLive(data, next)
	return soa, nil
}

// MailExchange is an MX record
type MailExchange struct {
	Preference uint16
	Exchange   name.ParsedName
}

// DecodeMX decodes an MX record
func DecodeMX(rd ResourceData) (MailExchange, error) {
	if err := minimumLength(TypeMX, rd, 3); err != nil {
		return MailExchange{}, err
	}
	preference, next, _ := wire.ReadUint16(rd.Message, rd.Offset)
	exchange, next, err := rd.name(next)
	if err != nil {
		return MailExchange{}, err
	}
	if err := rd.expectEnd(TypeMX, next); err != nil {
		return MailExchange{}, err
	}
	return MailExchange{Preference: preference, Exchange: exchange}, nil
}

// Service is an SRV record
type Service struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   name.ParsedName
}

// DecodeSRV decodes an SRV record. A root target means the service is
// decidedly not available at this domain. RFC 2782 forbids compressing the
// target, but RFC 3597 section 4 has receivers accept it, so a compressed
// target is followed.
func DecodeSRV(rd ResourceData) (Service, error) {
	if err := minimumLength(TypeSRV, rd, 7); err != nil {
		return Service{}, err
	}
	var srv Service
	next := rd.Offset
	srv.Priority, next, _ = wire.ReadUint16(rd.Message, next)
	srv.Weight, next, _ = wire.ReadUint16(rd.Message, next)
	srv.Port, next, _ = wire.ReadUint16(rd.Message, next)
	target, next, err := rd.name(next)
	if err != nil {
		return Service{}, err
	}
	if err := rd.expectEnd(TypeSRV, next); err != nil {
		return Service{}, err
	}
	srv.Target = target
	return srv, nil
}
