package message

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
)

// Section is a message section
type Section uint8

const (
	SectionQuestion Section = iota
	SectionAnswer
	SectionAuthority
	SectionAdditional
)

func (s Section) String() string {
	switch s {
	case SectionQuestion:
		return "question"
	case SectionAnswer:
		return "answer"
	case SectionAuthority:
		return "authority"
	case SectionAdditional:
		return "additional"
	}
	return fmt.Sprintf("section%d", uint8(s))
}

// ResourceRecord is one record located inside a message. It borrows the
// message buffer and must not outlive it.
type ResourceRecord struct {
	Section Section
	// Index is the position within the section, from zero
	Index int
	Owner name.ParsedName
	Type  rdata.DataType
	Class uint16
	TTL   wire.TimeToLiveInSeconds
	// RawTTL is the TTL field as sent; OPT reuses it for flags
	RawTTL uint32
	Data   rdata.ResourceData
}

func parseRecord(msg []byte, offset int) (ResourceRecord, int, error) {
	var rr ResourceRecord
	owner, offset, err := name.ParseName(msg, offset, len(msg))
	if err != nil {
		return rr, 0, fmt.Errorf("owner: %w", err)
	}
	rr.Owner = owner
	if offset+10 > len(msg) {
		return rr, 0, &wire.TruncatedError{What: "resource record", Offset: offset, Need: 10, Have: len(msg) - offset}
	}
	var t, length uint16
	t, offset, _ = wire.ReadUint16(msg, offset)
	rr.Type = rdata.DataType(t)
	rr.Class, offset, _ = wire.ReadUint16(msg, offset)
	rr.RawTTL, offset, _ = wire.ReadUint32(msg, offset)
	rr.TTL = wire.NewTimeToLive(rr.RawTTL)
	length, offset, _ = wire.ReadUint16(msg, offset)
	if offset+int(length) > len(msg) {
		return rr, 0, &wire.TruncatedError{What: "resource data", Offset: offset, Need: int(length), Have: len(msg) - offset}
	}
	rr.Data = rdata.ResourceData{Message: msg, Offset: offset, Length: int(length)}
	return rr, offset + int(length), nil
}

// canonicalKey identifies the (type, class, owner, data) tuple with names
// decompressed and lower-cased, so the same record sent twice with
// different compression still collides
func (rr ResourceRecord) canonicalKey(buf []byte) []byte {
	buf = append(buf[:0], byte(rr.Type>>8), byte(rr.Type), byte(rr.Class>>8), byte(rr.Class))
	buf = rr.Owner.AppendCanonical(buf)
	return appendCanonicalData(buf, rr.Type, rr.Data)
}

// appendCanonicalData rewrites embedded names for the types whose names
// may be compressed (RFC 3597 section 4) and copies everything else
func appendCanonicalData(buf []byte, t rdata.DataType, rd rdata.ResourceData) []byte {
	var prefix, names, suffix int
	switch t {
	case rdata.TypeNS, rdata.TypeCNAME, rdata.TypePTR, rdata.TypeDNAME:
		names = 1
	case rdata.TypeMX:
		prefix, names = 2, 1
	case rdata.TypeSRV:
		prefix, names = 6, 1
	case rdata.TypeSOA:
		names, suffix = 2, 20
	default:
		return append(buf, rd.Bytes()...)
	}

	if rd.Length < prefix {
		return append(buf, rd.Bytes()...)
	}
	start := len(buf)
	buf = append(buf, rd.Message[rd.Offset:rd.Offset+prefix]...)
	offset := rd.Offset + prefix
	for i := 0; i < names; i++ {
		n, next, err := name.ParseName(rd.Message, offset, rd.End())
		if err != nil {
			// The decoder rejects it later; compare the raw bytes meanwhile.
			return append(buf[:start], rd.Bytes()...)
		}
		buf = n.AppendCanonical(buf)
		offset = next
	}
	if rd.End()-offset != suffix {
		return append(buf[:start], rd.Bytes()...)
	}
	return append(buf, rd.Message[offset:rd.End()]...)
}
