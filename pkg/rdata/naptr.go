package rdata

import (
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/wire"
)

// NAPTRFlag is the single-letter NAPTR flag (RFC 3404 section 4.3)
type NAPTRFlag byte

const (
	// NAPTRFlagEmpty means the replacement is the key of another NAPTR lookup
	NAPTRFlagEmpty NAPTRFlag = 0
	// NAPTRFlagS: the next lookup is for SRV records
	NAPTRFlagS NAPTRFlag = 'S'
	// NAPTRFlagA: the next lookup is for address records
	NAPTRFlagA NAPTRFlag = 'A'
	// NAPTRFlagU: the regular expression produces a URI
	NAPTRFlagU NAPTRFlag = 'U'
	// NAPTRFlagP: the rest of the rewrite is protocol specific and
	// further NAPTR lookups are required
	NAPTRFlagP NAPTRFlag = 'P'
)

// IsTerminal reports whether the rewrite ends the NAPTR lookup chain
func (f NAPTRFlag) IsTerminal() bool {
	switch f {
	case NAPTRFlagS, NAPTRFlagA, NAPTRFlagU:
		return true
	}
	return false
}

func (f NAPTRFlag) String() string {
	if f == NAPTRFlagEmpty {
		return ""
	}
	return string(rune(f))
}

func parseNAPTRFlag(raw []byte) (NAPTRFlag, error) {
	if len(raw) == 0 {
		return NAPTRFlagEmpty, nil
	}
	if len(raw) == 1 {
		switch f := NAPTRFlag(foldUpper(raw[0])); f {
		case NAPTRFlagS, NAPTRFlagA, NAPTRFlagU, NAPTRFlagP:
			return f, nil
		}
	}
	return NAPTRFlagEmpty, &IgnoredError{Type: TypeNAPTR, Reason: IgnoredUnknownFlag, Detail: string(raw)}
}

func foldUpper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// NamingAuthorityPointer is a NAPTR record (RFC 3403)
type NamingAuthorityPointer struct {
	Order       uint16
	Preference  uint16
	Flag        NAPTRFlag
	Service     ServiceField
	Regexp      []byte
	Replacement name.ParsedName
}

// DecodeNAPTR decodes a NAPTR record. An unknown flag or an unrecognized or
// malformed service field yields an *IgnoredError so the caller can skip
// the record without failing the message.
func DecodeNAPTR(rd ResourceData) (NamingAuthorityPointer, error) {
	if err := minimumLength(TypeNAPTR, rd, 8); err != nil {
		return NamingAuthorityPointer{}, err
	}
	data := rd.Message[:rd.End()]
	var naptr NamingAuthorityPointer
	offset := rd.Offset
	naptr.Order, offset, _ = wire.ReadUint16(data, offset)
	naptr.Preference, offset, _ = wire.ReadUint16(data, offset)

	flags, offset, err := wire.ReadCharacterString(data, offset)
	if err != nil {
		return NamingAuthorityPointer{}, err
	}
	services, offset, err := wire.ReadCharacterString(data, offset)
	if err != nil {
		return NamingAuthorityPointer{}, err
	}
	regexp, offset, err := wire.ReadCharacterString(data, offset)
	if err != nil {
		return NamingAuthorityPointer{}, err
	}
	replacement, offset, err := rd.uncompressedName(offset)
	if err != nil {
		return NamingAuthorityPointer{}, err
	}
	if err := rd.expectEnd(TypeNAPTR, offset); err != nil {
		return NamingAuthorityPointer{}, err
	}
	if len(regexp) != 0 && !replacement.IsRoot() {
		return NamingAuthorityPointer{}, ErrNAPTRRegexpAndReplacement
	}

	naptr.Regexp = regexp
	naptr.Replacement = replacement

	// Structural errors above are fatal; flag and service problems only
	// make this one record unusable.
	if naptr.Flag, err = parseNAPTRFlag(flags); err != nil {
		return NamingAuthorityPointer{}, err
	}
	if naptr.Service, err = ParseServiceField(services); err != nil {
		return NamingAuthorityPointer{}, err
	}
	return naptr, nil
}
