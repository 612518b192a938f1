package rdata

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/wire"
)

// Text is a TXT record: one or more character-strings
type Text [][]byte

// DecodeTXT decodes a TXT record
func DecodeTXT(rd ResourceData) (Text, error) {
	strings, err := wire.CharacterStrings(rd.Bytes())
	if err != nil {
		return nil, fmt.Errorf("TXT: %w", err)
	}
	return Text(strings), nil
}

// HostInformation is an HINFO record (RFC 8482 uses it for minimal ANY answers)
type HostInformation struct {
	CPU []byte
	OS  []byte
}

// DecodeHINFO decodes an HINFO record: exactly two character-strings
func DecodeHINFO(rd ResourceData) (HostInformation, error) {
	strings, err := wire.CharacterStrings(rd.Bytes())
	if err != nil {
		return HostInformation{}, fmt.Errorf("HINFO: %w", err)
	}
	if len(strings) != 2 {
		return HostInformation{}, &LengthError{Type: TypeHINFO, Length: rd.Length, Want: "two character-strings"}
	}
	return HostInformation{CPU: strings[0], OS: strings[1]}, nil
}

// UniformResourceIdentifier is a URI record (RFC 7553)
type UniformResourceIdentifier struct {
	Priority uint16
	Weight   uint16
	Target   []byte
}

// DecodeURI decodes a URI record. The target is the remainder of the data,
// not a character-string, and must not be empty.
func DecodeURI(rd ResourceData) (UniformResourceIdentifier, error) {
	if err := minimumLength(TypeURI, rd, 4); err != nil {
		return UniformResourceIdentifier{}, err
	}
	data := rd.Bytes()
	priority, next, _ := wire.ReadUint16(data, 0)
	weight, next, _ := wire.ReadUint16(data, next)
	if next == len(data) {
		return UniformResourceIdentifier{}, ErrEmptyURITarget
	}
	return UniformResourceIdentifier{Priority: priority, Weight: weight, Target: data[next:]}, nil
}
