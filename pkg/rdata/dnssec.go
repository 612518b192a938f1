package rdata

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/wire"
)

// SecurityAlgorithm is a DNSSEC algorithm number (RFC 4034 appendix A.1)
type SecurityAlgorithm uint8

const (
	AlgorithmDelete           SecurityAlgorithm = 0
	AlgorithmRSAMD5           SecurityAlgorithm = 1
	AlgorithmDH               SecurityAlgorithm = 2
	AlgorithmDSA              SecurityAlgorithm = 3
	AlgorithmRSASHA1          SecurityAlgorithm = 5
	AlgorithmDSANSEC3SHA1     SecurityAlgorithm = 6
	AlgorithmRSASHA1NSEC3SHA1 SecurityAlgorithm = 7
	AlgorithmRSASHA256        SecurityAlgorithm = 8
	AlgorithmRSASHA512        SecurityAlgorithm = 10
	AlgorithmECCGOST          SecurityAlgorithm = 12
	AlgorithmECDSAP256SHA256  SecurityAlgorithm = 13
	AlgorithmECDSAP384SHA384  SecurityAlgorithm = 14
	AlgorithmED25519          SecurityAlgorithm = 15
	AlgorithmED448            SecurityAlgorithm = 16
	AlgorithmSM2SM3           SecurityAlgorithm = 17
	AlgorithmECCGOST12        SecurityAlgorithm = 23
	AlgorithmIndirect         SecurityAlgorithm = 252
	AlgorithmPrivateDNS       SecurityAlgorithm = 253
	AlgorithmPrivateOID       SecurityAlgorithm = 254
)

func classifyAlgorithm(t DataType, a SecurityAlgorithm) error {
	switch {
	case a == 0 || a == 4 || a == 9 || a == 11 || a == 255 || (a >= 123 && a <= 251):
		return &CodeError{Type: t, Field: "algorithm", Code: int(a), Err: ErrReservedCode}
	case (a >= 18 && a <= 22) || (a >= 24 && a <= 122):
		return &CodeError{Type: t, Field: "algorithm", Code: int(a), Err: ErrUnassignedCode}
	case a == AlgorithmRSAMD5:
		// RFC 8624: MUST NOT be used for validation.
		return &IgnoredError{Type: t, Reason: IgnoredDeprecatedAlgorithm, Detail: "RSAMD5"}
	}
	return nil
}

// fixedKeyLengths are the exact public key sizes of curve algorithms
var fixedKeyLengths = map[SecurityAlgorithm]int{
	AlgorithmECDSAP256SHA256: 64,
	AlgorithmECDSAP384SHA384: 96,
	AlgorithmED25519:         32,
	AlgorithmED448:           57,
}

// DNSKEY flag bits (RFC 4034 section 2.1.1, RFC 5011)
const (
	FlagZoneKey          uint16 = 0x0100
	FlagRevoked          uint16 = 0x0080
	FlagSecureEntryPoint uint16 = 0x0001
)

// DNSKey is a DNSKEY or CDNSKEY record
type DNSKey struct {
	Flags     uint16
	Protocol  uint8
	Algorithm SecurityAlgorithm
	PublicKey []byte
	// Delete is the RFC 8078 CDNSKEY form requesting removal of DS records
	Delete bool
}

func (k DNSKey) IsZoneKey() bool          { return k.Flags&FlagZoneKey != 0 }
func (k DNSKey) IsRevoked() bool          { return k.Flags&FlagRevoked != 0 }
func (k DNSKey) IsSecureEntryPoint() bool { return k.Flags&FlagSecureEntryPoint != 0 }

// DecodeDNSKEY decodes a DNSKEY record
func DecodeDNSKEY(rd ResourceData) (DNSKey, error) {
	return decodeKey(TypeDNSKEY, rd)
}

// DecodeCDNSKEY decodes a CDNSKEY record, accepting the delete form
func DecodeCDNSKEY(rd ResourceData) (DNSKey, error) {
	return decodeKey(TypeCDNSKEY, rd)
}

func decodeKey(t DataType, rd ResourceData) (DNSKey, error) {
	if err := minimumLength(t, rd, 5); err != nil {
		return DNSKey{}, err
	}
	data := rd.Bytes()
	var key DNSKey
	key.Flags, _, _ = wire.ReadUint16(data, 0)
	key.Protocol = data[2]
	key.Algorithm = SecurityAlgorithm(data[3])
	key.PublicKey = data[4:]

	if key.Protocol != 3 {
		return DNSKey{}, fmt.Errorf("%s protocol %d: %w", t, key.Protocol, ErrDNSKEYProtocol)
	}
	if t == TypeCDNSKEY && key.Algorithm == AlgorithmDelete {
		if key.Flags != 0 || len(key.PublicKey) != 1 || key.PublicKey[0] != 0 {
			return DNSKey{}, &LengthError{Type: t, Length: rd.Length, Want: "delete form 0 3 0 AA=="}
		}
		key.Delete = true
		return key, nil
	}
	if err := classifyAlgorithm(t, key.Algorithm); err != nil {
		return DNSKey{}, err
	}
	if err := validatePublicKey(t, key.Algorithm, key.PublicKey); err != nil {
		return DNSKey{}, err
	}
	return key, nil
}

func validatePublicKey(t DataType, a SecurityAlgorithm, key []byte) error {
	if want, ok := fixedKeyLengths[a]; ok {
		if len(key) != want {
			return &LengthError{Type: t, Length: len(key) + 4, Want: fmt.Sprintf("exactly %d", want+4)}
		}
		return nil
	}
	switch a {
	case AlgorithmRSASHA1, AlgorithmRSASHA1NSEC3SHA1, AlgorithmRSASHA256, AlgorithmRSASHA512:
		// RFC 3110 section 2: exponent length is one octet, or zero then two octets.
		if len(key) == 0 {
			return ErrEmptyPublicKey
		}
		exponentLength, header := int(key[0]), 1
		if exponentLength == 0 {
			if len(key) < 3 {
				return &LengthError{Type: t, Length: len(key) + 4, Want: "RSA exponent length"}
			}
			exponentLength, header = int(key[1])<<8|int(key[2]), 3
		}
		if exponentLength == 0 || header+exponentLength >= len(key) {
			return &LengthError{Type: t, Length: len(key) + 4, Want: "RSA exponent and modulus"}
		}
		return nil
	}
	if len(key) == 0 {
		return ErrEmptyPublicKey
	}
	return nil
}

// DigestType is a delegation signer digest algorithm number
type DigestType uint8

const (
	DigestSHA1     DigestType = 1
	DigestSHA256   DigestType = 2
	DigestGOST     DigestType = 3
	DigestSHA384   DigestType = 4
	DigestGOST2012 DigestType = 5
	DigestSM3      DigestType = 6
)

var digestLengths = map[DigestType]int{
	DigestSHA1:     20,
	DigestSHA256:   32,
	DigestGOST:     32,
	DigestSHA384:   48,
	DigestGOST2012: 64,
	DigestSM3:      32,
}

// DelegationSigner is a DS or CDS record
type DelegationSigner struct {
	KeyTag     uint16
	Algorithm  SecurityAlgorithm
	DigestType DigestType
	Digest     []byte
	// Delete is the RFC 8078 CDS form requesting removal of DS records
	Delete bool
}

// DecodeDS decodes a DS record
func DecodeDS(rd ResourceData) (DelegationSigner, error) {
	return decodeDelegationSigner(TypeDS, rd)
}

// DecodeCDS decodes a CDS record, accepting the delete form
func DecodeCDS(rd ResourceData) (DelegationSigner, error) {
	return decodeDelegationSigner(TypeCDS, rd)
}

func decodeDelegationSigner(t DataType, rd ResourceData) (DelegationSigner, error) {
	if err := minimumLength(t, rd, 5); err != nil {
		return DelegationSigner{}, err
	}
	data := rd.Bytes()
	var ds DelegationSigner
	ds.KeyTag, _, _ = wire.ReadUint16(data, 0)
	ds.Algorithm = SecurityAlgorithm(data[2])
	ds.DigestType = DigestType(data[3])
	ds.Digest = data[4:]

	if t == TypeCDS && ds.Algorithm == AlgorithmDelete && ds.DigestType == 0 {
		if ds.KeyTag != 0 || len(ds.Digest) != 1 || ds.Digest[0] != 0 {
			return DelegationSigner{}, &LengthError{Type: t, Length: rd.Length, Want: "delete form 0 0 0 00"}
		}
		ds.Delete = true
		return ds, nil
	}
	if err := classifyAlgorithm(t, ds.Algorithm); err != nil {
		return DelegationSigner{}, err
	}
	if ds.DigestType == 0 {
		return DelegationSigner{}, &CodeError{Type: t, Field: "digest type", Code: 0, Err: ErrReservedCode}
	}
	want, ok := digestLengths[ds.DigestType]
	if !ok {
		return DelegationSigner{}, &CodeError{Type: t, Field: "digest type", Code: int(ds.DigestType), Err: ErrUnassignedCode}
	}
	if len(ds.Digest) != want {
		return DelegationSigner{}, &LengthError{Type: t, Length: rd.Length, Want: fmt.Sprintf("exactly %d", want+4)}
	}
	return ds, nil
}

// TypeBitmap is the validated window-block encoding of a set of types
// (RFC 4034 section 4.1.2)
type TypeBitmap []byte

// ParseTypeBitmap validates a type bitmap; truncated or leftover data is an error
func ParseTypeBitmap(data []byte) (TypeBitmap, error) {
	previous := -1
	for offset := 0; offset < len(data); {
		if offset+2 > len(data) {
			return nil, &wire.TruncatedError{What: "type bitmap window", Offset: offset, Need: 2, Have: len(data) - offset}
		}
		window, length := int(data[offset]), int(data[offset+1])
		if window <= previous {
			return nil, ErrTypeBitmapWindowOrder
		}
		if length < 1 || length > 32 {
			return nil, ErrTypeBitmapWindowLength
		}
		if offset+2+length > len(data) {
			return nil, &wire.TruncatedError{What: "type bitmap", Offset: offset + 2, Need: length, Have: len(data) - offset - 2}
		}
		empty := true
		for _, b := range data[offset+2 : offset+2+length] {
			if b != 0 {
				empty = false
				break
			}
		}
		if empty {
			return nil, ErrTypeBitmapWindowEmpty
		}
		previous = window
		offset += 2 + length
	}
	return TypeBitmap(data), nil
}

// Has reports whether t is in the set
func (b TypeBitmap) Has(t DataType) bool {
	window, bit := int(t>>8), int(t&0xff)
	for offset := 0; offset+2 <= len(b); offset += 2 + int(b[offset+1]) {
		if int(b[offset]) != window {
			continue
		}
		index := bit / 8
		if index >= int(b[offset+1]) {
			return false
		}
		return b[offset+2+index]&(0x80>>(bit%8)) != 0
	}
	return false
}

// Types lists the set in ascending order
func (b TypeBitmap) Types() []DataType {
	var types []DataType
	for offset := 0; offset+2 <= len(b); offset += 2 + int(b[offset+1]) {
		window := int(b[offset])
		for i, octet := range b[offset+2 : offset+2+int(b[offset+1])] {
			for bit := 0; bit < 8; bit++ {
				if octet&(0x80>>bit) != 0 {
					types = append(types, DataType(window<<8|i*8+bit))
				}
			}
		}
	}
	return types
}

// NextSecure is an NSEC record
type NextSecure struct {
	NextDomainName name.ParsedName
	Types          TypeBitmap
}

// DecodeNSEC decodes an NSEC record. The next domain name must not be compressed.
func DecodeNSEC(rd ResourceData) (NextSecure, error) {
	next, offset, err := rd.uncompressedName(rd.Offset)
	if err != nil {
		return NextSecure{}, fmt.Errorf("NSEC next domain name: %w", err)
	}
	bitmap, err := ParseTypeBitmap(rd.Message[offset:rd.End()])
	if err != nil {
		return NextSecure{}, fmt.Errorf("NSEC: %w", err)
	}
	return NextSecure{NextDomainName: next, Types: bitmap}, nil
}
