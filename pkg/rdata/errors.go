package rdata

import (
	"errors"
	"fmt"
)

var (
	ErrIncorrectLength = errors.New("incorrect record data length")
	ErrTrailingData    = errors.New("record data has trailing bytes")
	ErrEmptyURITarget  = errors.New("URI target is empty")
	ErrDNSKEYProtocol  = errors.New("DNSKEY protocol is not 3")
	ErrEmptyPublicKey  = errors.New("public key is empty")
	ErrReservedCode    = errors.New("reserved code")
	ErrUnassignedCode  = errors.New("unassigned code")

	ErrTypeBitmapWindowOrder  = errors.New("type bitmap windows out of order")
	ErrTypeBitmapWindowLength = errors.New("type bitmap window length outside 1 to 32")
	ErrTypeBitmapWindowEmpty  = errors.New("type bitmap window has no types")

	ErrNAPTRRegexpAndReplacement = errors.New("NAPTR has both a regular expression and a replacement")
)

// LengthError reports record data whose length is wrong for its type
type LengthError struct {
	Type   DataType
	Length int
	Want   string
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s record data is %d bytes, want %s", e.Type, e.Length, e.Want)
}

func (e *LengthError) Unwrap() error {
	return ErrIncorrectLength
}

// CodeError reports a reserved or unassigned algorithm or digest code.
// Such codes are reported, never replaced by a default.
type CodeError struct {
	Type  DataType
	Field string
	Code  int
	Err   error
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s %s %d: %v", e.Type, e.Field, e.Code, e.Err)
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

// IgnoredReason explains why a well-formed message carried a record that
// is skipped rather than rejected
type IgnoredReason int

const (
	IgnoredUnrecognizedServiceField IgnoredReason = iota + 1
	IgnoredMalformedServiceField
	IgnoredUnknownFlag
	IgnoredDeprecatedAlgorithm
)

func (r IgnoredReason) String() string {
	switch r {
	case IgnoredUnrecognizedServiceField:
		return "unrecognized service field"
	case IgnoredMalformedServiceField:
		return "malformed service field"
	case IgnoredUnknownFlag:
		return "unknown flag"
	case IgnoredDeprecatedAlgorithm:
		return "deprecated algorithm"
	default:
		return fmt.Sprintf("ignored reason %d", int(r))
	}
}

// IgnoredError is returned by a decoder for a record that must be skipped
// without failing the enclosing message
type IgnoredError struct {
	Type   DataType
	Reason IgnoredReason
	Detail string
}

func (e *IgnoredError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s record ignored: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("%s record ignored: %s %q", e.Type, e.Reason, e.Detail)
}

// IsIgnored reports whether err asks for the record to be skipped
func IsIgnored(err error) bool {
	var ignored *IgnoredError
	return errors.As(err, &ignored)
}
