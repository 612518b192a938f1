package name

import (
	"errors"
	"fmt"
)

var (
	ErrTotalNameLengthExceed255Bytes = errors.New("total name length exceeds 255 bytes")
	ErrNumberOfLabelsExceed127       = errors.New("number of labels exceeds 127")
	ErrLabelExceeds63Bytes           = errors.New("label exceeds 63 bytes")
	ErrEmptyNonRootLabel             = errors.New("empty non-root label")
	ErrNonEmptyRootLabel             = errors.New("non-empty root label")
	ErrInvalidEscape                 = errors.New("invalid escape sequence")

	ErrExtendedLabelType            = errors.New("extended label type (01) is not supported")
	ErrReservedLabelType            = errors.New("reserved label type (10)")
	ErrCompressionNotPermitted      = errors.New("compression pointer where compression is not permitted")
	ErrCompressionPointerForward    = errors.New("compression pointer does not point backwards")
	ErrCompressionPointerIntoHeader = errors.New("compression pointer points into the message header")
	ErrNameTruncated                = errors.New("name runs past the end of its data")

	ErrMaximumChainLength     = errors.New("canonical name chain exceeds maximum length")
	ErrCanonicalNameLoop      = errors.New("canonical name chain loops")
	ErrUnchainedCanonicalName = errors.New("canonical name record does not extend the chain")
	ErrMultipleCanonicalNames = errors.New("more than one canonical name record for the same owner")
	ErrAuthorityNameMismatch  = errors.New("authority name is not an ancestor of the most canonical name")
)

// LabelError locates a name decoding failure within a message
type LabelError struct {
	Offset int
	Err    error
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("name at offset %d: %v", e.Offset, e.Err)
}

func (e *LabelError) Unwrap() error {
	return e.Err
}
