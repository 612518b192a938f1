package message

import (
	"errors"
	"fmt"

	"github.com/cuemby/burrow/pkg/rdata"
)

var (
	// Header
	ErrMessageTooShort          = errors.New("message too short for its section counts")
	ErrNotResponse              = errors.New("response bit not set")
	ErrIDMismatch               = errors.New("response id does not match query id")
	ErrInvalidResponseOpcode    = errors.New("response opcode is not query")
	ErrUnassignedResponseOpcode = errors.New("response opcode is unassigned")
	ErrReservedBitSet           = errors.New("reserved header bit is set")
	ErrTruncatedRetryOverTCP    = errors.New("response truncated over UDP, retry over TCP")
	ErrTruncatedOverTCP         = errors.New("response truncated over TCP")
	ErrRecursionDesiredMismatch = errors.New("recursion desired bit does not echo the query")
	ErrCheckingDisabledMismatch = errors.New("checking disabled bit does not echo the query")
	ErrUnexpectedAuthenticData  = errors.New("authentic data bit set but not requested")

	// Question
	ErrQuestionCount    = errors.New("response must carry exactly one question")
	ErrQuestionMismatch = errors.New("question does not match query")

	// Records
	ErrTrailingBytes           = errors.New("bytes after the last resource record")
	ErrUnexpectedClass         = errors.New("resource record class is not the query class")
	ErrQueryOnlyType           = errors.New("query-only type in a resource record")
	ErrDuplicateResourceRecord = errors.New("duplicate resource record")
	ErrUnrelatedAnswer         = errors.New("answer record owner is not the most canonical name")

	// EDNS
	ErrMultipleOPT            = errors.New("more than one OPT record")
	ErrOPTOwnerNotRoot        = errors.New("OPT record owner is not the root")
	ErrOPTOutsideAdditional   = errors.New("OPT record outside the additional section")
	ErrUnsupportedEDNSVersion = errors.New("unsupported EDNS version")

	// Response code
	ErrServerResponseCode     = errors.New("server reported an error")
	ErrInvalidResponseCode    = errors.New("response code is not valid for a query")
	ErrUnassignedResponseCode = errors.New("response code is unassigned")
	ErrReservedResponseCode   = errors.New("response code is reserved")

	// Authority
	ErrMultipleSOA                  = errors.New("more than one SOA record in the authority section")
	ErrMultipleDelegationPoints     = errors.New("authority name servers have different owners")
	ErrDelegationWithoutNameServers = errors.New("referral without name servers")
)

// OpcodeError reports a response opcode other than query
type OpcodeError struct {
	Opcode Opcode
	Err    error
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("opcode %s: %v", e.Opcode, e.Err)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}

// ResponseCodeError reports the full extended response code of a rejected response
type ResponseCodeError struct {
	Code ResponseCode
	Err  error
}

func (e *ResponseCodeError) Error() string {
	return fmt.Sprintf("response code %s: %v", e.Code, e.Err)
}

func (e *ResponseCodeError) Unwrap() error {
	return e.Err
}

// DuplicateResourceRecordError is a (type, owner, data) tuple seen twice in
// one section
type DuplicateResourceRecordError struct {
	Type    rdata.DataType
	Section Section
	Index   int
}

func (e *DuplicateResourceRecordError) Error() string {
	return fmt.Sprintf("%s record %d (%s): duplicate resource record", e.Section, e.Index, e.Type)
}

func (e *DuplicateResourceRecordError) Is(target error) bool {
	return target == ErrDuplicateResourceRecord
}

// RecordError locates a failure on one resource record
type RecordError struct {
	Section Section
	Index   int
	Type    rdata.DataType
	Err     error
	// Data is a copy of the record data, set for ignored records
	Data rdata.Raw
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s record %d (%s): %v", e.Section, e.Index, e.Type, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func recordError(rr ResourceRecord, err error) error {
	return &RecordError{Section: rr.Section, Index: rr.Index, Type: rr.Type, Err: err}
}
