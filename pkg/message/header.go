package message

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/wire"
)

// HeaderSize is the fixed size of a DNS message header
const HeaderSize = 12

const (
	minimumQuestionSize = 5  // root name, type, class
	minimumRecordSize   = 11 // root name, type, class, ttl, rdlength
)

// Opcode is the 4-bit kind of a DNS message
type Opcode uint8

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1 // obsolete, RFC 3425
	OpcodeStatus Opcode = 2
	OpcodeNotify Opcode = 4 // RFC 1996
	OpcodeUpdate Opcode = 5 // RFC 2136
	OpcodeDSO    Opcode = 6 // RFC 8490
)

func (o Opcode) String() string {
	switch o {
	case OpcodeQuery:
		return "QUERY"
	case OpcodeIQuery:
		return "IQUERY"
	case OpcodeStatus:
		return "STATUS"
	case OpcodeNotify:
		return "NOTIFY"
	case OpcodeUpdate:
		return "UPDATE"
	case OpcodeDSO:
		return "DSO"
	}
	return fmt.Sprintf("OPCODE%d", uint8(o))
}

// Header is the decoded fixed header of a message
type Header struct {
	ID                 uint16
	Response           bool
	Opcode             Opcode
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	Zero               bool
	AuthenticData      bool
	CheckingDisabled   bool
	// ResponseCode holds only the low four bits; the rest live in OPT
	ResponseCode    uint8
	QuestionCount   uint16
	AnswerCount     uint16
	AuthorityCount  uint16
	AdditionalCount uint16
}

// ParseHeader decodes the first twelve bytes of msg
func ParseHeader(msg []byte) (Header, error) {
	if len(msg) < HeaderSize {
		return Header{}, &wire.TruncatedError{What: "header", Offset: 0, Need: HeaderSize, Have: len(msg)}
	}
	var h Header
	h.ID, _, _ = wire.ReadUint16(msg, 0)
	flags, _, _ := wire.ReadUint16(msg, 2)
	h.Response = flags&0x8000 != 0
	h.Opcode = Opcode(flags >> 11 & 0xf)
	h.Authoritative = flags&0x0400 != 0
	h.Truncated = flags&0x0200 != 0
	h.RecursionDesired = flags&0x0100 != 0
	h.RecursionAvailable = flags&0x0080 != 0
	h.Zero = flags&0x0040 != 0
	h.AuthenticData = flags&0x0020 != 0
	h.CheckingDisabled = flags&0x0010 != 0
	h.ResponseCode = uint8(flags & 0xf)
	h.QuestionCount, _, _ = wire.ReadUint16(msg, 4)
	h.AnswerCount, _, _ = wire.ReadUint16(msg, 6)
	h.AuthorityCount, _, _ = wire.ReadUint16(msg, 8)
	h.AdditionalCount, _, _ = wire.ReadUint16(msg, 10)
	return h, nil
}

// minimumLength is the smallest message that could hold the declared sections
func (h Header) minimumLength() int {
	records := int(h.AnswerCount) + int(h.AuthorityCount) + int(h.AdditionalCount)
	return HeaderSize + int(h.QuestionCount)*minimumQuestionSize + records*minimumRecordSize
}

func (h Header) recordCount() int {
	return int(h.AnswerCount) + int(h.AuthorityCount) + int(h.AdditionalCount)
}

// validate applies the header checks in order; each is a hard failure
func (h Header) validate(q Query, length int) error {
	if !h.Response {
		return ErrNotResponse
	}
	if h.ID != q.ID {
		return fmt.Errorf("got %d want %d: %w", h.ID, q.ID, ErrIDMismatch)
	}
	switch h.Opcode {
	case OpcodeQuery:
	case OpcodeIQuery, OpcodeStatus, OpcodeNotify, OpcodeUpdate, OpcodeDSO:
		return &OpcodeError{Opcode: h.Opcode, Err: ErrInvalidResponseOpcode}
	default:
		return &OpcodeError{Opcode: h.Opcode, Err: ErrUnassignedResponseOpcode}
	}
	if h.Zero {
		return ErrReservedBitSet
	}
	if h.Truncated {
		if q.Transport == TransportUDP {
			return ErrTruncatedRetryOverTCP
		}
		return ErrTruncatedOverTCP
	}
	if length < h.minimumLength() {
		return fmt.Errorf("%d bytes, need at least %d: %w", length, h.minimumLength(), ErrMessageTooShort)
	}
	if h.RecursionDesired != q.RecursionDesired {
		return ErrRecursionDesiredMismatch
	}
	if h.CheckingDisabled != q.CheckingDisabled {
		return ErrCheckingDisabledMismatch
	}
	// RFC 6840 section 5.7: AD is only meaningful when the query asked for it.
	if h.AuthenticData && !q.AuthenticData && !q.DNSSECOK {
		return ErrUnexpectedAuthenticData
	}
	return nil
}
