package rdata

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/cuemby/burrow/pkg/name"
)

// ResourceData locates one record's data inside its message. Names in the
// data may be compressed against the whole message, so decoders need both.
type ResourceData struct {
	Message []byte
	Offset  int
	Length  int
}

// Bytes returns the record data without copying
func (rd ResourceData) Bytes() []byte {
	return rd.Message[rd.Offset : rd.Offset+rd.Length : rd.Offset+rd.Length]
}

// End is the offset just past the record data
func (rd ResourceData) End() int {
	return rd.Offset + rd.Length
}

// Raw is record data kept undecoded, owned rather than borrowed from the
// message
type Raw []byte

// DecodeRaw copies the record data unchanged
func DecodeRaw(rd ResourceData) (Raw, error) {
	return Raw(bytes.Clone(rd.Bytes())), nil
}

// String renders the RFC 3597 generic form, e.g. `\# 4 c0000201`
func (r Raw) String() string {
	if len(r) == 0 {
		return `\# 0`
	}
	return `\# ` + strconv.Itoa(len(r)) + " " + hex.EncodeToString(r)
}

func (rd ResourceData) name(offset int) (name.ParsedName, int, error) {
	return name.ParseName(rd.Message, offset, rd.End())
}

func (rd ResourceData) uncompressedName(offset int) (name.ParsedName, int, error) {
	return name.ParseUncompressedName(rd.Message, offset, rd.End())
}

func (rd ResourceData) expectEnd(t DataType, offset int) error {
	if offset != rd.End() {
		return fmt.Errorf("%s: %d bytes after last field: %w", t, rd.End()-offset, ErrTrailingData)
	}
	return nil
}

func minimumLength(t DataType, rd ResourceData, want int) error {
	if rd.Length < want {
		return &LengthError{Type: t, Length: rd.Length, Want: fmt.Sprintf("at least %d", want)}
	}
	return nil
}
