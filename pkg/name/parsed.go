package name

import "strings"

// ParsedName is a zero-copy view of a name inside a received message.
// Its labels were validated when it was parsed, so walking them again
// cannot fail.
type ParsedName struct {
	message []byte
	offset  int
	length  uint8
	labels  uint8
}

// ParseName decodes the name starting at offset in message; the name's own
// octets must end at or before end. It returns the offset just past the
// name in the uncompressed stream (after the first pointer, if any).
func ParseName(message []byte, offset, end int) (ParsedName, int, error) {
	return parseName(message, offset, end, true)
}

// ParseUncompressedName is ParseName for record data in which compression
// is forbidden, such as the NSEC next domain name or the NAPTR replacement.
func ParseUncompressedName(message []byte, offset, end int) (ParsedName, int, error) {
	return parseName(message, offset, end, false)
}

func parseName(message []byte, offset, end int, allowCompression bool) (ParsedName, int, error) {
	if end > len(message) {
		end = len(message)
	}

	fail := func(at int, err error) (ParsedName, int, error) {
		return ParsedName{}, offset, &LabelError{Offset: at, Err: err}
	}

	var (
		pos    = offset
		limit  = end
		next   = -1
		length = 0
		labels = 0
	)
	for {
		if pos < 0 || pos >= limit {
			return fail(pos, ErrNameTruncated)
		}
		lead := message[pos]
		switch lead >> 6 {
		case 0b00:
			size := int(lead & 0x3f)
			if size == 0 {
				length++
				if next < 0 {
					next = pos + 1
				}
				return ParsedName{
					message: message,
					offset:  offset,
					length:  uint8(length),
					labels:  uint8(labels),
				}, next, nil
			}
			if pos+1+size > limit {
				return fail(pos, ErrNameTruncated)
			}
			if labels+1 > MaximumNumberOfLabels {
				return fail(pos, ErrNumberOfLabelsExceed127)
			}
			if length+1+size+1 > MaximumNameLength {
				return fail(pos, ErrTotalNameLengthExceed255Bytes)
			}
			labels++
			length += 1 + size
			pos += 1 + size

		case 0b11:
			if !allowCompression {
				return fail(pos, ErrCompressionNotPermitted)
			}
			if pos+2 > limit {
				return fail(pos, ErrNameTruncated)
			}
			target := int(lead&0x3f)<<8 | int(message[pos+1])
			if target >= pos {
				return fail(pos, ErrCompressionPointerForward)
			}
			if target < headerSize {
				return fail(pos, ErrCompressionPointerIntoHeader)
			}
			if next < 0 {
				next = pos + 2
			}
			// Labels reached through the pointer must lie wholly before it.
			limit = pos
			pos = target

		case 0b01:
			return fail(pos, ErrExtendedLabelType)

		default:
			return fail(pos, ErrReservedLabelType)
		}
	}
}

type labelIterator struct {
	message []byte
	pos     int
}

func (n ParsedName) iterator() labelIterator {
	return labelIterator{message: n.message, pos: n.offset}
}

// next returns the next non-root label; ok is false at the root
func (it *labelIterator) next() (label []byte, ok bool) {
	for {
		lead := it.message[it.pos]
		if lead>>6 == 0b11 {
			it.pos = int(lead&0x3f)<<8 | int(it.message[it.pos+1])
			continue
		}
		if lead == 0 {
			return nil, false
		}
		label = it.message[it.pos+1 : it.pos+1+int(lead)]
		it.pos += 1 + int(lead)
		return label, true
	}
}

// IsValid reports whether n was produced by a successful parse
func (n ParsedName) IsValid() bool {
	return n.message != nil
}

// IsRoot reports whether n is the root name
func (n ParsedName) IsRoot() bool {
	return n.labels == 0
}

// Len is the uncompressed wire length including the root octet
func (n ParsedName) Len() int {
	return int(n.length)
}

// NumberOfLabels excludes the root label
func (n ParsedName) NumberOfLabels() int {
	return int(n.labels)
}

// ToCaseFolded promotes n to an owned, lower-cased name
func (n ParsedName) ToCaseFolded() CaseFoldedName {
	buf := n.AppendCanonical(make([]byte, 0, n.length))
	return CaseFoldedName{wire: string(buf), labels: n.labels}
}

// Equal compares two parsed names case-insensitively without allocating
func (n ParsedName) Equal(other ParsedName) bool {
	if n.length != other.length || n.labels != other.labels {
		return false
	}
	a, b := n.iterator(), other.iterator()
	for {
		la, okA := a.next()
		lb, okB := b.next()
		if okA != okB {
			return false
		}
		if !okA {
			return true
		}
		if !equalFold(la, lb) {
			return false
		}
	}
}

// EqualFolded compares n with an owned name without allocating
func (n ParsedName) EqualFolded(folded CaseFoldedName) bool {
	if int(n.length) != folded.Len() || int(n.labels) != folded.NumberOfLabels() {
		return false
	}
	it := n.iterator()
	i := 0
	for label, ok := it.next(); ok; label, ok = it.next() {
		size := int(folded.wire[i])
		if size != len(label) {
			return false
		}
		for j, c := range label {
			if foldByte(c) != folded.wire[i+1+j] {
				return false
			}
		}
		i += 1 + size
	}
	return true
}

// IsSubdomainOf reports whether ancestor is n or one of n's ancestors
func (n ParsedName) IsSubdomainOf(ancestor ParsedName) bool {
	if ancestor.labels > n.labels {
		return false
	}
	return n.ToCaseFolded().EndsWith(ancestor.ToCaseFolded())
}

// String renders n in presentation format with a trailing dot
func (n ParsedName) String() string {
	if !n.IsValid() {
		return ""
	}
	if n.IsRoot() {
		return "."
	}
	var sb strings.Builder
	it := n.iterator()
	for label, ok := it.next(); ok; label, ok = it.next() {
		writeLabel(&sb, label)
		sb.WriteByte('.')
	}
	return sb.String()
}

// AppendCanonical appends the lower-cased uncompressed wire form of n to buf
func (n ParsedName) AppendCanonical(buf []byte) []byte {
	it := n.iterator()
	for label, ok := it.next(); ok; label, ok = it.next() {
		buf = append(buf, byte(len(label)))
		for _, c := range label {
			buf = append(buf, foldByte(c))
		}
	}
	return append(buf, 0)
}

func equalFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}
