package name

import (
	"strconv"
	"strings"
)

const (
	MaximumNameLength     = 255
	MaximumNumberOfLabels = 127
	MaximumLabelLength    = 63

	headerSize = 12
)

// CaseFoldedName is an owned, lower-cased domain name. The zero value is
// not a valid name; use Root for the root.
type CaseFoldedName struct {
	// uncompressed wire form including the terminal root octet
	wire   string
	labels uint8
}

// Root is the root name "."
var Root = CaseFoldedName{wire: "\x00"}

func foldByte(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

type builder struct {
	buf    []byte
	labels int
}

func (b *builder) appendLabel(label []byte) error {
	if len(label) == 0 {
		return ErrEmptyNonRootLabel
	}
	if len(label) > MaximumLabelLength {
		return ErrLabelExceeds63Bytes
	}
	if b.labels+1 > MaximumNumberOfLabels {
		return ErrNumberOfLabelsExceed127
	}
	// One octet is always reserved for the root label.
	if len(b.buf)+1+len(label)+1 > MaximumNameLength {
		return ErrTotalNameLengthExceed255Bytes
	}
	b.buf = append(b.buf, byte(len(label)))
	for _, c := range label {
		b.buf = append(b.buf, foldByte(c))
	}
	b.labels++
	return nil
}

func (b *builder) finish() CaseFoldedName {
	b.buf = append(b.buf, 0)
	return CaseFoldedName{wire: string(b.buf), labels: uint8(b.labels)}
}

// FromLabels builds a name from its labels. The final label must be the
// empty root label and no other label may be empty.
func FromLabels(labels [][]byte) (CaseFoldedName, error) {
	if len(labels) == 0 {
		return CaseFoldedName{}, ErrNonEmptyRootLabel
	}
	if len(labels[len(labels)-1]) != 0 {
		return CaseFoldedName{}, ErrNonEmptyRootLabel
	}

	b := builder{buf: make([]byte, 0, MaximumNameLength)}
	for _, label := range labels[:len(labels)-1] {
		if err := b.appendLabel(label); err != nil {
			return CaseFoldedName{}, err
		}
	}
	return b.finish(), nil
}

// Parse parses a name in presentation format. The trailing dot is optional;
// "" and "." are the root. Backslash escapes \X and \DDD are honoured.
func Parse(s string) (CaseFoldedName, error) {
	if s == "" || s == "." {
		return Root, nil
	}

	b := builder{buf: make([]byte, 0, MaximumNameLength)}
	label := make([]byte, 0, MaximumLabelLength+1)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.':
			if err := b.appendLabel(label); err != nil {
				return CaseFoldedName{}, err
			}
			label = label[:0]
			if i == len(s)-1 {
				return b.finish(), nil
			}
		case '\\':
			if i+1 >= len(s) {
				return CaseFoldedName{}, ErrInvalidEscape
			}
			if isDigit(s[i+1]) {
				if i+3 >= len(s) || !isDigit(s[i+2]) || !isDigit(s[i+3]) {
					return CaseFoldedName{}, ErrInvalidEscape
				}
				v, _ := strconv.Atoi(s[i+1 : i+4])
				if v > 255 {
					return CaseFoldedName{}, ErrInvalidEscape
				}
				label = append(label, byte(v))
				i += 3
			} else {
				label = append(label, s[i+1])
				i++
			}
		default:
			label = append(label, c)
		}
		if len(label) > MaximumLabelLength {
			return CaseFoldedName{}, ErrLabelExceeds63Bytes
		}
	}

	if err := b.appendLabel(label); err != nil {
		return CaseFoldedName{}, err
	}
	return b.finish(), nil
}

// MustParse is Parse for names known to be valid; it panics otherwise
func MustParse(s string) CaseFoldedName {
	n, err := Parse(s)
	if err != nil {
		panic("name: MustParse(" + strconv.Quote(s) + "): " + err.Error())
	}
	return n
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// IsValid reports whether n was constructed rather than zero
func (n CaseFoldedName) IsValid() bool {
	return n.wire != ""
}

// IsRoot reports whether n is the root name
func (n CaseFoldedName) IsRoot() bool {
	return n.wire == Root.wire
}

// Len is the uncompressed wire length including the root octet
func (n CaseFoldedName) Len() int {
	return len(n.wire)
}

// NumberOfLabels excludes the root label
func (n CaseFoldedName) NumberOfLabels() int {
	return int(n.labels)
}

// Wire returns a copy of the uncompressed wire form
func (n CaseFoldedName) Wire() []byte {
	return []byte(n.wire)
}

// Labels returns the non-root labels, leftmost first
func (n CaseFoldedName) Labels() []string {
	labels := make([]string, 0, n.labels)
	for i := 0; i < len(n.wire) && n.wire[i] != 0; i += 1 + int(n.wire[i]) {
		labels = append(labels, n.wire[i+1:i+1+int(n.wire[i])])
	}
	return labels
}

// Parent strips the leftmost label. The root has no parent.
func (n CaseFoldedName) Parent() (CaseFoldedName, bool) {
	if n.labels == 0 {
		return CaseFoldedName{}, false
	}
	return CaseFoldedName{wire: n.wire[1+int(n.wire[0]):], labels: n.labels - 1}, true
}

// EndsWith reports whether ancestor is n or one of n's ancestors
func (n CaseFoldedName) EndsWith(ancestor CaseFoldedName) bool {
	if ancestor.labels > n.labels {
		return false
	}
	skip := int(n.labels - ancestor.labels)
	i := 0
	for ; skip > 0; skip-- {
		i += 1 + int(n.wire[i])
	}
	return n.wire[i:] == ancestor.wire
}

// Compare orders names byte-wise on their folded wire form
func (n CaseFoldedName) Compare(other CaseFoldedName) int {
	return strings.Compare(n.wire, other.wire)
}

// String renders n in presentation format with a trailing dot
func (n CaseFoldedName) String() string {
	if n.wire == "" {
		return ""
	}
	if n.IsRoot() {
		return "."
	}
	var sb strings.Builder
	sb.Grow(len(n.wire))
	for _, label := range n.Labels() {
		writeLabel(&sb, label)
		sb.WriteByte('.')
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler
func (n CaseFoldedName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (n *CaseFoldedName) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func writeLabel[S ~string | ~[]byte](sb *strings.Builder, label S) {
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c == '.' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x21 || c > 0x7e:
			sb.WriteByte('\\')
			d := strconv.Itoa(int(c))
			sb.WriteString(strings.Repeat("0", 3-len(d)))
			sb.WriteString(d)
		default:
			sb.WriteByte(c)
		}
	}
}
