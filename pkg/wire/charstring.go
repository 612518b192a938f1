package wire

// MaximumCharacterStringLength is the largest length a single length octet can declare
const MaximumCharacterStringLength = 255

// ReadCharacterString reads one length-prefixed character-string
// (RFC 1035 section 3.3) at offset. The returned slice aliases data.
func ReadCharacterString(data []byte, offset int) ([]byte, int, error) {
	length, next, err := ReadUint8(data, offset)
	if err != nil {
		return nil, offset, err
	}
	if next+int(length) > len(data) {
		return nil, offset, &CharacterStringLengthIncorrectError{
			Index:     0,
			Declared:  int(length),
			Remaining: len(data) - next,
		}
	}
	return data[next : next+int(length) : next+int(length)], next + int(length), nil
}

// CharacterStrings decodes record data consisting entirely of
// character-strings, as used by TXT. At least one string must be present.
func CharacterStrings(rdata []byte) ([][]byte, error) {
	if len(rdata) == 0 {
		return nil, &CharacterStringLengthIncorrectError{Index: 0, Declared: 1, Remaining: 0}
	}

	var out [][]byte
	offset := 0
	for index := 0; offset < len(rdata); index++ {
		s, next, err := ReadCharacterString(rdata, offset)
		if err != nil {
			if lengthErr, ok := err.(*CharacterStringLengthIncorrectError); ok {
				lengthErr.Index = index
			}
			return nil, err
		}
		out = append(out, s)
		offset = next
	}
	return out, nil
}
