package wire

import (
	"errors"
	"fmt"
)

// ErrTruncated matches every *TruncatedError via errors.Is
var ErrTruncated = errors.New("truncated data")

// TruncatedError reports a read that would run past the end of the data
type TruncatedError struct {
	What   string
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated %s at offset %d: need %d bytes, have %d", e.What, e.Offset, e.Need, e.Have)
}

func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncated
}

// CharacterStringLengthIncorrectError reports a character-string whose
// declared length overruns the enclosing record data
type CharacterStringLengthIncorrectError struct {
	Index     int
	Declared  int
	Remaining int
}

func (e *CharacterStringLengthIncorrectError) Error() string {
	return fmt.Sprintf("character-string %d declares %d bytes but only %d remain", e.Index, e.Declared, e.Remaining)
}

func truncated(what string, data []byte, offset, need int) error {
	have := len(data) - offset
	if have < 0 {
		have = 0
	}
	return &TruncatedError{What: what, Offset: offset, Need: need, Have: have}
}
