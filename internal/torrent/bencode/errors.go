package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed    = errors.New("malformed bencode")
	ErrDuplicateKey = errors.New("duplicate dictionary key")
)

// SyntaxError reports where decoding stopped.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: %s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformed
}
