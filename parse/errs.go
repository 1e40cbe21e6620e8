package parse

import (
	"errors"
	"fmt"
)

var ErrParse = errors.New("parse error")

// SyntaxError is a parse error at a position of a named file.
type SyntaxError struct {
	Filename string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s: line %d: %s", ErrParse, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s:%d: %s", ErrParse, e.Filename, e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrParse }
