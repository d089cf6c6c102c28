package encoder

import (
	"fmt"

	"word15asm/parser"
)

// EncodingError provides source-location context for code-generator
// failures (memory overflow, unresolved entry).
type EncodingError struct {
	Pos     parser.Position
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	location := ""
	if e.Pos.File != "" {
		location = fmt.Sprintf("%s:%d:%d: ", e.Pos.File, e.Pos.Line, e.Pos.Column)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s%s: %v", location, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s%s", location, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

// NewEncodingError creates an EncodingError anchored at pos.
func NewEncodingError(pos parser.Position, message string) *EncodingError {
	return &EncodingError{Pos: pos, Message: message}
}
