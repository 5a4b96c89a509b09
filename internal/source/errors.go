package source

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord matches every *RecordError.
var ErrMalformedRecord = errors.New("malformed record")

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing column")

// RecordError describes one record whose field could not be parsed.
type RecordError struct {
	File  string
	Line  int
	Field string
	Value string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %s %q: %v", e.File, e.Line, e.Field, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Is reports ErrMalformedRecord so callers can test with errors.Is.
func (e *RecordError) Is(target error) bool { return target == ErrMalformedRecord }
