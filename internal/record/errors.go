package record

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a record that failed structural expectations.
	// Parsers collect these per record instead of aborting.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrEmptyInput is returned when the input has no content at all.
	ErrEmptyInput = errors.New("empty input")
)

// ParseError describes one record that could not be parsed.
type ParseError struct {
	Kind Kind
	// Index is the 0-based position of the record in the input.
	Index int
	// ID is the record identifier when it could be read.
	ID     string
	Reason string
}

func (e *ParseError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s record %d (id %s): %s", e.Kind, e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s record %d: %s", e.Kind, e.Index, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformedRecord }

// Malformed builds a ParseError for the given record.
func Malformed(kind Kind, index int, id, reason string) error {
	return &ParseError{Kind: kind, Index: index, ID: id, Reason: reason}
}
