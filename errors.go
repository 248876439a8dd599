package rowhash

import (
	"errors"
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
)

var (
	// ErrTypeUnsupported is returned when a column's element type, or a
	// nested combination of types, has no defined hash encoding. It is
	// reported before any output is allocated.
	ErrTypeUnsupported = errors.New("unsupported column type")

	// ErrRowCountMismatch is returned when the columns of the input record
	// do not all share the record's row count. This is a precondition
	// violation on the caller's side, never a transient condition.
	ErrRowCountMismatch = errors.New("row count mismatch")

	// ErrNilInput is returned when the input record or one of its columns
	// is nil.
	ErrNilInput = errors.New("nil input")
)

// numRows validates the shape of the input record and returns its row count.
// A record with zero columns or zero rows is valid.
func numRows(input arrow.Record) (int, error) {
	if input == nil {
		return 0, fmt.Errorf("rowhash: %w", ErrNilInput)
	}
	n := int(input.NumRows())
	for i, col := range input.Columns() {
		if col == nil {
			return 0, fmt.Errorf("rowhash: column %d: %w", i, ErrNilInput)
		}
		if col.Len() != n {
			return 0, fmt.Errorf("rowhash: column %d has %d rows but the record declares %d: %w",
				i, col.Len(), n, ErrRowCountMismatch)
		}
	}
	return n, nil
}
