package objectmap

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEmpty is returned by LoadSerializable when the target collection
	// already holds records.
	ErrNotEmpty = errors.New("collection is not empty")

	// ErrEmptyCollection is returned by operations that need at least one
	// record, such as stacking values of an empty collection.
	ErrEmptyCollection = errors.New("collection is empty")

	// ErrNoClassVotes is returned when a majority class is requested for a
	// record without class votes.
	ErrNoClassVotes = errors.New("record has no class votes")
)

// ErrFieldNotFound indicates a record is missing a requested field.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrFieldNotFound struct {
	Key   string
	cause error
}

func (e *ErrFieldNotFound) Error() string {
	return fmt.Sprintf("field %q not found", e.Key)
}

func (e *ErrFieldNotFound) Unwrap() error { return e.cause }

// ErrIndexOutOfRange indicates an index outside the valid range.
type ErrIndexOutOfRange struct {
	Index  int
	Length int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}

// ErrMaskLengthMismatch indicates a boolean mask whose length does not
// equal the collection length.
type ErrMaskLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrMaskLengthMismatch) Error() string {
	return fmt.Sprintf("mask length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrDimensionMismatch indicates a descriptor/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrShapeMismatch indicates a value whose numeric shape disagrees with the
// rest of its column.
type ErrShapeMismatch struct {
	Key      string
	Expected int
	Actual   int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch for field %q: expected width %d, got %d", e.Key, e.Expected, e.Actual)
}

// ErrNotStackable indicates a field value that cannot be normalized into a
// numeric vector for stacking.
type ErrNotStackable struct {
	Key   string
	Value any
}

func (e *ErrNotStackable) Error() string {
	return fmt.Sprintf("field %q value of type %T cannot be stacked", e.Key, e.Value)
}

// ErrNotIndexable indicates a field value that does not support inner
// element selection.
type ErrNotIndexable struct {
	Key   string
	Value any
}

func (e *ErrNotIndexable) Error() string {
	return fmt.Sprintf("field %q value of type %T cannot be indexed", e.Key, e.Value)
}

// ErrClassColorMissing indicates a palette without an entry for a class.
type ErrClassColorMissing struct {
	Class int
}

func (e *ErrClassColorMissing) Error() string {
	return fmt.Sprintf("palette has no color for class %d", e.Class)
}

// recordError tags err with the position of the record it concerns.
func recordError(i int, err error) error {
	return fmt.Errorf("record %d: %w", i, err)
}
