package graphlocal

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed edge input at construction time.
	ErrValidation = errors.New("validation failed")

	// ErrIndexOutOfRange is returned when a vertex id is outside [0, n).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInconsistentState is returned when a graph is used before it was
	// built or in a state that does not allow the operation.
	ErrInconsistentState = errors.New("inconsistent state")

	// ErrReadOnly is returned when mutating a graph attached from shared memory.
	ErrReadOnly = fmt.Errorf("%w: graph is a read-only shared view", ErrInconsistentState)

	// ErrStaleDescriptor is returned when a shared descriptor was invalidated
	// by a mutation of the owning graph.
	ErrStaleDescriptor = fmt.Errorf("%w: shared descriptor is stale", ErrInconsistentState)

	// ErrClosed is returned when using a shared view after Close.
	ErrClosed = fmt.Errorf("%w: graph is closed", ErrInconsistentState)
)

// ValidationError describes one rejected edge record.
//
// It matches ErrValidation via errors.Is. The original underlying error (if
// any) can be accessed via errors.Unwrap.
type ValidationError struct {
	// Index is the position of the offending record, or -1 if the whole
	// input was rejected.
	Index  int
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: edge %d: %s", e.Index, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.cause }

// IndexOutOfRangeError reports a vertex id outside [0, N).
//
// It matches ErrIndexOutOfRange via errors.Is.
type IndexOutOfRangeError struct {
	Index int64
	N     int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index out of range: vertex %d not in [0, %d)", e.Index, e.N)
}

func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrIndexOutOfRange }

func invalid(index int, cause error, format string, args ...any) error {
	return &ValidationError{Index: index, Reason: fmt.Sprintf(format, args...), cause: cause}
}

func outOfRange(v int64, n int) error {
	return &IndexOutOfRangeError{Index: v, N: n}
}
