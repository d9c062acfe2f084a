package plumbing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownHandle is returned when a handle was not produced by the
	// store it is presented to.
	ErrUnknownHandle = errors.New("unknown handle")
	// ErrMalformedInput is the error wrapped by every MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")
	// ErrCapacityExceeded is the error wrapped by every
	// CapacityExceededError.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrFingerprintCollision is returned when collision verification is
	// enabled and two different subtrees share a fingerprint.
	ErrFingerprintCollision = errors.New("fingerprint collision")
	// ErrMappingMismatch is returned when a mapping is used with roots it
	// was not computed for.
	ErrMappingMismatch = errors.New("mapping does not match the given roots")
	// ErrInvalidKind is returned when a kind name is not registered.
	ErrInvalidKind = errors.New("invalid kind")
)

// MalformedInputError is returned when a node cannot be built from the
// given input, e.g. a child that was never interned.
type MalformedInputError struct {
	Reason string
}

// NewMalformedInputError returns a MalformedInputError with a formatted
// reason.
func NewMalformedInputError(format string, args ...interface{}) *MalformedInputError {
	return &MalformedInputError{Reason: fmt.Sprintf(format, args...)}
}

// Error implements Error interface and returns string representation of the error
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// Unwrap returns ErrMalformedInput
func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

// CapacityExceededError is returned when interning a new node would go
// beyond the configured limit of a store.
type CapacityExceededError struct {
	Limit int
}

// Error implements Error interface and returns string representation of the error
func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: store is limited to %d nodes", e.Limit)
}

// Unwrap returns ErrCapacityExceeded
func (e *CapacityExceededError) Unwrap() error {
	return ErrCapacityExceeded
}

// NewUnknownHandleError wraps ErrUnknownHandle with the offending handle.
func NewUnknownHandleError(h Handle) error {
	return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
}
