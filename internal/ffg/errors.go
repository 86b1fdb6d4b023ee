package ffg

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when the access gate refuses an action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a target id is absent from the tree.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidState is returned when a record is the wrong kind or shape for
	// the operation (compress a folder, decrypt plaintext, ...).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned for malformed arguments such as an empty name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransformFailure is returned when a content transform cannot complete.
	ErrTransformFailure = errors.New("transform failed")

	// ErrCycle is returned when a move would make a folder its own ancestor.
	ErrCycle = errors.New("move would create a cycle")

	// ErrConflict is returned by TreeStore.CompareAndSwap when the tree changed
	// underneath the caller, and when a record id is already taken.
	ErrConflict = errors.New("conflict")

	// ErrPersist wraps persister failures. The in-memory tree has already been
	// replaced when this is returned.
	ErrPersist = errors.New("saving tree failed")

	// ErrNoSnapshot is returned by Persister.Load when nothing was saved yet.
	ErrNoSnapshot = errors.New("no snapshot saved")
)

// OpError records the operation and target that failed, like os.PathError.
type OpError struct {
	Op  string
	ID  string
	Err error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// invalidState builds an ErrInvalidState with a reason.
func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// invalidInput builds an ErrInvalidInput with a reason.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
