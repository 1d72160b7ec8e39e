package deferral

import (
	"errors"
	"fmt"

	"github.com/roach88/atom/internal/ir"
)

// Sentinel errors.
var (
	// ErrUnknownOperation is returned (wrapped) by a Dispatcher for a method
	// name it does not expose.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrCheckpointFired is returned by Register once the checkpoint fired.
	// Factories check Fired first and take the immediate path instead.
	ErrCheckpointFired = errors.New("checkpoint already fired")
)

// ReplayErrorCode categorizes replay failures.
type ReplayErrorCode string

const (
	// ErrCodeUnknownOperation: the real builder does not expose the method.
	// Non-fatal: the record is skipped.
	ErrCodeUnknownOperation ReplayErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeOperationFailed: the operation returned an error. Ends the entry.
	ErrCodeOperationFailed ReplayErrorCode = "OPERATION_FAILED"

	// ErrCodeOperationPanic: the operation panicked. Ends the entry.
	ErrCodeOperationPanic ReplayErrorCode = "OPERATION_PANIC"

	// ErrCodeConstructFailed: the real builder could not be constructed.
	ErrCodeConstructFailed ReplayErrorCode = "CONSTRUCT_FAILED"
)

// ReplayError describes one failure observed while replaying an entry.
type ReplayError struct {
	Code     ReplayErrorCode
	Category ir.Category
	Key      ir.Key
	Method   string // empty for construction failures
	Seq      int64
	Err      error
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%s: %s %q: %s (seq=%d): %v", e.Code, e.Category, e.Key, e.Method, e.Seq, e.Err)
	}
	return fmt.Sprintf("%s: %s %q: %v", e.Code, e.Category, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReplayError) Unwrap() error {
	return e.Err
}

// IsUnknownOperation reports whether err is, or wraps, an unknown operation.
func IsUnknownOperation(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownOperation
	}
	return errors.Is(err, ErrUnknownOperation)
}

// IsOperationFailure reports whether err ended an entry's replay.
func IsOperationFailure(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeOperationFailed ||
			re.Code == ErrCodeOperationPanic ||
			re.Code == ErrCodeConstructFailed
	}
	return false
}

// ArgError reports an argument that does not fit the operation it was
// recorded for. Recording never validates; this surfaces at dispatch.
type ArgError struct {
	Index   int
	Want    string
	Got     any
	Missing bool
}

// Error implements the error interface.
func (e *ArgError) Error() string {
	if e.Missing {
		return fmt.Sprintf("argument %d: missing, want %s", e.Index, e.Want)
	}
	return fmt.Sprintf("argument %d: want %s, got %T", e.Index, e.Want, e.Got)
}
