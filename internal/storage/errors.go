package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NgigiN/finance-tracker/internal/transaction"
)

var (
	// ErrNotInitialized is returned by every operation while the store is not Ready.
	ErrNotInitialized = errors.New("database is not initialized")
	// ErrNotFound is returned when no transaction has the requested id.
	ErrNotFound = errors.New("transaction not found")
	// ErrReadFailure marks storage errors on read paths.
	ErrReadFailure = errors.New("read failure")
	// ErrWriteFailure marks storage errors on write paths.
	ErrWriteFailure = errors.New("write failure")
	// ErrDuplicate is returned when a candidate's SourceRef is already stored.
	ErrDuplicate = errors.New("duplicate transaction")
	// ErrClosed is returned by Init on a store that has been closed.
	ErrClosed = errors.New("database is closed")
)

// ValidationError carries every rule a candidate broke.
type ValidationError struct {
	Violations []transaction.Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, ", ")
}

// DuplicateError names the stored transaction that already carries Ref.
type DuplicateError struct {
	Ref string
	ID  int64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s is already stored as #%d", e.Ref, e.ID)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// OpError wraps an underlying storage error. Kind is ErrReadFailure or
// ErrWriteFailure, so errors.Is works against either sentinel.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func readError(op string, err error) error {
	return &OpError{Op: op, Kind: ErrReadFailure, Err: err}
}

// writeError classifies an error returned from a write transaction. Typed
// failures raised inside the transaction are passed through untouched.
func writeError(op string, err error) error {
	var verr *ValidationError
	var operr *OpError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) || errors.As(err, &verr) || errors.As(err, &operr) {
		return err
	}
	return &OpError{Op: op, Kind: ErrWriteFailure, Err: err}
}
