package service

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/foodapp/pkg/store"
)

// Failure kinds returned by every use case. Match them with errors.Is.
var (
	// ErrNotFound indicates the entity id is absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrValidationFailed indicates malformed input, rejected before any
	// cache or store access.
	ErrValidationFailed = errors.New("validation failed")

	// ErrPaymentRejected indicates the order cannot be placed because
	// payment did not succeed.
	ErrPaymentRejected = errors.New("payment rejected")

	// ErrNoChildrenAssigned indicates the parent exists but its association
	// is empty, e.g. a restaurant without any assigned foods.
	ErrNoChildrenAssigned = errors.New("no children assigned")
)

// Error is a use-case failure with a caller-facing message.
type Error struct {
	// Kind is one of the Err* sentinels of this package
	Kind    error
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(err error, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...), Err: err}
}

func validationFailed(format string, args ...any) error {
	return &Error{Kind: ErrValidationFailed, Message: fmt.Sprintf(format, args...)}
}

// storeErr maps store.ErrNotFound to ErrNotFound and passes any other
// store failure through unchanged.
func storeErr(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(err, format, args...)
	}
	return err
}
