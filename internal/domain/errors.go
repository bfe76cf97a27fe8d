package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

type ConflictError struct {
	Msg string
	Err error
}

func (e ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "conflict"
}

func (e ConflictError) Unwrap() error { return e.Err }

// CapacityError is returned when a seat reservation asks for more seats
// than the train has left.
type CapacityError struct {
	Requested int
	Available int
}

func (e CapacityError) Error() string {
	return "Not enough seats available"
}

// StateError is returned for operations invalid in the record's current
// state, e.g. cancelling an already cancelled booking.
type StateError struct {
	Msg string
}

func (e StateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid state"
}

// UnavailableError wraps storage-layer failures. The raw driver error is
// kept for logs and never shown to clients.
type UnavailableError struct {
	Err error
}

func (e UnavailableError) Error() string { return "storage unavailable" }

func (e UnavailableError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target StateError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}
