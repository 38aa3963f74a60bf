// Package apperr defines the error kinds surfaced to callers of the inventory core.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers. ConcurrencyConflict is the only kind
// a caller is expected to retry (after reloading).
type Kind string

const (
	KindNotFound               Kind = "NotFound"
	KindInvalidStateTransition Kind = "InvalidStateTransition"
	KindValidation             Kind = "ValidationError"
	KindConcurrencyConflict    Kind = "ConcurrencyConflict"
	KindPersistence            Kind = "PersistenceError"
	KindUnauthorized           Kind = "Unauthorized"
)

// Error carries a Kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrValidation             = &Error{Kind: KindValidation}
	ErrConcurrencyConflict    = &Error{Kind: KindConcurrencyConflict}
	ErrPersistence            = &Error{Kind: KindPersistence}
	ErrUnauthorized           = &Error{Kind: KindUnauthorized}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConcurrencyConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// InvalidTransition reports a status change that the state machine forbids.
func InvalidTransition(entity string, from, to fmt.Stringer) *Error {
	return &Error{
		Kind:    KindInvalidStateTransition,
		Message: fmt.Sprintf("%s cannot move from %s to %s", entity, from, to),
	}
}

// Persistence wraps a store failure. Errors that already carry a Kind pass through.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindPersistence, Message: "persistence failure", Err: err}
}

// KindOf resolves the Kind of err. Unclassified errors count as persistence failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindPersistence
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == KindPersistence {
			return "persistence failure"
		}
		return ae.Error()
	}
	return "persistence failure"
}

// HTTPStatus maps a Kind to a response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidStateTransition, KindConcurrencyConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
