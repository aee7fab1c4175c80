// Package apperr defines the error kinds the storefront reports across its
// request boundary.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindInternal   Kind = "INTERNAL"
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindPolicy     Kind = "POLICY"
	KindUpstream   Kind = "UPSTREAM"
	KindAuth       Kind = "UNAUTHORIZED"
)

// Error is a classified, user-presentable error.
type Error struct {
	Kind    Kind
	Message string
	// Fields names the offending input fields of a validation error.
	Fields []string
	// Detail carries an opaque payload, e.g. the gateway's error body.
	Detail string
	// Ref points at a related entity, e.g. the review to edit instead of duplicating.
	Ref string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports missing or malformed input.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// MissingFields reports required fields that were absent or blank.
func MissingFields(fields ...string) *Error {
	return Validation("missing required fields: "+strings.Join(fields, ", "), fields...)
}

// NotFound reports an entity that is absent or not owned by the caller.
// Both cases produce the same message.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Conflict reports an operation rejected by the current state of an entity.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Policy reports an operation the caller is not eligible to perform.
func Policy(message string) *Error {
	return &Error{Kind: KindPolicy, Message: message}
}

// Upstream reports a failed call to an external service. detail is passed
// through to the caller untouched.
func Upstream(message, detail string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Detail: detail, Err: err}
}

// Unauthorized reports missing or rejected credentials.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind. A nil error has no kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
