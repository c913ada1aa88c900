package service

import (
	"errors"
	"fmt"

	"github.com/atinyakov/slugshare/internal/slug"
)

// Kind classifies service failures so each boundary can pick its own status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is returned by every SlugService operation that fails.
type Error struct {
	Kind Kind
	Slug string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindDependency for anything unclassified.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindDependency
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func slugFormatError(s string, err error) *Error {
	msg := "Invalid slug format. Only letters, numbers, hyphens and underscores are allowed."
	if errors.Is(err, slug.ErrTooLong) {
		msg = fmt.Sprintf("Slug is too long. At most %d characters are allowed.", slug.MaxLength)
	}
	return &Error{Kind: KindValidation, Slug: s, Msg: msg, Err: err}
}

func conflictError(s string, err error) *Error {
	return &Error{
		Kind: KindConflict,
		Slug: s,
		Msg:  fmt.Sprintf("The slug %q is already taken. Please choose a different name.", s),
		Err:  err,
	}
}

func notFoundError(err error) *Error {
	return &Error{Kind: KindNotFound, Msg: "Slug not found", Err: err}
}

func forbiddenError() *Error {
	return &Error{Kind: KindForbidden, Msg: "You can only modify your own slugs"}
}

func dependencyError(msg string, err error) *Error {
	return &Error{Kind: KindDependency, Msg: msg, Err: err}
}
