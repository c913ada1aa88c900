// Package slug defines the alphabet and length rules shared by every
// component that accepts a slug: the availability client, the server-side
// checker, the reservation committer and the public resolver.
package slug

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxLength bounds the slug column.
const MaxLength = 128

// Alphabet is the human readable description of the allowed characters.
const Alphabet = "letters, numbers, dashes, and underscores"

var pattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var (
	// ErrEmpty is returned for an empty slug.
	ErrEmpty = errors.New("slug is required")
	// ErrFormat is returned when a slug contains characters outside the alphabet.
	ErrFormat = fmt.Errorf("invalid slug format, use only %s", Alphabet)
	// ErrTooLong is returned when a slug exceeds MaxLength.
	ErrTooLong = fmt.Errorf("slug must not be longer than %d characters", MaxLength)
)

// IsValidFormat reports whether s is non-empty and built only from
// [A-Za-z0-9_-]. Length is not checked here.
func IsValidFormat(s string) bool {
	return pattern.MatchString(s)
}

// Validate checks presence, alphabet and length.
func Validate(s string) error {
	switch {
	case s == "":
		return ErrEmpty
	case !IsValidFormat(s):
		return ErrFormat
	case len(s) > MaxLength:
		return ErrTooLong
	}
	return nil
}
