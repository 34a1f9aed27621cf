// SPDX-License-Identifier: MPL-2.0

package pep440

import (
	"errors"
	"fmt"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
// ErrInvalidSpecifier is the sentinel error wrapped by InvalidSpecifierError.
var (
	ErrInvalidVersion   = errors.New("invalid version")
	ErrInvalidSpecifier = errors.New("invalid version specifier")
)

type (
	// VersionString represents a raw version string (e.g., "1.2.3", "2.0.0b1").
	// Validation delegates to Parse.
	VersionString string

	// InvalidVersionError is returned when a version string does not match
	// the expected PEP 440 format.
	InvalidVersionError struct {
		Value string
	}

	// SpecifierString represents a raw version specifier set string
	// (e.g., ">=1.0,<2.0", "~=1.4.2"). Validation delegates to ParseSpecifierSet.
	SpecifierString string

	// InvalidSpecifierError is returned when a specifier string does not
	// match the expected format.
	InvalidSpecifierError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q", e.Value)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// IsValid returns whether the VersionString is a valid PEP 440 version,
// and a list of validation errors if it is not.
func (s VersionString) IsValid() (bool, []error) {
	if _, err := Parse(string(s)); err != nil {
		return false, []error{&InvalidVersionError{Value: string(s)}}
	}
	return true, nil
}

// String returns the string representation of the VersionString.
func (s VersionString) String() string { return string(s) }

// Error implements the error interface.
func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("invalid version specifier %q", e.Value)
}

// Unwrap returns ErrInvalidSpecifier so callers can use errors.Is for programmatic detection.
func (e *InvalidSpecifierError) Unwrap() error { return ErrInvalidSpecifier }

// IsValid returns whether the SpecifierString is a valid specifier set,
// and a list of validation errors if it is not.
func (s SpecifierString) IsValid() (bool, []error) {
	if _, err := ParseSpecifierSet(string(s)); err != nil {
		return false, []error{&InvalidSpecifierError{Value: string(s)}}
	}
	return true, nil
}

// String returns the string representation of the SpecifierString.
func (s SpecifierString) String() string { return string(s) }
