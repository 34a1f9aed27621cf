// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidWatchConfig is the sentinel wrapped by InvalidWatchConfigError.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

// InvalidWatchConfigError aggregates every invalid field found while
// validating a Config, so callers see all problems at once.
type InvalidWatchConfigError struct {
	FieldErrors []error
}

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid watch config: %v", e.FieldErrors[0])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid watch config (%d field errors):", len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap returns the sentinel error for errors.Is checks.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate checks the Config's fields and returns an InvalidWatchConfigError
// listing every problem. The zero value is valid: empty patterns watch all
// non-ignored files and an empty BaseDir defaults to the working directory.
func (c *Config) Validate() error {
	var fieldErrs []error

	fieldErrs = append(fieldErrs, patternFieldErrors(c.Patterns, "patterns")...)
	fieldErrs = append(fieldErrs, patternFieldErrors(c.Ignore, "ignore")...)

	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		fieldErrs = append(fieldErrs, errors.New("base dir must not be whitespace-only"))
	}

	if len(fieldErrs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: fieldErrs}
	}
	return nil
}

// patternFieldErrors validates each glob in the slice, returning one error
// per empty or syntactically invalid pattern.
func patternFieldErrors(patterns []string, label string) []error {
	var errs []error
	for i, pat := range patterns {
		if pat == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: pattern must not be empty", label, i))
			continue
		}
		if _, err := doublestar.Match(pat, ""); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: invalid pattern %q: %w", label, i, pat, err))
		}
	}
	return errs
}
