// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"wheelhouse-cli/pkg/pyproject"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultWatchDebounceMs is the debounce window for manifest re-validation.
	DefaultWatchDebounceMs = 300
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidManifestFileName is returned when a ManifestFileName value is malformed.
	ErrInvalidManifestFileName = errors.New("invalid manifest file name")
	// ErrInvalidTagPrefix is returned when a TagPrefix value is whitespace-only.
	ErrInvalidTagPrefix = errors.New("invalid tag prefix")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// ManifestFileName is the file name searched for during manifest
	// discovery. It must be a bare file name, not a path.
	ManifestFileName string

	// InvalidManifestFileNameError is returned when a ManifestFileName value
	// is empty, whitespace-only, or contains path separators.
	// It wraps ErrInvalidManifestFileName for errors.Is() compatibility.
	InvalidManifestFileNameError struct {
		Value ManifestFileName
	}

	// TagPrefix is the prefix stripped from git tags before version parsing.
	// The zero value ("") is valid and means "use the built-in default".
	TagPrefix string

	// InvalidTagPrefixError is returned when a TagPrefix value is non-empty
	// but whitespace-only. It wraps ErrInvalidTagPrefix for errors.Is().
	InvalidTagPrefixError struct {
		Value TagPrefix
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidWatchConfigError is returned when a WatchConfig has invalid fields.
	// It wraps ErrInvalidWatchConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ManifestName is the manifest file name searched for during discovery.
		ManifestName ManifestFileName `json:"manifest_name" mapstructure:"manifest_name"`
		// DefaultExtras are resolved in addition to explicitly requested extras.
		DefaultExtras []string `json:"default_extras" mapstructure:"default_extras"`
		// TagPrefix overrides the git tag prefix used for version derivation.
		TagPrefix TagPrefix `json:"tag_prefix" mapstructure:"tag_prefix"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures manifest watching behavior
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// WatchConfig configures manifest watching.
	WatchConfig struct {
		// DebounceMs is the debounce window in milliseconds applied before
		// re-validating after a file change burst.
		DebounceMs int `json:"debounce_ms" mapstructure:"debounce_ms"`
	}
)

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the WatchConfig has valid fields.
func (c WatchConfig) IsValid() (bool, []error) {
	var errs []error
	if c.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms must be >= 0, got %d", c.DebounceMs))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWatchConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWatchConfigError.
func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to ManifestName.IsValid(), TagPrefix.IsValid(), each
// DefaultExtras entry's grammar check, UI.IsValid(), and Watch.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ManifestName.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.TagPrefix.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, extra := range c.DefaultExtras {
		if valid, fieldErrs := pyproject.ExtraName(extra).IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Watch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the ManifestFileName.
func (n ManifestFileName) String() string { return string(n) }

// IsValid returns whether the ManifestFileName is valid.
// A valid name must be non-empty, not whitespace-only, and a bare file
// name without path separators.
func (n ManifestFileName) IsValid() (bool, []error) {
	s := string(n)
	if strings.TrimSpace(s) == "" {
		return false, []error{&InvalidManifestFileNameError{Value: n}}
	}
	if strings.ContainsAny(s, `/\`) {
		return false, []error{&InvalidManifestFileNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidManifestFileNameError.
func (e *InvalidManifestFileNameError) Error() string {
	return fmt.Sprintf("invalid manifest file name %q: must be a non-empty bare file name", e.Value)
}

// Unwrap returns ErrInvalidManifestFileName for errors.Is() compatibility.
func (e *InvalidManifestFileNameError) Unwrap() error { return ErrInvalidManifestFileName }

// String returns the string representation of the TagPrefix.
func (p TagPrefix) String() string { return string(p) }

// IsValid returns whether the TagPrefix is valid.
// The zero value ("") is valid (means "use the built-in default").
// Non-zero values must not be whitespace-only.
func (p TagPrefix) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidTagPrefixError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTagPrefixError.
func (e *InvalidTagPrefixError) Error() string {
	return fmt.Sprintf("invalid tag prefix %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidTagPrefix for errors.Is() compatibility.
func (e *InvalidTagPrefixError) Unwrap() error { return ErrInvalidTagPrefix }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ManifestName:  ManifestFileName(pyproject.DefaultFileName),
		DefaultExtras: []string{},
		TagPrefix:     "", // Will use the built-in default if empty
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Watch: WatchConfig{
			DebounceMs: DefaultWatchDebounceMs,
		},
	}
}
