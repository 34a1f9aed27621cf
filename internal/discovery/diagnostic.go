// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"

	"wheelhouse-cli/pkg/pyproject"
)

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured discovery diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "manifest_invalid_field").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}

	// ValidationResult bundles a discovered manifest with the diagnostics
	// produced while validating it. Diagnostics include manifest validation
	// warnings and errors that should be rendered by the CLI layer.
	ValidationResult struct {
		Manifest    *DiscoveredManifest
		Diagnostics []Diagnostic
	}
)

// Valid reports whether the manifest loaded and has no error-level diagnostics.
func (r *ValidationResult) Valid() bool {
	if r.Manifest == nil || r.Manifest.Manifest == nil {
		return false
	}
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Validate discovers, parses, and validates the manifest, converting every
// validation issue into a diagnostic. Discovery failures (no manifest found,
// unreadable path) are still returned as errors; everything after a successful
// discovery is reported through the result so the CLI can render parse errors
// alongside the file location.
func (d *Discovery) Validate(startDir, explicitPath string) (*ValidationResult, error) {
	found, err := d.Load(startDir, explicitPath)
	if found == nil {
		return nil, err
	}

	result := &ValidationResult{Manifest: found}

	if found.Error != nil {
		// Validation failures carry one issue per field; surface each as its
		// own diagnostic instead of a single concatenated message.
		var issues pyproject.ValidationErrors
		if errors.As(found.Error, &issues) {
			for _, issue := range issues {
				result.Diagnostics = append(result.Diagnostics, validationDiagnostic(found.Path, issue))
			}
			return result, nil
		}

		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Severity: SeverityError,
			Code:     "manifest_parse_failed",
			Message:  found.Error.Error(),
			Path:     found.Path,
			Cause:    found.Error,
		})
		return result, nil
	}

	for _, issue := range found.Manifest.Validate() {
		result.Diagnostics = append(result.Diagnostics, validationDiagnostic(found.Path, issue))
	}

	return result, nil
}

// validationDiagnostic maps a manifest validation issue to a diagnostic.
func validationDiagnostic(path string, issue pyproject.ValidationError) Diagnostic {
	severity := SeverityError
	if issue.IsWarning() {
		severity = SeverityWarning
	}
	return Diagnostic{
		Severity: severity,
		Code:     "manifest_invalid_field",
		Message:  issue.Error(),
		Path:     path,
		Cause:    issue,
	}
}
