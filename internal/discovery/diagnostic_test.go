// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"testing"

	"wheelhouse-cli/internal/config"
)

func TestValidate_CleanManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "pyproject.toml", validManifest)

	result, err := New(config.DefaultConfig()).Validate(dir, "")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !result.Valid() {
		t.Errorf("Valid() = false, diagnostics: %+v", result.Diagnostics)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("got %d diagnostics, want none: %+v", len(result.Diagnostics), result.Diagnostics)
	}
}

func TestValidate_WarningsDoNotFail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// No requires-python constraint: a warning, not an error.
	writeManifest(t, dir, "pyproject.toml", `[project]
name = "flightdeck"
version = "1.0.0"
`)

	result, err := New(config.DefaultConfig()).Validate(dir, "")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !result.Valid() {
		t.Error("warnings should not make the result invalid")
	}

	var warnings int
	for _, d := range result.Diagnostics {
		if d.Severity != SeverityWarning {
			t.Errorf("unexpected %s diagnostic: %s", d.Severity, d.Message)
			continue
		}
		warnings++
	}
	if warnings == 0 {
		t.Error("expected at least one warning diagnostic")
	}
}

func TestValidate_ValidationErrorsExpandPerField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, "pyproject.toml", `[project]
name = "flightdeck"
version = "1.0.0"
requires-python = ">=3.10"
dependencies = ["httpx>>1.0", "-bad-name"]
`)

	result, err := New(config.DefaultConfig()).Validate(dir, "")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Valid() {
		t.Error("Valid() = true for a manifest with invalid requirements")
	}

	var codes []string
	for _, d := range result.Diagnostics {
		if d.Severity != SeverityError {
			continue
		}
		if d.Path != path {
			t.Errorf("diagnostic Path = %q, want %q", d.Path, path)
		}
		if d.Cause == nil {
			t.Error("error diagnostic should carry its cause")
		}
		codes = append(codes, d.Code)
	}
	if len(codes) < 2 {
		t.Errorf("got %d error diagnostics, want one per invalid requirement", len(codes))
	}
	for _, code := range codes {
		if code != "manifest_invalid_field" {
			t.Errorf("Code = %q, want manifest_invalid_field", code)
		}
	}
}

func TestValidate_MalformedTOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "pyproject.toml", "this is not toml [")

	result, err := New(config.DefaultConfig()).Validate(dir, "")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Valid() {
		t.Error("Valid() = true for malformed TOML")
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(result.Diagnostics))
	}
	if result.Diagnostics[0].Code != "manifest_parse_failed" {
		t.Errorf("Code = %q, want manifest_parse_failed", result.Diagnostics[0].Code)
	}
}

func TestValidate_NotFoundReturnsError(t *testing.T) {
	t.Parallel()

	result, err := New(config.DefaultConfig()).Validate(t.TempDir(), "")
	if err == nil {
		t.Fatal("Validate succeeded with no manifest, want error")
	}
	if !errors.Is(err, ErrManifestNotFound) {
		t.Errorf("error %v should wrap ErrManifestNotFound", err)
	}
	if result != nil {
		t.Error("result should be nil when discovery fails")
	}
}
