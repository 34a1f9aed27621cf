// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCommand_CreatesValidManifest(t *testing.T) {
	t.Parallel()

	for _, template := range []string{"minimal", "default", "full"} {
		t.Run(template, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "pyproject.toml")
			stdout, _, err := execCommand(t, nil, "init", path, "--template", template, "--name", "flightdeck")
			if err != nil {
				t.Fatalf("init --template %s: unexpected error: %v", template, err)
			}
			if !strings.Contains(stdout, "Created") {
				t.Errorf("stdout missing creation notice:\n%s", stdout)
			}

			// The scaffold must pass validation as-is.
			if _, _, err := execCommand(t, nil, "validate", path); err != nil {
				t.Errorf("generated manifest fails validation: %v", err)
			}
		})
	}
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pyproject.toml")
	if err := os.WriteFile(path, []byte("# existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := execCommand(t, nil, "init", path, "--name", "flightdeck")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("init: error = %v, want 'already exists'", err)
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(data) != "# existing\n" {
		t.Error("existing file was modified without --force")
	}
}

func TestInitCommand_ForceOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pyproject.toml")
	if err := os.WriteFile(path, []byte("# existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execCommand(t, nil, "init", path, "--name", "flightdeck", "--force"); err != nil {
		t.Fatalf("init --force: unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `name = "flightdeck"`) {
		t.Errorf("file not overwritten:\n%s", data)
	}
}

func TestInitCommand_UnknownTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pyproject.toml")
	_, _, err := execCommand(t, nil, "init", path, "--template", "fancy", "--name", "flightdeck")
	if err == nil || !strings.Contains(err.Error(), "unknown template") {
		t.Fatalf("init: error = %v, want 'unknown template'", err)
	}
}

func TestInitCommand_InvalidName(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pyproject.toml")
	_, _, err := execCommand(t, nil, "init", path, "--name", "-bad-")
	if err == nil || !strings.Contains(err.Error(), "invalid package name") {
		t.Fatalf("init: error = %v, want 'invalid package name'", err)
	}
}

func TestPackageNameFromDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  string
		want string
	}{
		{"/home/dev/flightdeck", "flightdeck"},
		{"/home/dev/Flight Deck", "flight-deck"},
		{"/home/dev/my_tool", "my_tool"},
		{"/home/dev/---", "my-package"},
	}

	for _, tt := range tests {
		if got := packageNameFromDir(tt.dir); got != tt.want {
			t.Errorf("packageNameFromDir(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
