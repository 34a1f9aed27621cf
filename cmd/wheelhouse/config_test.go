// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"

	"wheelhouse-cli/internal/config"
)

func TestConfigDumpCommand(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.TagPrefix = "release-"
	cfg.DefaultExtras = []string{"dev"}

	stdout, _, err := execCommand(t, cfg, "config", "dump")
	if err != nil {
		t.Fatalf("config dump: unexpected error: %v", err)
	}

	for _, want := range []string{"manifest_name", `tag_prefix: "release-"`, `"dev"`, "color_scheme", "debounce_ms"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("dump output missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigShowCommand(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.DefaultExtras = []string{"cli", "dev"}

	stdout, _, err := execCommand(t, cfg, "config", "show")
	if err != nil {
		t.Fatalf("config show: unexpected error: %v", err)
	}

	for _, want := range []string{"Current Configuration", "pyproject.toml", "cli", "dev", "debounce_ms"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("show output missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigSetCommand(t *testing.T) {
	// Not parallel: overrides the package-level config directory.
	dir := t.TempDir()
	config.SetConfigDirOverride(dir)
	t.Cleanup(config.Reset)

	if _, _, err := execCommand(t, nil, "config", "set", "tag_prefix", "release-"); err != nil {
		t.Fatalf("config set: unexpected error: %v", err)
	}

	// The new value must round-trip through the saved file.
	stdout, _, err := execCommand(t, nil, "config", "path")
	if err != nil {
		t.Fatalf("config path: unexpected error: %v", err)
	}
	if !strings.Contains(stdout, dir) {
		t.Errorf("config path output missing override dir:\n%s", stdout)
	}
}

func TestConfigSetCommand_UnknownKey(t *testing.T) {
	t.Parallel()

	_, _, err := execCommand(t, nil, "config", "set", "bogus", "1")
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Fatalf("config set: error = %v, want 'unknown configuration key'", err)
	}
}

func TestConfigSetCommand_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad color scheme", "ui.color_scheme", "sepia"},
		{"bad debounce", "watch.debounce_ms", "-5"},
		{"bad manifest name", "manifest_name", "sub/pyproject.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execCommand(t, nil, "config", "set", tt.key, tt.value)
			if err == nil || !strings.Contains(err.Error(), "invalid") {
				t.Errorf("config set %s %s: error = %v, want invalid-value error", tt.key, tt.value, err)
			}
		})
	}
}
