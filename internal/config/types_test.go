// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme  ColorScheme
		want    bool
		wantErr bool
	}{
		{ColorSchemeAuto, true, false},
		{ColorSchemeDark, true, false},
		{ColorSchemeLight, true, false},
		{"", false, true},
		{"invalid", false, true},
		{"AUTO", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.scheme.IsValid()
			if isValid != tt.want {
				t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.scheme, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("ColorScheme(%q).IsValid() returned no errors, want error", tt.scheme)
				}
				if !errors.Is(errs[0], ErrInvalidColorScheme) {
					t.Errorf("error should wrap ErrInvalidColorScheme, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("ColorScheme(%q).IsValid() returned unexpected errors: %v", tt.scheme, errs)
			}
		})
	}
}

func TestManifestFileName_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    ManifestFileName
		want    bool
		wantErr bool
	}{
		{"pyproject.toml", true, false},
		{"custom.toml", true, false},
		{"", false, true},
		{"   ", false, true},
		{"sub/pyproject.toml", false, true},
		{`sub\pyproject.toml`, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.name.IsValid()
			if isValid != tt.want {
				t.Errorf("ManifestFileName(%q).IsValid() = %v, want %v", tt.name, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("ManifestFileName(%q).IsValid() returned no errors, want error", tt.name)
				}
				if !errors.Is(errs[0], ErrInvalidManifestFileName) {
					t.Errorf("error should wrap ErrInvalidManifestFileName, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("ManifestFileName(%q).IsValid() returned unexpected errors: %v", tt.name, errs)
			}
		})
	}
}

func TestTagPrefix_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix  TagPrefix
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"v", true, false},
		{"release-", true, false},
		{"   ", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.prefix), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.prefix.IsValid()
			if isValid != tt.want {
				t.Errorf("TagPrefix(%q).IsValid() = %v, want %v", tt.prefix, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("TagPrefix(%q).IsValid() returned no errors, want error", tt.prefix)
				}
				if !errors.Is(errs[0], ErrInvalidTagPrefix) {
					t.Errorf("error should wrap ErrInvalidTagPrefix, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("TagPrefix(%q).IsValid() returned unexpected errors: %v", tt.prefix, errs)
			}
		})
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig()
	if ok, errs := valid.IsValid(); !ok {
		t.Errorf("DefaultConfig().IsValid() = false: %v", errs)
	}

	invalid := Config{
		ManifestName:  "",
		DefaultExtras: []string{"-bad-"},
		TagPrefix:     "  ",
		UI:            UIConfig{ColorScheme: "sepia"},
		Watch:         WatchConfig{DebounceMs: -5},
	}
	ok, errs := invalid.IsValid()
	if ok {
		t.Fatal("invalid config reported valid")
	}
	if len(errs) != 1 {
		t.Fatalf("expected a single aggregate error, got %d", len(errs))
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Errorf("aggregate error should wrap ErrInvalidConfig, got: %v", errs[0])
	}

	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error is %T, want *InvalidConfigError", errs[0])
	}
	// Bad name, bad prefix, bad extra, bad UI, bad watch.
	if len(cfgErr.FieldErrors) != 5 {
		t.Errorf("got %d field errors, want 5: %v", len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}
}
