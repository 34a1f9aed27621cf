// SPDX-License-Identifier: MPL-2.0

package pep440

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, v *Version)
	}{
		{
			name:  "simple release",
			input: "1.2.3",
			check: func(t *testing.T, v *Version) {
				if len(v.Release) != 3 || v.Release[0] != 1 || v.Release[1] != 2 || v.Release[2] != 3 {
					t.Errorf("Release = %v, want [1 2 3]", v.Release)
				}
				if v.Pre != nil || v.Post != nil || v.Dev != nil || v.Local != "" {
					t.Errorf("unexpected non-release segments in %+v", v)
				}
			},
		},
		{
			name:  "v prefix is stripped",
			input: "v1.2.3",
			check: func(t *testing.T, v *Version) {
				if v.String() != "1.2.3" {
					t.Errorf("String() = %q, want %q", v.String(), "1.2.3")
				}
			},
		},
		{
			name:  "epoch",
			input: "2!1.0",
			check: func(t *testing.T, v *Version) {
				if v.Epoch != 2 {
					t.Errorf("Epoch = %d, want 2", v.Epoch)
				}
			},
		},
		{
			name:  "pre-release with normalization",
			input: "1.0alpha1",
			check: func(t *testing.T, v *Version) {
				if v.Pre == nil || v.Pre.Phase != "a" || v.Pre.Number != 1 {
					t.Errorf("Pre = %+v, want a1", v.Pre)
				}
			},
		},
		{
			name:  "rc pre-release",
			input: "2.0.0rc2",
			check: func(t *testing.T, v *Version) {
				if v.Pre == nil || v.Pre.Phase != "rc" || v.Pre.Number != 2 {
					t.Errorf("Pre = %+v, want rc2", v.Pre)
				}
			},
		},
		{
			name:  "post and dev segments",
			input: "1.0.post2.dev3",
			check: func(t *testing.T, v *Version) {
				if v.Post == nil || *v.Post != 2 {
					t.Errorf("Post = %v, want 2", v.Post)
				}
				if v.Dev == nil || *v.Dev != 3 {
					t.Errorf("Dev = %v, want 3", v.Dev)
				}
			},
		},
		{
			name:  "local segment lowered",
			input: "1.2.3+G1ABC.dirty",
			check: func(t *testing.T, v *Version) {
				if v.Local != "g1abc.dirty" {
					t.Errorf("Local = %q, want %q", v.Local, "g1abc.dirty")
				}
			},
		},
		{
			name:  "dev without number normalizes to dev0",
			input: "1.0.dev",
			check: func(t *testing.T, v *Version) {
				if v.Dev == nil || *v.Dev != 0 {
					t.Errorf("Dev = %v, want 0", v.Dev)
				}
			},
		},
		{name: "empty string", input: "", wantErr: true},
		{name: "not a version", input: "banana", wantErr: true},
		{name: "trailing garbage", input: "1.0.0 anything", wantErr: true},
		{name: "double dots", input: "1..0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.input)
				}
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("error %v does not wrap ErrInvalidVersion", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if tt.check != nil {
				tt.check(t, v)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	// Each entry must sort strictly after the previous one.
	ascending := []string{
		"0.9",
		"1.0.dev1",
		"1.0a1",
		"1.0a2",
		"1.0b1",
		"1.0rc1",
		"1.0",
		"1.0+local",
		"1.0.post1",
		"1.1",
		"2!0.1",
	}

	for i := 1; i < len(ascending); i++ {
		prev, err := Parse(ascending[i-1])
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", ascending[i-1], err)
		}
		cur, err := Parse(ascending[i])
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", ascending[i], err)
		}
		if prev.Compare(cur) >= 0 {
			t.Errorf("expected %q < %q", ascending[i-1], ascending[i])
		}
		if cur.Compare(prev) <= 0 {
			t.Errorf("expected %q > %q", ascending[i], ascending[i-1])
		}
	}
}

func TestCompareEqualForms(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"1.0", "1.0.0"},
		{"1.0", "v1.0"},
		{"1.0alpha1", "1.0a1"},
		{"1.0.post", "1.0.post0"},
	}

	for _, pair := range pairs {
		a, err := Parse(pair[0])
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", pair[0], err)
		}
		b, err := Parse(pair[1])
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", pair[1], err)
		}
		if a.Compare(b) != 0 {
			t.Errorf("expected %q == %q", pair[0], pair[1])
		}
	}
}

func TestSort(t *testing.T) {
	t.Parallel()

	got := Sort([]string{"1.0", "2.0rc1", "0.5", "2.0", "junk", "1.5.dev1"})
	want := []string{"2.0", "2.0rc1", "1.5.dev1", "1.0", "0.5"}

	if len(got) != len(want) {
		t.Fatalf("Sort returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sort[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"1.2.3", "1.2.3"},
		{"1.0Alpha2", "1.0a2"},
		{"1.0-post1", "1.0.post1"},
		{"2!1.0.dev5+g12ab", "2!1.0.dev5+g12ab"},
	}

	for _, tt := range tests {
		v, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.input, err)
		}
		if got := v.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsPrerelease(t *testing.T) {
	t.Parallel()

	if v, _ := Parse("1.0rc1"); !v.IsPrerelease() {
		t.Error("1.0rc1 should be a pre-release")
	}
	if v, _ := Parse("1.0.dev1"); !v.IsPrerelease() {
		t.Error("1.0.dev1 should be a pre-release")
	}
	if v, _ := Parse("1.0.post1"); v.IsPrerelease() {
		t.Error("1.0.post1 should not be a pre-release")
	}
}
