// SPDX-License-Identifier: MPL-2.0

package pep440

import (
	"errors"
	"testing"
)

func TestParseSpecifierSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantCount int
	}{
		{name: "empty set", input: "", wantCount: 0},
		{name: "single clause", input: ">=1.0", wantCount: 1},
		{name: "multiple clauses", input: ">=1.0, <2.0, !=1.5", wantCount: 3},
		{name: "wildcard equality", input: "==1.2.*", wantCount: 1},
		{name: "compatible release", input: "~=1.4.2", wantCount: 1},
		{name: "arbitrary equality", input: "===1.0-custom", wantCount: 1},
		{name: "missing operator", input: "1.0", wantErr: true},
		{name: "dangling comma", input: ">=1.0,", wantErr: true},
		{name: "wildcard with ordering op", input: ">=1.*", wantErr: true},
		{name: "compatible release single digit", input: "~=1", wantErr: true},
		{name: "garbage version", input: ">=banana", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := ParseSpecifierSet(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSpecifierSet(%q) succeeded, want error", tt.input)
				}
				if !errors.Is(err, ErrInvalidSpecifier) {
					t.Errorf("error %v does not wrap ErrInvalidSpecifier", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.input, err)
			}
			if len(set.Specifiers) != tt.wantCount {
				t.Errorf("got %d clauses, want %d", len(set.Specifiers), tt.wantCount)
			}
		})
	}
}

func TestSpecifierSetMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		set     string
		version string
		want    bool
	}{
		{name: "range accepts inside", set: ">=1.0,<2.0", version: "1.5", want: true},
		{name: "range rejects above", set: ">=1.0,<2.0", version: "2.0", want: false},
		{name: "range rejects below", set: ">=1.0,<2.0", version: "0.9", want: false},
		{name: "exclusion clause", set: ">=1.0,!=1.5", version: "1.5", want: false},
		{name: "exact pin accepts equivalent form", set: "==1.0", version: "1.0.0", want: true},
		{name: "wildcard accepts prefix", set: "==1.2.*", version: "1.2.9", want: true},
		{name: "wildcard rejects other minor", set: "==1.2.*", version: "1.3.0", want: false},
		{name: "negated wildcard", set: "!=1.2.*", version: "1.2.9", want: false},
		{name: "compatible release accepts patch bump", set: "~=1.4.2", version: "1.4.9", want: true},
		{name: "compatible release rejects minor bump", set: "~=1.4.2", version: "1.5.0", want: false},
		{name: "compatible release two digits", set: "~=2.2", version: "2.9", want: true},
		{name: "compatible release two digits rejects major", set: "~=2.2", version: "3.0", want: false},
		{name: "arbitrary equality exact text", set: "===1.0+custom", version: "1.0+custom", want: true},
		{name: "pin ignores candidate local segment", set: "==1.0", version: "1.0+ubuntu1", want: true},
		{name: "pin with local requires matching local", set: "==1.0+ubuntu1", version: "1.0+ubuntu2", want: false},
		{name: "exclusion ignores candidate local segment", set: "!=1.0", version: "1.0+ubuntu1", want: false},
		{name: "empty set matches everything", set: "", version: "42.0", want: true},
		{name: "pre-release ordering", set: ">=1.0", version: "1.0rc1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := ParseSpecifierSet(tt.set)
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.set, err)
			}
			got, err := set.MatchString(tt.version)
			if err != nil {
				t.Fatalf("MatchString(%q) failed: %v", tt.version, err)
			}
			if got != tt.want {
				t.Errorf("%q matches %q = %v, want %v", tt.version, tt.set, got, tt.want)
			}
		})
	}
}

func TestSpecifierSetConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "two different pins", a: "==1.0", b: "==2.0", want: true},
		{name: "same pin", a: "==1.0", b: "==1.0.0", want: false},
		{name: "pin outside range", a: "==1.0", b: ">=2.0", want: true},
		{name: "pin inside range", a: "==1.5", b: ">=1.0,<2.0", want: false},
		{name: "disjoint ranges", a: ">=2.0", b: "<1.0", want: true},
		{name: "disjoint inclusive ranges", a: ">=1.0", b: "<=0.5", want: true},
		{name: "overlapping ranges", a: ">=1.0", b: "<2.0", want: false},
		{name: "ranges touching at inclusive bound", a: ">=1.0", b: "<=1.0", want: false},
		{name: "ranges touching at exclusive bound", a: ">=1.0", b: "<1.0", want: true},
		{name: "compatible release below range", a: "~=1.2", b: ">=2.0", want: true},
		{name: "compatible release inside range", a: "~=1.2", b: ">=1.0,<2.0", want: false},
		{name: "disjoint compatible releases", a: "~=1.2", b: "~=3.0", want: true},
		{name: "contradiction within one set", a: ">=2.0,<1.0", b: "", want: true},
		{name: "exclusions carry no bounds", a: "!=1.0", b: "!=2.0", want: false},
		{name: "wildcards carry no bounds", a: "==1.*", b: "==2.*", want: false},
		{name: "empty sets", a: "", b: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := ParseSpecifierSet(tt.a)
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.a, err)
			}
			b, err := ParseSpecifierSet(tt.b)
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.b, err)
			}
			if got := a.Conflicts(b); got != tt.want {
				t.Errorf("Conflicts(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := b.Conflicts(a); got != tt.want {
				t.Errorf("Conflicts(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpecifierSetBest(t *testing.T) {
	t.Parallel()

	available := []string{"0.9", "1.0", "1.4", "1.9", "2.0", "bogus"}

	set, err := ParseSpecifierSet(">=1.0,<2.0")
	if err != nil {
		t.Fatalf("ParseSpecifierSet failed: %v", err)
	}

	best, err := set.Best(available)
	if err != nil {
		t.Fatalf("Best failed: %v", err)
	}
	if best != "1.9" {
		t.Errorf("Best = %q, want %q", best, "1.9")
	}

	impossible, err := ParseSpecifierSet(">=9.0")
	if err != nil {
		t.Fatalf("ParseSpecifierSet failed: %v", err)
	}
	if _, err := impossible.Best(available); err == nil {
		t.Error("expected error for unsatisfiable specifier set")
	}
}
