// SPDX-License-Identifier: MPL-2.0

package pep440

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Version represents a parsed PEP 440-style version.
type Version struct {
	// Epoch is the version epoch (the "N!" prefix). Almost always 0.
	Epoch int
	// Release is the dotted release segment (e.g., [1, 2, 3] for "1.2.3").
	// Always has at least one element.
	Release []int
	// Pre is the pre-release segment, nil for final releases.
	Pre *PreRelease
	// Post is the post-release number, nil when absent.
	Post *int
	// Dev is the development-release number, nil when absent.
	Dev *int
	// Local is the local version segment (after "+"), empty when absent.
	Local string
	// Original is the string the version was parsed from.
	Original string
}

// PreRelease represents a pre-release segment (a/b/rc plus a number).
type PreRelease struct {
	// Phase is the normalized phase: "a", "b", or "rc".
	Phase string
	// Number is the pre-release number.
	Number int
}

// versionRegex matches PEP 440 version strings, including the spelling
// variants the normalization rules fold together (alpha/beta/c/pre/preview,
// separator characters, "v" prefix).
var versionRegex = regexp.MustCompile(`(?i)^v?` +
	`(?:(\d+)!)?` + // 1: epoch
	`(\d+(?:\.\d+)*)` + // 2: release segment
	`(?:[._-]?(a|b|c|rc|alpha|beta|pre|preview)[._-]?(\d+)?)?` + // 3, 4: pre-release
	`(?:[._-]?(post|rev|r)[._-]?(\d+)?|-(\d+))?` + // 5, 6, 7: post-release
	`(?:[._-]?(dev)[._-]?(\d+)?)?` + // 8, 9: dev-release
	`(?:\+([a-z0-9]+(?:[._-][a-z0-9]+)*))?` + // 10: local segment
	`$`)

// Parse parses a version string into a Version.
func Parse(s string) (*Version, error) {
	trimmed := strings.TrimSpace(s)
	matches := versionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return nil, &InvalidVersionError{Value: s}
	}

	v := &Version{Original: trimmed}

	if matches[1] != "" {
		epoch, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, &InvalidVersionError{Value: s}
		}
		v.Epoch = epoch
	}

	for _, part := range strings.Split(matches[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, &InvalidVersionError{Value: s}
		}
		v.Release = append(v.Release, n)
	}

	if matches[3] != "" {
		num := 0
		if matches[4] != "" {
			n, err := strconv.Atoi(matches[4])
			if err != nil {
				return nil, &InvalidVersionError{Value: s}
			}
			num = n
		}
		v.Pre = &PreRelease{Phase: normalizePrePhase(matches[3]), Number: num}
	}

	if matches[5] != "" || matches[7] != "" {
		// "1.0.post" with no number normalizes to post0
		n := 0
		raw := matches[6]
		if raw == "" {
			raw = matches[7]
		}
		if raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &InvalidVersionError{Value: s}
			}
			n = parsed
		}
		v.Post = &n
	}

	if matches[8] != "" {
		n := 0
		if matches[9] != "" {
			parsed, err := strconv.Atoi(matches[9])
			if err != nil {
				return nil, &InvalidVersionError{Value: s}
			}
			n = parsed
		}
		v.Dev = &n
	}

	if matches[10] != "" {
		v.Local = strings.ToLower(matches[10])
	}

	return v, nil
}

// normalizePrePhase folds the PEP 440 pre-release spelling variants into
// their canonical forms: alpha→a, beta→b, c/pre/preview→rc.
func normalizePrePhase(phase string) string {
	switch strings.ToLower(phase) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default:
		return "rc"
	}
}

// String returns the normalized form of the version.
func (v *Version) String() string {
	var sb strings.Builder

	if v.Epoch != 0 {
		fmt.Fprintf(&sb, "%d!", v.Epoch)
	}

	parts := make([]string, len(v.Release))
	for i, n := range v.Release {
		parts[i] = strconv.Itoa(n)
	}
	sb.WriteString(strings.Join(parts, "."))

	if v.Pre != nil {
		fmt.Fprintf(&sb, "%s%d", v.Pre.Phase, v.Pre.Number)
	}
	if v.Post != nil {
		fmt.Fprintf(&sb, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&sb, ".dev%d", *v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&sb, "+%s", v.Local)
	}

	return sb.String()
}

// IsPrerelease reports whether the version is a pre-release or dev release.
func (v *Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// releaseAt returns the release digit at index i, zero-padding past the end
// so "1.2" and "1.2.0" compare equal.
func (v *Version) releaseAt(i int) int {
	if i < len(v.Release) {
		return v.Release[i]
	}
	return 0
}

// Compare compares two versions per PEP 440 ordering.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v *Version) Compare(other *Version) int {
	if v.Epoch != other.Epoch {
		return cmpInt(v.Epoch, other.Epoch)
	}

	n := len(v.Release)
	if len(other.Release) > n {
		n = len(other.Release)
	}
	for i := 0; i < n; i++ {
		if c := cmpInt(v.releaseAt(i), other.releaseAt(i)); c != 0 {
			return c
		}
	}

	if c := cmpInt(v.preRank(), other.preRank()); c != 0 {
		return c
	}
	if v.Pre != nil && other.Pre != nil {
		if c := cmpInt(v.Pre.Number, other.Pre.Number); c != 0 {
			return c
		}
	}

	if c := cmpOptional(v.Post, other.Post, false); c != 0 {
		return c
	}
	if c := cmpOptional(v.Dev, other.Dev, true); c != 0 {
		return c
	}

	return compareLocal(v.Local, other.Local)
}

// preRank maps the pre/dev/final stage to an ordering rank:
// dev-only releases sort before pre-releases, which sort before finals.
func (v *Version) preRank() int {
	if v.Pre != nil {
		switch v.Pre.Phase {
		case "a":
			return 1
		case "b":
			return 2
		default:
			return 3
		}
	}
	if v.Dev != nil && v.Post == nil {
		return 0
	}
	return 4
}

// cmpOptional compares two optional segment numbers. When absentWins is
// true, the version without the segment sorts higher (dev semantics);
// otherwise it sorts lower (post semantics).
func cmpOptional(a, b *int, absentWins bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if absentWins {
			return 1
		}
		return -1
	case b == nil:
		if absentWins {
			return -1
		}
		return 1
	default:
		return cmpInt(*a, *b)
	}
}

// compareLocal compares local version segments: absent sorts before present,
// and segments compare piecewise with numeric parts before alphanumeric ones.
func compareLocal(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}

	aParts := strings.FieldsFunc(a, isLocalSeparator)
	bParts := strings.FieldsFunc(b, isLocalSeparator)
	for i := 0; i < len(aParts) && i < len(bParts); i++ {
		an, aErr := strconv.Atoi(aParts[i])
		bn, bErr := strconv.Atoi(bParts[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := cmpInt(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return 1 // numeric segments sort after alphanumeric ones
		case bErr == nil:
			return -1
		default:
			if aParts[i] != bParts[i] {
				if aParts[i] < bParts[i] {
					return -1
				}
				return 1
			}
		}
	}
	return cmpInt(len(aParts), len(bParts))
}

func isLocalSeparator(r rune) bool {
	return r == '.' || r == '-' || r == '_'
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsValid checks if a string is a valid PEP 440 version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Sort sorts a slice of version strings in descending order (newest first).
// Invalid versions are dropped.
func Sort(versions []string) []string {
	var parsed []*Version
	for _, vs := range versions {
		v, err := Parse(vs)
		if err != nil {
			continue
		}
		parsed = append(parsed, v)
	}

	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].Compare(parsed[j]) > 0
	})

	result := make([]string, len(parsed))
	for i, v := range parsed {
		result[i] = v.Original
	}

	return result
}
