// SPDX-License-Identifier: MPL-2.0

package pep440

import (
	"regexp"
	"strconv"
	"strings"
)

// Specifier represents a single version clause.
type Specifier struct {
	// Op is the comparison operator (==, !=, >=, <=, >, <, ~=, ===).
	Op string
	// Version is the version to compare against. Nil only for wildcard
	// clauses and === clauses, which keep the raw text instead.
	Version *Version
	// Wildcard is true for "==X.Y.*" / "!=X.Y.*" prefix clauses.
	Wildcard bool
	// Raw is the original clause text.
	Raw string
}

// SpecifierSet is a comma-separated conjunction of version clauses.
// A version matches the set when it matches every clause.
type SpecifierSet struct {
	// Specifiers are the individual clauses, in declaration order.
	Specifiers []Specifier
	// Raw is the original specifier set text.
	Raw string
}

// specifierRegex matches a single version clause: an operator followed by a
// version, optionally ending in ".*" for wildcard comparisons.
var specifierRegex = regexp.MustCompile(`^(===|==|!=|~=|>=|<=|>|<)\s*(\S+)$`)

// ParseSpecifierSet parses a comma-separated specifier set string.
// An empty string yields an empty set, which matches every version.
func ParseSpecifierSet(s string) (*SpecifierSet, error) {
	set := &SpecifierSet{Raw: strings.TrimSpace(s)}
	if set.Raw == "" {
		return set, nil
	}

	for _, clause := range strings.Split(set.Raw, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			return nil, &InvalidSpecifierError{Value: s}
		}
		spec, err := parseSpecifier(clause)
		if err != nil {
			return nil, err
		}
		set.Specifiers = append(set.Specifiers, *spec)
	}

	return set, nil
}

// parseSpecifier parses a single clause like ">=1.0" or "==1.2.*".
func parseSpecifier(clause string) (*Specifier, error) {
	matches := specifierRegex.FindStringSubmatch(clause)
	if matches == nil {
		return nil, &InvalidSpecifierError{Value: clause}
	}

	op := matches[1]
	rawVersion := matches[2]
	// Raw drops any whitespace between operator and version so String
	// output is normalized.
	spec := &Specifier{Op: op, Raw: op + rawVersion}

	// Arbitrary equality compares raw strings; no version parse needed.
	if op == "===" {
		return spec, nil
	}

	if strings.HasSuffix(rawVersion, ".*") {
		if op != "==" && op != "!=" {
			return nil, &InvalidSpecifierError{Value: clause}
		}
		spec.Wildcard = true
		rawVersion = strings.TrimSuffix(rawVersion, ".*")
	}

	v, err := Parse(rawVersion)
	if err != nil {
		return nil, &InvalidSpecifierError{Value: clause}
	}

	// Compatible release requires at least two release digits (~=1 is invalid).
	if op == "~=" && (len(v.Release) < 2 || spec.Wildcard) {
		return nil, &InvalidSpecifierError{Value: clause}
	}

	spec.Version = v
	return spec, nil
}

// Match reports whether the version satisfies the clause.
func (s *Specifier) Match(v *Version) bool {
	switch s.Op {
	case "===":
		want := strings.TrimSpace(strings.TrimPrefix(s.Raw, "==="))
		return v.Original == want

	case "==":
		if s.Wildcard {
			return prefixMatch(v, s.Version)
		}
		return equalIgnoringLocal(v, s.Version)

	case "!=":
		if s.Wildcard {
			return !prefixMatch(v, s.Version)
		}
		return !equalIgnoringLocal(v, s.Version)

	case "~=":
		// ~=X.Y.Z means >=X.Y.Z and ==X.Y.*
		if v.Compare(s.Version) < 0 {
			return false
		}
		prefix := &Version{
			Epoch:   s.Version.Epoch,
			Release: s.Version.Release[:len(s.Version.Release)-1],
		}
		return prefixMatch(v, prefix)

	case ">":
		return v.Compare(s.Version) > 0

	case ">=":
		return v.Compare(s.Version) >= 0

	case "<":
		return v.Compare(s.Version) < 0

	case "<=":
		return v.Compare(s.Version) <= 0

	default:
		return false
	}
}

// equalIgnoringLocal compares a candidate against a clause version for
// equality. Per PEP 440, the candidate's local segment is ignored when the
// clause carries none, so "==1.0" matches "1.0+ubuntu1".
func equalIgnoringLocal(v, want *Version) bool {
	if want.Local == "" && v.Local != "" {
		public := *v
		public.Local = ""
		return public.Compare(want) == 0
	}
	return v.Compare(want) == 0
}

// prefixMatch reports whether v's epoch and leading release digits equal
// those of prefix. Used for wildcard and compatible-release comparisons.
func prefixMatch(v, prefix *Version) bool {
	if v.Epoch != prefix.Epoch {
		return false
	}
	for i, want := range prefix.Release {
		if v.releaseAt(i) != want {
			return false
		}
	}
	return true
}

// Match reports whether the version satisfies every clause in the set.
func (ss *SpecifierSet) Match(v *Version) bool {
	for i := range ss.Specifiers {
		if !ss.Specifiers[i].Match(v) {
			return false
		}
	}
	return true
}

// MatchString parses s and matches it against the set.
func (ss *SpecifierSet) MatchString(s string) (bool, error) {
	v, err := Parse(s)
	if err != nil {
		return false, err
	}
	return ss.Match(v), nil
}

// String returns the normalized specifier set text.
func (ss *SpecifierSet) String() string {
	if len(ss.Specifiers) == 0 {
		return ""
	}
	parts := make([]string, len(ss.Specifiers))
	for i, spec := range ss.Specifiers {
		parts[i] = spec.Raw
	}
	return strings.Join(parts, ",")
}

// Pin returns the exact version the set pins to, if any. A set pins a
// version when it contains a non-wildcard == clause or a === clause whose
// text parses as a version.
func (ss *SpecifierSet) Pin() *Version {
	for i := range ss.Specifiers {
		spec := &ss.Specifiers[i]
		switch spec.Op {
		case "==":
			if !spec.Wildcard {
				return spec.Version
			}
		case "===":
			raw := strings.TrimSpace(strings.TrimPrefix(spec.Raw, "==="))
			if v, err := Parse(raw); err == nil {
				return v
			}
		}
	}
	return nil
}

// Conflicts reports whether two specifier sets visibly contradict each
// other: one of them pins an exact version that the other rejects, or the
// ranged clauses of both sets combine into an empty interval (as in
// ">=2.0" against "<1.0"). Wildcard and exclusion clauses contribute no
// interval bounds, so contradictions expressed only through them go to an
// external dependency resolver.
func (ss *SpecifierSet) Conflicts(other *SpecifierSet) bool {
	if pin := ss.Pin(); pin != nil && !other.Match(pin) {
		return true
	}
	if pin := other.Pin(); pin != nil && !ss.Match(pin) {
		return true
	}

	var b interval
	ss.narrow(&b)
	other.narrow(&b)
	return b.empty()
}

// interval is the version range a pair of specifier sets confines
// candidates to. Nil ends are unbounded.
type interval struct {
	lower, upper         *Version
	lowerExcl, upperExcl bool
}

// raiseLower tightens the lower bound when v is higher, or equal but
// exclusive where the current bound is not.
func (b *interval) raiseLower(v *Version, excl bool) {
	if b.lower == nil {
		b.lower, b.lowerExcl = v, excl
		return
	}
	switch c := v.Compare(b.lower); {
	case c > 0:
		b.lower, b.lowerExcl = v, excl
	case c == 0 && excl:
		b.lowerExcl = true
	}
}

// dropUpper tightens the upper bound, mirroring raiseLower.
func (b *interval) dropUpper(v *Version, excl bool) {
	if b.upper == nil {
		b.upper, b.upperExcl = v, excl
		return
	}
	switch c := v.Compare(b.upper); {
	case c < 0:
		b.upper, b.upperExcl = v, excl
	case c == 0 && excl:
		b.upperExcl = true
	}
}

// empty reports whether no version can lie inside the interval.
func (b *interval) empty() bool {
	if b.lower == nil || b.upper == nil {
		return false
	}
	c := b.lower.Compare(b.upper)
	if c > 0 {
		return true
	}
	return c == 0 && (b.lowerExcl || b.upperExcl)
}

// narrow folds the set's ordered, pinned, and compatible-release clauses
// into the interval.
func (ss *SpecifierSet) narrow(b *interval) {
	for i := range ss.Specifiers {
		spec := &ss.Specifiers[i]
		switch spec.Op {
		case ">":
			b.raiseLower(spec.Version, true)
		case ">=":
			b.raiseLower(spec.Version, false)
		case "<":
			b.dropUpper(spec.Version, true)
		case "<=":
			b.dropUpper(spec.Version, false)
		case "==":
			if !spec.Wildcard {
				b.raiseLower(spec.Version, false)
				b.dropUpper(spec.Version, false)
			}
		case "~=":
			b.raiseLower(spec.Version, false)
			b.dropUpper(compatibleUpper(spec.Version), true)
		}
	}
}

// compatibleUpper returns the exclusive upper bound implied by a
// compatible-release clause: ~=2.2.3 keeps candidates below 2.3.
func compatibleUpper(v *Version) *Version {
	release := append([]int(nil), v.Release[:len(v.Release)-1]...)
	release[len(release)-1]++
	return &Version{Epoch: v.Epoch, Release: release}
}

// Filter returns the versions from the given list that match the set,
// preserving input order. Invalid versions are skipped.
func (ss *SpecifierSet) Filter(versions []string) []string {
	var matching []string
	for _, vs := range versions {
		v, err := Parse(vs)
		if err != nil {
			continue
		}
		if ss.Match(v) {
			matching = append(matching, vs)
		}
	}
	return matching
}

// Best returns the highest version from the given list that matches the
// set, or an error when none do.
func (ss *SpecifierSet) Best(versions []string) (string, error) {
	matching := ss.Filter(versions)
	if len(matching) == 0 {
		return "", &NoMatchError{Specifiers: ss.Raw, Available: versions}
	}
	return Sort(matching)[0], nil
}

// NoMatchError is returned by Best when no available version satisfies
// the specifier set.
type NoMatchError struct {
	Specifiers string
	Available  []string
}

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	return "no version matches " + strconv.Quote(e.Specifiers) +
		" (available: " + strings.Join(e.Available, ", ") + ")"
}
