// SPDX-License-Identifier: MPL-2.0

package pyproject

import (
	"fmt"
	"sort"
	"strings"

	"wheelhouse-cli/pkg/markers"
)

// UnknownExtraError is returned when resolution is asked for an extra the
// manifest does not declare.
type UnknownExtraError struct {
	// Extra is the requested extra.
	Extra ExtraName
	// Known lists the extras the manifest declares, sorted.
	Known []ExtraName
}

// Error implements the error interface.
func (e *UnknownExtraError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown extra %q (manifest declares no extras)", e.Extra)
	}
	parts := make([]string, len(e.Known))
	for i, name := range e.Known {
		parts[i] = string(name)
	}
	return fmt.Sprintf("unknown extra %q (known: %s)", e.Extra, strings.Join(parts, ", "))
}

// ExtraNames returns the manifest's declared extras, sorted.
func (m *Manifest) ExtraNames() []ExtraName {
	if m.Project == nil {
		return nil
	}
	names := make([]ExtraName, 0, len(m.Project.OptionalDependencies))
	for name := range m.Project.OptionalDependencies {
		names = append(names, ExtraName(name))
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// lookupExtra finds a declared extra by canonical name and returns its
// requirement strings.
func (m *Manifest) lookupExtra(extra ExtraName) ([]string, bool) {
	want := extra.Canonical()
	for name, raws := range m.Project.OptionalDependencies {
		if ExtraName(name).Canonical() == want {
			return raws, true
		}
	}
	return nil, false
}

// Resolve returns the dependency set for the requested extras: the base
// dependencies followed by each chosen extra's requirements, in declaration
// order, deduplicated. Requesting no extras yields exactly the base set.
// The manifest is never mutated.
func (m *Manifest) Resolve(extras ...ExtraName) ([]Requirement, error) {
	if m.Project == nil {
		return nil, fmt.Errorf("manifest has no [project] table")
	}

	groups := [][]string{m.Project.Dependencies}
	for _, extra := range extras {
		raws, ok := m.lookupExtra(extra)
		if !ok {
			return nil, &UnknownExtraError{Extra: extra, Known: m.ExtraNames()}
		}
		groups = append(groups, raws)
	}

	var resolved []Requirement
	seen := map[string]bool{}
	for _, group := range groups {
		for _, raw := range group {
			req, err := ParseRequirement(raw)
			if err != nil {
				return nil, err
			}
			key := req.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			resolved = append(resolved, *req)
		}
	}

	return resolved, nil
}

// ResolveForEnvironment resolves the dependency set for the requested
// extras and then drops requirements whose environment marker evaluates
// false. Each requirement's marker is evaluated with the "extra" variable
// bound to each requested extra in turn (and to "" for the base set), so
// self-referential markers like `extra == "cli"` behave as an installer
// would treat them.
func (m *Manifest) ResolveForEnvironment(env markers.Environment, extras ...ExtraName) ([]Requirement, error) {
	resolved, err := m.Resolve(extras...)
	if err != nil {
		return nil, err
	}

	environments := []markers.Environment{env.WithExtra("")}
	for _, extra := range extras {
		environments = append(environments, env.WithExtra(string(extra)))
	}

	var applicable []Requirement
	for _, req := range resolved {
		keep := false
		for _, candidate := range environments {
			ok, evalErr := req.AppliesTo(candidate)
			if evalErr != nil {
				return nil, fmt.Errorf("requirement %q: %w", req.Raw, evalErr)
			}
			if ok {
				keep = true
				break
			}
		}
		if keep {
			applicable = append(applicable, req)
		}
	}

	return applicable, nil
}
