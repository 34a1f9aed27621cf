// SPDX-License-Identifier: MPL-2.0

package pyproject

import (
	"fmt"
	"sort"

	"wheelhouse-cli/pkg/pep440"
)

// dynamicFields lists the [project] fields a manifest may declare as
// dynamic, mapped to a probe reporting whether the field is also present
// literally (which the two may not be at the same time).
var dynamicFields = map[string]func(*Project) bool{
	"version":               func(p *Project) bool { return p.Version != "" },
	"dependencies":          func(p *Project) bool { return p.Dependencies != nil },
	"optional-dependencies": func(p *Project) bool { return p.OptionalDependencies != nil },
	"classifiers":           func(p *Project) bool { return p.Classifiers != nil },
	"description":           func(p *Project) bool { return p.Description != "" },
	"readme":                func(p *Project) bool { return p.Readme != "" },
}

// Validate checks structural rules the CUE schema cannot express and
// returns every issue found. Callers should treat the result as fatal when
// HasErrors reports true.
func (m *Manifest) Validate() ValidationErrors {
	var errs ValidationErrors

	if m.Project == nil {
		errs = append(errs, ValidationError{
			Field:    "project",
			Message:  "missing [project] table",
			Severity: SeverityError,
		})
		return errs
	}

	errs = append(errs, m.validateIdentity()...)
	errs = append(errs, m.validateDependencies()...)
	errs = append(errs, m.validateExtras()...)
	errs = append(errs, m.validateDependencyGroups()...)
	errs = append(errs, m.validateScripts()...)
	errs = append(errs, m.validateBuildSystem()...)

	return errs
}

// validateIdentity checks the name, version, dynamic declarations, and the
// requires-python specifier.
func (m *Manifest) validateIdentity() ValidationErrors {
	var errs ValidationErrors
	p := m.Project

	if ok, nameErrs := p.Name.IsValid(); !ok {
		errs = append(errs, ValidationError{
			Field:    "project.name",
			Message:  nameErrs[0].Error(),
			Severity: SeverityError,
		})
	}

	seenDynamic := map[string]bool{}
	for _, field := range p.Dynamic {
		if seenDynamic[field] {
			errs = append(errs, ValidationError{
				Field:    "project.dynamic",
				Message:  fmt.Sprintf("field %q listed twice", field),
				Severity: SeverityError,
			})
			continue
		}
		seenDynamic[field] = true

		probe, known := dynamicFields[field]
		if !known {
			errs = append(errs, ValidationError{
				Field:    "project.dynamic",
				Message:  fmt.Sprintf("field %q cannot be dynamic", field),
				Severity: SeverityError,
			})
			continue
		}
		if probe(p) {
			errs = append(errs, ValidationError{
				Field:    "project." + field,
				Message:  "field is declared dynamic but also set literally",
				Severity: SeverityError,
			})
		}
	}

	switch {
	case p.Version != "":
		if _, err := pep440.Parse(p.Version); err != nil {
			errs = append(errs, ValidationError{
				Field:    "project.version",
				Message:  err.Error(),
				Severity: SeverityError,
			})
		}
	case !seenDynamic["version"]:
		errs = append(errs, ValidationError{
			Field:    "project.version",
			Message:  "version must be set literally or declared dynamic",
			Severity: SeverityError,
		})
	}

	if m.versionSource() == "vcs" && p.Version != "" {
		errs = append(errs, ValidationError{
			Field:    "tool.wheelhouse.version",
			Message:  "source is \"vcs\" but project.version is set literally",
			Severity: SeverityError,
		})
	}

	if p.RequiresPython != "" {
		if _, err := pep440.ParseSpecifierSet(p.RequiresPython); err != nil {
			errs = append(errs, ValidationError{
				Field:    "project.requires-python",
				Message:  err.Error(),
				Severity: SeverityError,
			})
		}
	} else {
		errs = append(errs, ValidationError{
			Field:    "project.requires-python",
			Message:  "no interpreter constraint declared",
			Severity: SeverityWarning,
		})
	}

	return errs
}

// versionSource returns the configured version source, defaulting to
// "literal" when the tool block is absent.
func (m *Manifest) versionSource() string {
	if m.Tool != nil && m.Tool.Wheelhouse != nil && m.Tool.Wheelhouse.Version != nil {
		return m.Tool.Wheelhouse.Version.Source
	}
	return "literal"
}

// validateDependencies checks the base requirement strings.
func (m *Manifest) validateDependencies() ValidationErrors {
	return validateRequirementGroup("project.dependencies", m.Project.Dependencies)
}

// validateExtras checks each optional dependency group: name grammar plus
// the per-group requirement rules.
func (m *Manifest) validateExtras() ValidationErrors {
	var errs ValidationErrors

	for _, extra := range sortedKeys(m.Project.OptionalDependencies) {
		field := "project.optional-dependencies." + extra

		if ok, nameErrs := ExtraName(extra).IsValid(); !ok {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  nameErrs[0].Error(),
				Severity: SeverityError,
			})
		}

		errs = append(errs, validateRequirementGroup(field, m.Project.OptionalDependencies[extra])...)
	}

	return errs
}

// validateDependencyGroups checks the [dependency-groups] table.
func (m *Manifest) validateDependencyGroups() ValidationErrors {
	var errs ValidationErrors

	for _, group := range sortedKeys(m.DependencyGroups) {
		field := "dependency-groups." + group

		if ok, nameErrs := ExtraName(group).IsValid(); !ok {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  nameErrs[0].Error(),
				Severity: SeverityError,
			})
		}

		errs = append(errs, validateRequirementGroup(field, m.DependencyGroups[group])...)
	}

	return errs
}

// validateRequirementGroup parses every requirement in a group and checks
// for duplicate distribution names with visibly conflicting constraints.
// Duplicates whose constraints can still be satisfied together are allowed;
// they collapse during resolution.
func validateRequirementGroup(field string, raws []string) ValidationErrors {
	var errs ValidationErrors

	type seenEntry struct {
		index int
		req   *Requirement
	}
	seen := map[string][]seenEntry{}

	for i, raw := range raws {
		req, err := ParseRequirement(raw)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("%s[%d]", field, i),
				Message:  err.Error(),
				Severity: SeverityError,
			})
			continue
		}

		canonical := req.Name.Canonical()
		for _, prev := range seen[canonical] {
			// Same name under different markers targets different
			// environments and is not a conflict.
			if prev.req.MarkerText != req.MarkerText {
				continue
			}
			if prev.req.Specifiers.Conflicts(req.Specifiers) {
				errs = append(errs, ValidationError{
					Field: fmt.Sprintf("%s[%d]", field, i),
					Message: fmt.Sprintf("%q conflicts with %q at index %d",
						req.Raw, prev.req.Raw, prev.index),
					Severity: SeverityError,
				})
			}
		}
		seen[canonical] = append(seen[canonical], seenEntry{index: i, req: req})
	}

	return errs
}

// validateScripts checks the [project.scripts] table: launcher-safe names
// and well-formed callable references.
func (m *Manifest) validateScripts() ValidationErrors {
	var errs ValidationErrors

	for _, name := range sortedKeys(m.Project.Scripts) {
		field := "project.scripts." + name

		if ok, nameErrs := ScriptName(name).IsValid(); !ok {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  nameErrs[0].Error(),
				Severity: SeverityError,
			})
		}

		ref := EntryPointRef(m.Project.Scripts[name])
		if ok, refErrs := ref.IsValid(); !ok {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  refErrs[0].Error(),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateBuildSystem checks the [build-system] table's requirement strings.
func (m *Manifest) validateBuildSystem() ValidationErrors {
	if m.BuildSystem == nil {
		return nil
	}
	return validateRequirementGroup("build-system.requires", m.BuildSystem.Requires)
}

// sortedKeys returns the map's keys in sorted order so validation output
// is deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
