// SPDX-License-Identifier: MPL-2.0

package pyproject

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for the typed string fields. Each is wrapped by the
// corresponding Invalid*Error so callers can use errors.Is.
var (
	ErrInvalidDistributionName = errors.New("invalid distribution name")
	ErrInvalidExtraName        = errors.New("invalid extra name")
	ErrInvalidScriptName       = errors.New("invalid script name")
	ErrInvalidEntryPointRef    = errors.New("invalid entry point reference")
)

type (
	// Manifest is a parsed pyproject.toml document.
	Manifest struct {
		// BuildSystem is the [build-system] table (optional).
		BuildSystem *BuildSystem `json:"build-system,omitempty"`
		// Project is the [project] table (required).
		Project *Project `json:"project,omitempty"`
		// DependencyGroups is the [dependency-groups] table mapping group
		// names (e.g., "dev") to requirement strings.
		DependencyGroups map[string][]string `json:"dependency-groups,omitempty"`
		// Tool is the [tool] table. Only the [tool.wheelhouse] block is
		// interpreted; other tools' blocks are carried through untyped.
		Tool *Tool `json:"tool,omitempty"`

		// FilePath is the path the manifest was loaded from (not part of
		// the document).
		FilePath string `json:"-"`
	}

	// BuildSystem is the [build-system] table.
	BuildSystem struct {
		// Requires lists the build backend's own requirements.
		Requires []string `json:"requires"`
		// BuildBackend is the backend object reference (e.g., "hatchling.build").
		BuildBackend string `json:"build-backend,omitempty"`
		// BackendPath lists in-tree backend directories.
		BackendPath []string `json:"backend-path,omitempty"`
	}

	// Project is the [project] table: package identity and dependencies.
	Project struct {
		// Name is the distribution name (required).
		Name DistributionName `json:"name"`
		// Version is the literal version. Mutually exclusive with listing
		// "version" in Dynamic.
		Version string `json:"version,omitempty"`
		// Dynamic lists fields whose values are computed at build time by
		// a tool hook instead of being written literally.
		Dynamic []string `json:"dynamic,omitempty"`
		// Description is a one-line summary.
		Description string `json:"description,omitempty"`
		// Readme is the path to the long-description file.
		Readme string `json:"readme,omitempty"`
		// RequiresPython constrains supported interpreter versions
		// (a version specifier set, e.g., ">=3.9").
		RequiresPython string `json:"requires-python,omitempty"`
		// License is an SPDX expression or license-file path.
		License string `json:"license,omitempty"`
		// Authors and Maintainers identify the package's people.
		Authors     []Contact `json:"authors,omitempty"`
		Maintainers []Contact `json:"maintainers,omitempty"`
		// Keywords and Classifiers are index metadata.
		Keywords    []string `json:"keywords,omitempty"`
		Classifiers []string `json:"classifiers,omitempty"`
		// URLs maps link labels to project URLs.
		URLs map[string]string `json:"urls,omitempty"`
		// Dependencies are the base requirement strings.
		Dependencies []string `json:"dependencies,omitempty"`
		// OptionalDependencies maps extra names to requirement strings.
		// Keys are unique by construction (TOML tables reject duplicates).
		OptionalDependencies map[string][]string `json:"optional-dependencies,omitempty"`
		// Scripts maps console command names to callable references.
		Scripts map[string]string `json:"scripts,omitempty"`
	}

	// Contact is an author or maintainer entry.
	Contact struct {
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}

	// Tool is the [tool] table.
	Tool struct {
		// Wheelhouse is this tool's own configuration block.
		Wheelhouse *ToolWheelhouse `json:"wheelhouse,omitempty"`
	}

	// ToolWheelhouse is the [tool.wheelhouse] block.
	ToolWheelhouse struct {
		// Version configures how the dynamic version is derived.
		Version *ToolVersion `json:"version,omitempty"`
		// Wheel configures the wheel packaging target.
		Wheel *ToolWheel `json:"wheel,omitempty"`
	}

	// ToolVersion is the [tool.wheelhouse.version] block.
	ToolVersion struct {
		// Source selects the version source: "vcs" derives the version
		// from repository state, "literal" uses project.version.
		Source string `json:"source"`
		// TagPrefix is stripped from tag names before parsing ("v" by default).
		TagPrefix string `json:"tag-prefix,omitempty"`
	}

	// ToolWheel is the [tool.wheelhouse.wheel] block.
	ToolWheel struct {
		// Packages lists the package directories shipped in the wheel
		// (e.g., ["src/mypkg"]).
		Packages []string `json:"packages,omitempty"`
	}

	// DistributionName is a package distribution name. Names compare
	// case-insensitively with runs of "-", "_", and "." folded to "-".
	DistributionName string

	// InvalidDistributionNameError is returned when a DistributionName
	// does not match the distribution-name grammar.
	InvalidDistributionNameError struct {
		Value DistributionName
	}

	// ExtraName is the name of an optional dependency group.
	ExtraName string

	// InvalidExtraNameError is returned when an ExtraName does not match
	// the extra-name grammar.
	InvalidExtraNameError struct {
		Value ExtraName
	}

	// ScriptName is a console command name registered under [project.scripts].
	ScriptName string

	// InvalidScriptNameError is returned when a ScriptName is empty or
	// contains characters a launcher name cannot carry.
	InvalidScriptNameError struct {
		Value ScriptName
	}

	// EntryPointRef is a callable reference of the form
	// "package.module:function".
	EntryPointRef string

	// InvalidEntryPointRefError is returned when an EntryPointRef does not
	// match the reference grammar.
	InvalidEntryPointRefError struct {
		Value EntryPointRef
	}
)

// nameRegex matches distribution and extra names: alphanumeric start and
// end, with ".", "-", "_" allowed in between.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// entryPointRefRegex matches "pkg.sub.module:callable" references. Each
// dotted segment and the callable must be a Python identifier.
var entryPointRefRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*:[A-Za-z_][A-Za-z0-9_]*$`)

// Error implements the error interface.
func (e *InvalidDistributionNameError) Error() string {
	return fmt.Sprintf("invalid distribution name %q", e.Value)
}

// Unwrap returns ErrInvalidDistributionName for errors.Is detection.
func (e *InvalidDistributionNameError) Unwrap() error { return ErrInvalidDistributionName }

// IsValid returns whether the DistributionName matches the name grammar,
// and a list of validation errors if it does not.
func (n DistributionName) IsValid() (bool, []error) {
	if !nameRegex.MatchString(string(n)) {
		return false, []error{&InvalidDistributionNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the DistributionName.
func (n DistributionName) String() string { return string(n) }

// Canonical returns the canonical comparison form of the name: lowercase
// with runs of ".", "-", "_" collapsed to a single "-".
func (n DistributionName) Canonical() string {
	return canonicalizeName(string(n))
}

// canonicalSeparators collapses runs of name separators.
var canonicalSeparators = regexp.MustCompile(`[-_.]+`)

func canonicalizeName(name string) string {
	return strings.ToLower(canonicalSeparators.ReplaceAllString(name, "-"))
}

// Error implements the error interface.
func (e *InvalidExtraNameError) Error() string {
	return fmt.Sprintf("invalid extra name %q", e.Value)
}

// Unwrap returns ErrInvalidExtraName for errors.Is detection.
func (e *InvalidExtraNameError) Unwrap() error { return ErrInvalidExtraName }

// IsValid returns whether the ExtraName matches the name grammar,
// and a list of validation errors if it does not.
func (n ExtraName) IsValid() (bool, []error) {
	if !nameRegex.MatchString(string(n)) {
		return false, []error{&InvalidExtraNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the ExtraName.
func (n ExtraName) String() string { return string(n) }

// Canonical returns the canonical comparison form of the extra name.
func (n ExtraName) Canonical() string { return canonicalizeName(string(n)) }

// Error implements the error interface.
func (e *InvalidScriptNameError) Error() string {
	return fmt.Sprintf("invalid script name %q", e.Value)
}

// Unwrap returns ErrInvalidScriptName for errors.Is detection.
func (e *InvalidScriptNameError) Unwrap() error { return ErrInvalidScriptName }

// IsValid returns whether the ScriptName is a usable launcher name,
// and a list of validation errors if it is not.
func (n ScriptName) IsValid() (bool, []error) {
	s := string(n)
	if strings.TrimSpace(s) == "" || s != strings.TrimSpace(s) {
		return false, []error{&InvalidScriptNameError{Value: n}}
	}
	if strings.ContainsAny(s, " \t=/\\") {
		return false, []error{&InvalidScriptNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the ScriptName.
func (n ScriptName) String() string { return string(n) }

// Error implements the error interface.
func (e *InvalidEntryPointRefError) Error() string {
	return fmt.Sprintf("invalid entry point reference %q (want \"package.module:function\")", e.Value)
}

// Unwrap returns ErrInvalidEntryPointRef for errors.Is detection.
func (e *InvalidEntryPointRefError) Unwrap() error { return ErrInvalidEntryPointRef }

// IsValid returns whether the EntryPointRef matches the
// "package.module:function" grammar, and a list of validation errors if
// it does not.
func (r EntryPointRef) IsValid() (bool, []error) {
	if !entryPointRefRegex.MatchString(string(r)) {
		return false, []error{&InvalidEntryPointRefError{Value: r}}
	}
	return true, nil
}

// String returns the string representation of the EntryPointRef.
func (r EntryPointRef) String() string { return string(r) }

// Module returns the dotted import path before the colon.
func (r EntryPointRef) Module() string {
	if idx := strings.IndexByte(string(r), ':'); idx >= 0 {
		return string(r)[:idx]
	}
	return string(r)
}

// Callable returns the function name after the colon.
func (r EntryPointRef) Callable() string {
	if idx := strings.IndexByte(string(r), ':'); idx >= 0 {
		return string(r)[idx+1:]
	}
	return ""
}
