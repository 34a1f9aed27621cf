// SPDX-License-Identifier: MPL-2.0

package pyproject

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrCallableNotFound is the sentinel error wrapped by CallableNotFoundError.
var ErrCallableNotFound = errors.New("callable module not found")

// EntryPoint is a registered console command: a launcher name bound to a
// callable reference in the packaged code.
type EntryPoint struct {
	// Name is the command the launcher will be installed as.
	Name ScriptName
	// Ref locates the callable, in "package.module:function" form.
	Ref EntryPointRef
}

// CallableNotFoundError is returned when an entry point references a
// module that does not exist under any of the project's package roots.
// This mirrors the install-time failure a launcher generator would hit.
type CallableNotFoundError struct {
	// EntryPoint is the failing registration.
	EntryPoint EntryPoint
	// SearchedRoots lists the directories that were checked.
	SearchedRoots []string
}

// Error implements the error interface.
func (e *CallableNotFoundError) Error() string {
	return fmt.Sprintf("entry point %q: module %q not found under %s",
		e.EntryPoint.Name, e.EntryPoint.Ref.Module(), strings.Join(e.SearchedRoots, ", "))
}

// Unwrap returns ErrCallableNotFound for errors.Is detection.
func (e *CallableNotFoundError) Unwrap() error { return ErrCallableNotFound }

// EntryPoints returns the manifest's registered console commands, sorted
// by name.
func (m *Manifest) EntryPoints() []EntryPoint {
	if m.Project == nil {
		return nil
	}

	points := make([]EntryPoint, 0, len(m.Project.Scripts))
	for name, ref := range m.Project.Scripts {
		points = append(points, EntryPoint{
			Name: ScriptName(name),
			Ref:  EntryPointRef(ref),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points
}

// PackageRoots returns the directories entry-point modules are resolved
// against: the configured wheel packages when present, otherwise the
// manifest's directory and its "src" subdirectory.
func (m *Manifest) PackageRoots() []string {
	base := filepath.Dir(m.FilePath)

	if m.Tool != nil && m.Tool.Wheelhouse != nil && m.Tool.Wheelhouse.Wheel != nil &&
		len(m.Tool.Wheelhouse.Wheel.Packages) > 0 {
		roots := make([]string, 0, len(m.Tool.Wheelhouse.Wheel.Packages))
		for _, pkg := range m.Tool.Wheelhouse.Wheel.Packages {
			// Package dirs point at the package itself; modules resolve
			// relative to the directory containing it.
			roots = append(roots, filepath.Dir(filepath.Join(base, pkg)))
		}
		return roots
	}

	return []string{base, filepath.Join(base, "src")}
}

// CheckEntryPoints verifies that every registered entry point's module
// exists under one of the package roots, as a launcher generator would
// require at install time. It returns one error per unresolvable entry
// point.
func (m *Manifest) CheckEntryPoints() []error {
	roots := m.PackageRoots()

	var errs []error
	for _, ep := range m.EntryPoints() {
		if !moduleExists(ep.Ref.Module(), roots) {
			errs = append(errs, &CallableNotFoundError{EntryPoint: ep, SearchedRoots: roots})
		}
	}
	return errs
}

// moduleExists reports whether the dotted module path resolves to a
// module file or package directory under any root.
func moduleExists(module string, roots []string) bool {
	rel := filepath.Join(strings.Split(module, ".")...)

	for _, root := range roots {
		if fileExists(filepath.Join(root, rel+".py")) {
			return true
		}
		if fileExists(filepath.Join(root, rel, "__init__.py")) {
			return true
		}
	}
	return false
}

// fileExists checks if a path exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
