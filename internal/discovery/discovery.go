// SPDX-License-Identifier: EPL-2.0

// Package discovery handles finding and loading pyproject manifests.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wheelhouse-cli/internal/config"
	"wheelhouse-cli/pkg/pyproject"
)

// ErrManifestNotFound is the sentinel wrapped by ManifestNotFoundError.
var ErrManifestNotFound = errors.New("manifest not found")

// ManifestNotFoundError is returned when no manifest file could be located
// starting from the search directory.
type ManifestNotFoundError struct {
	// StartDir is the directory the upward search started from.
	StartDir string
	// FileName is the manifest file name that was searched for.
	FileName string
}

// Error implements the error interface.
func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf(
		"no %s found in %s or any parent directory\n\n"+
			"Create one with:\n"+
			"  wheelhouse init",
		e.FileName, e.StartDir)
}

// Unwrap returns the sentinel error for errors.Is checks.
func (e *ManifestNotFoundError) Unwrap() error { return ErrManifestNotFound }

// Source represents where a manifest was found
type Source int

const (
	// SourceExplicitPath indicates the file was given on the command line
	SourceExplicitPath Source = iota
	// SourceCurrentDir indicates the file was found in the starting directory
	SourceCurrentDir
	// SourceAncestorDir indicates the file was found in a parent directory
	SourceAncestorDir
)

// String returns a human-readable source name
func (s Source) String() string {
	switch s {
	case SourceExplicitPath:
		return "explicit path"
	case SourceCurrentDir:
		return "current directory"
	case SourceAncestorDir:
		return "parent directory"
	default:
		return "unknown"
	}
}

// DiscoveredManifest represents a found manifest with its source
type DiscoveredManifest struct {
	// Path is the absolute path to the manifest file
	Path string
	// Source indicates where the file was found
	Source Source
	// Manifest is the parsed content (may be nil if not yet parsed)
	Manifest *pyproject.Manifest
	// Error contains any error that occurred during parsing
	Error error
}

// Dir returns the directory containing the manifest. It is the project root
// for entry point resolution and version derivation.
func (d *DiscoveredManifest) Dir() string {
	return filepath.Dir(d.Path)
}

// Discovery handles finding manifests
type Discovery struct {
	cfg *config.Config
}

// New creates a new Discovery instance
func New(cfg *config.Config) *Discovery {
	return &Discovery{cfg: cfg}
}

// manifestName returns the configured manifest file name, falling back to the
// conventional default when no config is present.
func (d *Discovery) manifestName() string {
	if d.cfg != nil && d.cfg.ManifestName != "" {
		return string(d.cfg.ManifestName)
	}
	return pyproject.DefaultFileName
}

// Find locates the manifest by walking up from startDir until one is found
// or the filesystem root is reached. An empty startDir means the current
// working directory.
func (d *Discovery) Find(startDir string) (*DiscoveredManifest, error) {
	if startDir == "" {
		startDir = "."
	}

	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve search directory: %w", err)
	}

	name := d.manifestName()
	source := SourceCurrentDir

	dir := absDir
	for {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return &DiscoveredManifest{Path: path, Source: source}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, &ManifestNotFoundError{StartDir: absDir, FileName: name}
		}
		dir = parent
		source = SourceAncestorDir
	}
}

// FindAt returns the manifest at an explicitly given path without searching.
// The path may point at the manifest file itself or at its directory.
func (d *Discovery) FindAt(path string) (*DiscoveredManifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, &ManifestNotFoundError{StartDir: filepath.Dir(absPath), FileName: filepath.Base(absPath)}
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, d.manifestName())
		if info, err := os.Stat(absPath); err != nil || info.IsDir() {
			return nil, &ManifestNotFoundError{StartDir: path, FileName: d.manifestName()}
		}
	}

	return &DiscoveredManifest{Path: absPath, Source: SourceExplicitPath}, nil
}

// Load discovers and parses the manifest. When explicitPath is non-empty the
// manifest is loaded from there; otherwise the upward search from startDir is
// used. Parse errors are recorded on the returned DiscoveredManifest and also
// returned, so callers can render both the location and the failure.
func (d *Discovery) Load(startDir, explicitPath string) (*DiscoveredManifest, error) {
	var found *DiscoveredManifest
	var err error

	if explicitPath != "" {
		found, err = d.FindAt(explicitPath)
	} else {
		found, err = d.Find(startDir)
	}
	if err != nil {
		return nil, err
	}

	manifest, parseErr := pyproject.Parse(found.Path)
	if parseErr != nil {
		found.Error = parseErr
		return found, parseErr
	}

	found.Manifest = manifest
	return found, nil
}
