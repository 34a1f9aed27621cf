// SPDX-License-Identifier: MPL-2.0

package pyproject

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"wheelhouse-cli/pkg/cueutil"
)

//go:embed pyproject_schema.cue
var pyprojectSchema []byte

// DefaultFileName is the conventional manifest file name.
const DefaultFileName = "pyproject.toml"

// Parse reads and parses a manifest from the given path.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses manifest content from bytes. The TOML document is
// decoded into a generic map, unified with the embedded CUE schema, decoded
// into the typed Manifest, and then structurally validated. All
// error-severity validation issues are returned together as
// ValidationErrors.
func ParseBytes(data []byte, path string) (*Manifest, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	var document map[string]any
	if err := toml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result, err := cueutil.UnifyMapAndDecode[Manifest](
		pyprojectSchema,
		document,
		"#Pyproject",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	manifest := result.Value
	manifest.FilePath = path

	if errs := manifest.Validate(); errs.HasErrors() {
		return nil, errs
	}

	return manifest, nil
}
