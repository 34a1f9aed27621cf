// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"wheelhouse-cli/internal/config"
)

// stubProvider returns a fixed configuration without touching the
// filesystem, keeping command tests hermetic.
type stubProvider struct {
	cfg *config.Config
}

func (p *stubProvider) Load(_ context.Context, _ config.LoadOptions) (*config.Config, error) {
	if p.cfg != nil {
		return p.cfg, nil
	}
	return config.DefaultConfig(), nil
}

// execCommand runs the root command with the given args and returns the
// captured stdout, stderr, and the execution error.
func execCommand(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: &stubProvider{cfg: cfg},
		Stdout: &stdout,
		Stderr: &stderr,
	})

	rootCmd, _ := newRootCommand(app)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeTestManifest writes content to a pyproject.toml inside dir and
// returns the manifest path.
func writeTestManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "pyproject.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const basicManifest = `[project]
name = "flightdeck"
version = "1.0.0"
requires-python = ">=3.10"
dependencies = [
    "httpx>=0.27",
    "pywin32>=306; sys_platform == 'win32'",
]

[project.optional-dependencies]
cli = ["typer>=0.12", "rich>=13"]
mcp = ["mcp>=1.2"]

[project.scripts]
flightdeck = "flightdeck.cli:main"

[dependency-groups]
dev = ["pytest>=8", "ruff>=0.4"]
`
