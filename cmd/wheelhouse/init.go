// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"wheelhouse-cli/pkg/pyproject"
)

// newInitCommand creates the `wheelhouse init` command.
func newInitCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		force    bool
		template string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a new pyproject.toml in the current directory",
		Long: `Create a new pyproject.toml in the current directory.

The generated manifest passes validation as-is. The package name defaults
to the current directory name; override it with --name.

Templates:
  minimal   name, version, and interpreter constraint only
  default   adds dependencies, a dev group, and a console script
  full      adds extras, a VCS-derived version, and wheel packaging`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := pyproject.DefaultFileName
			if len(args) > 0 {
				filename = args[0]
			}
			return runInit(cmd, filename, template, name, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing manifest")
	cmd.Flags().StringVarP(&template, "template", "t", "default", "template to use (default, minimal, full)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "package name (defaults to the directory name)")

	return cmd
}

func runInit(cmd *cobra.Command, filename, template, name string, force bool) error {
	stdout := cmd.OutOrStdout()

	if _, err := os.Stat(filename); err == nil && !force {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	if name == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		name = packageNameFromDir(wd)
	}
	if ok, errs := pyproject.DistributionName(name).IsValid(); !ok {
		return fmt.Errorf("invalid package name %q: %w", name, errs[0])
	}

	content, err := generateManifest(template, name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Fprintf(stdout, "%s Created %s\n", successIcon, absPath)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(stdout, "  1. Declare your dependencies and extras in the manifest")
	fmt.Fprintln(stdout, "  2. Run 'wheelhouse validate' to check it")
	fmt.Fprintln(stdout, "  3. Run 'wheelhouse resolve' to see the dependency set")

	return nil
}

// nonNameChars matches characters a distribution name cannot carry.
var nonNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// packageNameFromDir derives a valid distribution name from a directory
// name, falling back to a placeholder when nothing usable remains.
func packageNameFromDir(dir string) string {
	name := strings.ToLower(filepath.Base(dir))
	name = nonNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-._")
	if name == "" {
		return "my-package"
	}
	return name
}

// generateManifest renders the manifest content for a template.
func generateManifest(template, name string) (string, error) {
	switch template {
	case "minimal":
		return fmt.Sprintf(`[project]
name = %q
version = "0.1.0"
requires-python = ">=3.10"
`, name), nil

	case "full":
		module := strings.ReplaceAll(pyproject.DistributionName(name).Canonical(), "-", "_")
		return fmt.Sprintf(`[build-system]
requires = ["hatchling"]
build-backend = "hatchling.build"

[project]
name = %q
dynamic = ["version"]
description = ""
requires-python = ">=3.10"
dependencies = []

[project.optional-dependencies]
cli = []
dev = []

[project.scripts]
%s = "%s.cli:main"

[dependency-groups]
dev = ["pytest>=8"]

[tool.wheelhouse.version]
source = "vcs"
tag-prefix = "v"

[tool.wheelhouse.wheel]
packages = ["src/%s"]
`, name, name, module, module), nil

	case "default":
		module := strings.ReplaceAll(pyproject.DistributionName(name).Canonical(), "-", "_")
		return fmt.Sprintf(`[project]
name = %q
version = "0.1.0"
requires-python = ">=3.10"
dependencies = []

[project.scripts]
%s = "%s.cli:main"

[dependency-groups]
dev = ["pytest>=8"]
`, name, name, module), nil

	default:
		return "", fmt.Errorf("unknown template %q (expected default, minimal, or full)", template)
	}
}
