// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"wheelhouse-cli/pkg/pyproject"
)

// newInspectCommand creates the `wheelhouse inspect` command.
func newInspectCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [path]",
		Short: "Show a summary of a manifest",
		Long: `Show a styled summary of the manifest: package identity, dependency
counts, declared extras, dependency groups, and console scripts.

Examples:
  wheelhouse inspect                   Inspect the nearest manifest
  wheelhouse inspect ./pyproject.toml  Inspect a specific file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicitPath := ""
			if len(args) > 0 {
				explicitPath = args[0]
			}
			return runInspect(cmd, app, rootFlags, explicitPath)
		},
	}
}

func runInspect(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, explicitPath string) error {
	stdout := cmd.OutOrStdout()

	cfg := app.loadConfig(cmd.Context(), rootFlags)
	d := app.newDiscovery(cfg)

	found, err := d.Load("", explicitPath)
	if err != nil {
		return renderDiscoveryFailure(cmd, err, rootFlags.verbose)
	}

	manifest := found.Manifest
	project := manifest.Project

	fmt.Fprintln(stdout, reportTitleStyle.Render("Manifest"))
	fmt.Fprintf(stdout, "%s Path: %s (%s)\n", infoIcon, reportPathStyle.Render(found.Path), found.Source)
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "%s: %s\n", CmdStyle.Render("name"), SuccessStyle.Render(project.Name.String()))
	fmt.Fprintf(stdout, "%s: %s\n", CmdStyle.Render("version"), SuccessStyle.Render(describeVersion(manifest)))
	if project.RequiresPython != "" {
		fmt.Fprintf(stdout, "%s: %s\n", CmdStyle.Render("requires-python"), SuccessStyle.Render(project.RequiresPython))
	}
	if project.Description != "" {
		fmt.Fprintf(stdout, "%s: %s\n", CmdStyle.Render("description"), project.Description)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", CmdStyle.Render("dependencies"))
	if len(project.Dependencies) == 0 {
		fmt.Fprintf(stdout, "  %s\n", SubtitleStyle.Render("(none declared)"))
	} else {
		for _, raw := range project.Dependencies {
			fmt.Fprintf(stdout, "  - %s\n", raw)
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", CmdStyle.Render("extras"))
	extraNames := manifest.ExtraNames()
	if len(extraNames) == 0 {
		fmt.Fprintf(stdout, "  %s\n", SubtitleStyle.Render("(none declared)"))
	} else {
		for _, name := range extraNames {
			count := len(project.OptionalDependencies[string(name)])
			fmt.Fprintf(stdout, "  - %s (%d requirement(s))\n", SuccessStyle.Render(string(name)), count)
		}
	}

	if len(manifest.DependencyGroups) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintf(stdout, "%s:\n", CmdStyle.Render("dependency-groups"))
		groups := make([]string, 0, len(manifest.DependencyGroups))
		for group := range manifest.DependencyGroups {
			groups = append(groups, group)
		}
		sort.Strings(groups)
		for _, group := range groups {
			fmt.Fprintf(stdout, "  - %s (%d requirement(s))\n",
				SuccessStyle.Render(group), len(manifest.DependencyGroups[group]))
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", CmdStyle.Render("scripts"))
	entryPoints := manifest.EntryPoints()
	if len(entryPoints) == 0 {
		fmt.Fprintf(stdout, "  %s\n", SubtitleStyle.Render("(none declared)"))
	} else {
		for _, ep := range entryPoints {
			fmt.Fprintf(stdout, "  - %s = %s\n", SuccessStyle.Render(string(ep.Name)), ep.Ref)
		}
	}

	return nil
}

// describeVersion renders the manifest's version: the literal value, or the
// configured dynamic source when the version is derived at build time.
func describeVersion(manifest *pyproject.Manifest) string {
	if manifest.Project.Version != "" {
		return manifest.Project.Version
	}
	if manifest.Tool != nil && manifest.Tool.Wheelhouse != nil && manifest.Tool.Wheelhouse.Version != nil {
		return fmt.Sprintf("(dynamic, source: %s)", manifest.Tool.Wheelhouse.Version.Source)
	}
	return "(dynamic)"
}
