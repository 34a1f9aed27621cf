// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wheelhouse-cli/internal/config"
	"wheelhouse-cli/internal/issue"
	"wheelhouse-cli/pkg/gitversion"
	"wheelhouse-cli/pkg/pyproject"
)

// newVersionCommand creates the `wheelhouse version` command.
func newVersionCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var tagPrefix string

	cmd := &cobra.Command{
		Use:   "version [path]",
		Short: "Show the package version",
		Long: `Show the package version: the literal project.version when set, or the
version derived from repository state when the manifest declares version
as dynamic with a "vcs" source.

Derived versions follow the packaging version scheme: an exact release
tag yields that version; commits past the tag yield the next patch with
a .devN suffix and the short commit hash; a dirty worktree appends a
local "dirty" segment.

Examples:
  wheelhouse version                      Version of the nearest manifest
  wheelhouse version --tag-prefix release- Use a custom release tag prefix`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicitPath := ""
			if len(args) > 0 {
				explicitPath = args[0]
			}
			return runVersion(cmd, app, rootFlags, explicitPath, tagPrefix)
		},
	}

	cmd.Flags().StringVar(&tagPrefix, "tag-prefix", "", "release tag prefix (overrides manifest and config)")

	return cmd
}

func runVersion(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, explicitPath, tagPrefixFlag string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg := app.loadConfig(cmd.Context(), rootFlags)
	d := app.newDiscovery(cfg)

	found, err := d.Load("", explicitPath)
	if err != nil {
		return renderDiscoveryFailure(cmd, err, rootFlags.verbose)
	}
	manifest := found.Manifest

	// Literal versions need no repository.
	if manifest.Project.Version != "" {
		fmt.Fprintln(stdout, manifest.Project.Version)
		return nil
	}

	desc, err := gitversion.Derive(found.Dir(), resolveTagPrefix(manifest, cfg, tagPrefixFlag))
	if err != nil {
		if errors.Is(err, gitversion.ErrNoRepository) {
			rendered, renderErr := issue.Get(issue.VersionDeriveFailedId).Render("dark")
			if renderErr == nil {
				fmt.Fprint(stderr, rendered)
			}
		}
		fmt.Fprintf(stderr, "%s %s\n", errorIcon, formatErrorForDisplay(err, rootFlags.verbose))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	fmt.Fprintln(stdout, desc.Version.String())

	if rootFlags.verbose {
		if desc.Tag != "" {
			fmt.Fprintf(stdout, "%s tag: %s (distance %d)\n", infoIcon, desc.Tag, desc.Distance)
		} else {
			fmt.Fprintf(stdout, "%s no release tag found (distance %d)\n", infoIcon, desc.Distance)
		}
		fmt.Fprintf(stdout, "%s commit: %s\n", infoIcon, desc.CommitSHA)
		if desc.Dirty {
			fmt.Fprintf(stdout, "%s worktree has uncommitted changes\n", WarningStyle.Render("!"))
		}
	}
	return nil
}

// resolveTagPrefix picks the release tag prefix: the --tag-prefix flag wins,
// then the manifest's [tool.wheelhouse.version] block, then the app config,
// then the built-in default.
func resolveTagPrefix(manifest *pyproject.Manifest, cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if manifest.Tool != nil && manifest.Tool.Wheelhouse != nil &&
		manifest.Tool.Wheelhouse.Version != nil && manifest.Tool.Wheelhouse.Version.TagPrefix != "" {
		return manifest.Tool.Wheelhouse.Version.TagPrefix
	}
	if cfg.TagPrefix != "" {
		return string(cfg.TagPrefix)
	}
	return gitversion.DefaultTagPrefix
}
