// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flag values shared by every command.
type rootFlagValues struct {
	// verbose enables verbose output
	verbose bool
	// configPath allows specifying a custom config file
	configPath string
}

// newRootCommand builds the root command and attaches all subcommands.
func newRootCommand(app *App) (*cobra.Command, *rootFlagValues) {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "wheelhouse",
		Short: "A pyproject.toml manifest toolkit",
		Long: TitleStyle.Render("wheelhouse") + SubtitleStyle.Render(" - A pyproject.toml manifest toolkit") + `

wheelhouse parses, validates, and resolves Python packaging manifests.
It understands requirement strings with version specifiers and
environment markers, optional dependency extras, console entry points,
and versions derived from repository tags.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'wheelhouse init' to scaffold a pyproject.toml
  2. Declare dependencies, extras, and scripts in the manifest
  3. Check it with: wheelhouse validate

` + SubtitleStyle.Render("Examples:") + `
  wheelhouse validate              Validate the nearest manifest
  wheelhouse validate --watch      Re-validate on every change
  wheelhouse resolve --extra cli   Resolve base deps plus the cli extra
  wheelhouse entrypoints --check   Verify console scripts resolve
  wheelhouse version               Show the derived package version
  wheelhouse config show           Show current configuration`,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/wheelhouse/config.cue)")

	rootCmd.AddCommand(newValidateCommand(app, flags))
	rootCmd.AddCommand(newResolveCommand(app, flags))
	rootCmd.AddCommand(newInspectCommand(app, flags))
	rootCmd.AddCommand(newVersionCommand(app, flags))
	rootCmd.AddCommand(newEntryPointsCommand(app, flags))
	rootCmd.AddCommand(newInitCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newCompletionCommand())

	return rootCmd, flags
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd, _ := newRootCommand(app)

	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
