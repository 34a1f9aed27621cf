// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"wheelhouse-cli/internal/discovery"
	"wheelhouse-cli/internal/issue"
	"wheelhouse-cli/internal/watch"
)

// newValidateCommand creates the `wheelhouse validate` command.
// Without arguments it validates the nearest manifest found by walking up
// from the working directory. With a path argument it validates that file
// (or the manifest inside that directory) directly.
func newValidateCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a pyproject manifest",
		Long: `Validate a pyproject manifest: schema shape, requirement strings,
extras, dependency groups, scripts, and version declarations.

Without arguments, the manifest is located by walking up from the current
directory. With a path argument, that file (or the manifest inside that
directory) is validated directly.

Examples:
  wheelhouse validate                       Validate the nearest manifest
  wheelhouse validate ./pyproject.toml      Validate a specific file
  wheelhouse validate --watch               Re-validate on every change`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicitPath := ""
			if len(args) > 0 {
				explicitPath = args[0]
			}

			if watchMode {
				return runWatchValidation(cmd, app, rootFlags, explicitPath)
			}
			return runValidation(cmd, app, rootFlags, explicitPath)
		},
	}

	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-validate whenever the manifest or package tree changes")

	return cmd
}

// runValidation performs a single validation pass and renders styled results.
func runValidation(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, explicitPath string) error {
	cfg := app.loadConfig(cmd.Context(), rootFlags)
	d := app.newDiscovery(cfg)

	result, err := d.Validate("", explicitPath)
	if err != nil {
		return renderDiscoveryFailure(cmd, err, rootFlags.verbose)
	}

	return renderValidation(cmd, result)
}

// renderDiscoveryFailure reports a discovery-level failure (no manifest found,
// unreadable path) and converts it to a silent non-zero exit.
func renderDiscoveryFailure(cmd *cobra.Command, err error, verbose bool) error {
	stderr := cmd.ErrOrStderr()

	if errors.Is(err, discovery.ErrManifestNotFound) {
		rendered, renderErr := issue.Get(issue.ManifestNotFoundId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(stderr, rendered)
		}
	}
	fmt.Fprintf(stderr, "%s %s\n", errorIcon, formatErrorForDisplay(err, verbose))

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: 1}
}

// renderValidation renders a validation result and returns an ExitError when
// error-level diagnostics are present.
func renderValidation(cmd *cobra.Command, result *discovery.ValidationResult) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	fmt.Fprintln(stdout, reportTitleStyle.Render("Manifest Validation"))
	fmt.Fprintf(stdout, "%s Path: %s (%s)\n", infoIcon,
		reportPathStyle.Render(result.Manifest.Path), result.Manifest.Source)
	fmt.Fprintln(stdout)

	if len(result.Diagnostics) > 0 {
		renderDiagnostics(stderr, result.Diagnostics)
	}

	if !result.Valid() {
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "%s Validation failed with %d issue(s)\n", errorIcon, len(result.Diagnostics))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	manifest := result.Manifest.Manifest
	fmt.Fprintf(stdout, "%s Schema validation passed\n", successIcon)
	fmt.Fprintf(stdout, "%s %d base dependenc(ies), %d extra(s), %d script(s)\n", successIcon,
		len(manifest.Project.Dependencies),
		len(manifest.Project.OptionalDependencies),
		len(manifest.Project.Scripts),
	)
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s Manifest is valid\n", successIcon)
	return nil
}

// renderDiagnostics writes each diagnostic with its severity, code, and path.
func renderDiagnostics(w io.Writer, diagnostics []discovery.Diagnostic) {
	for i, diag := range diagnostics {
		issueNum := fmt.Sprintf("  %d.", i+1)
		codeTag := reportCodeStyle.Render(fmt.Sprintf("[%s]", diag.Code))
		severity := string(diag.Severity)
		if diag.Severity == discovery.SeverityError {
			severity = ErrorStyle.Render(severity)
		} else {
			severity = WarningStyle.Render(severity)
		}
		fmt.Fprintf(w, "%s %s %s %s\n", issueNum, severity, codeTag, diag.Message)
	}
}

// runWatchValidation validates once, then re-validates whenever the manifest
// or the surrounding package tree changes. It blocks until the context is
// cancelled (e.g., Ctrl+C).
func runWatchValidation(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, explicitPath string) error {
	cfg := app.loadConfig(cmd.Context(), rootFlags)
	d := app.newDiscovery(cfg)

	logger := log.NewWithOptions(app.stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "watch",
	})
	if rootFlags.verbose {
		logger.SetLevel(log.DebugLevel)
	}

	// Locate the manifest up front so the watcher can anchor at its directory.
	found, err := d.Load("", explicitPath)
	if err != nil && found == nil {
		return renderDiscoveryFailure(cmd, err, rootFlags.verbose)
	}

	revalidate := func(ctx context.Context, _ []string) error {
		result, valErr := d.Validate("", found.Path)
		if valErr != nil {
			logger.Error("validation failed", "error", formatErrorForDisplay(valErr, rootFlags.verbose))
			return nil
		}
		// Ignore the ExitError: watch mode keeps running after failures so
		// the user can fix the manifest and save again.
		_ = renderValidation(cmd, result)
		return nil
	}

	logger.Info("initial validation", "manifest", found.Path)
	_ = revalidate(cmd.Context(), nil)

	logger.Info("watching for changes (Ctrl+C to stop)", "dir", found.Dir())

	w, err := watch.New(watch.Config{
		Patterns: watch.ManifestPatterns(string(cfg.ManifestName)),
		Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		BaseDir:  found.Dir(),
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("change detected, re-validating", "files", len(changed))
			logger.Debug("changed paths", "paths", changed)
			if err := revalidate(ctx, changed); err != nil {
				logger.Warn("re-validation error", "error", err)
			}
			logger.Info("watching for changes")
			return nil
		},
		Stdout: app.stdout,
		Stderr: app.stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(cmd.Context())
}
