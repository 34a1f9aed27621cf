// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wheelhouse-cli/internal/issue"
)

// newEntryPointsCommand creates the `wheelhouse entrypoints` command.
func newEntryPointsCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "entrypoints [path]",
		Short: "List the manifest's console entry points",
		Long: `List the console commands registered under [project.scripts], each a
launcher name bound to a "package.module:function" reference.

With --check, every reference is verified against the project's package
roots: the module must exist as a .py file or a package directory, the
way a launcher generator would require at install time.

Examples:
  wheelhouse entrypoints           List registered commands
  wheelhouse entrypoints --check   Verify each reference resolves`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicitPath := ""
			if len(args) > 0 {
				explicitPath = args[0]
			}
			return runEntryPoints(cmd, app, rootFlags, explicitPath, check)
		},
	}

	cmd.Flags().BoolVarP(&check, "check", "c", false, "verify each entry point's module exists under the package roots")

	return cmd
}

func runEntryPoints(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, explicitPath string, check bool) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg := app.loadConfig(cmd.Context(), rootFlags)
	d := app.newDiscovery(cfg)

	found, err := d.Load("", explicitPath)
	if err != nil {
		return renderDiscoveryFailure(cmd, err, rootFlags.verbose)
	}
	manifest := found.Manifest

	entryPoints := manifest.EntryPoints()

	fmt.Fprintln(stdout, reportTitleStyle.Render("Entry Points"))
	fmt.Fprintf(stdout, "%s Path: %s\n", infoIcon, reportPathStyle.Render(found.Path))
	fmt.Fprintln(stdout)

	if len(entryPoints) == 0 {
		fmt.Fprintf(stdout, "%s\n", SubtitleStyle.Render("(no console scripts declared)"))
		return nil
	}

	for _, ep := range entryPoints {
		fmt.Fprintf(stdout, "  %s = %s  (module %s, callable %s)\n",
			SuccessStyle.Render(string(ep.Name)), CmdStyle.Render(string(ep.Ref)),
			ep.Ref.Module(), ep.Ref.Callable())
	}

	if !check {
		return nil
	}

	fmt.Fprintln(stdout)
	checkErrs := manifest.CheckEntryPoints()
	if len(checkErrs) == 0 {
		fmt.Fprintf(stdout, "%s All %d entry point(s) resolve\n", successIcon, len(entryPoints))
		return nil
	}

	rendered, renderErr := issue.Get(issue.EntryPointUnresolvedId).Render("dark")
	if renderErr == nil {
		fmt.Fprint(stderr, rendered)
	}
	for _, checkErr := range checkErrs {
		fmt.Fprintf(stderr, "%s %s\n", errorIcon, checkErr)
	}
	fmt.Fprintln(stderr)
	fmt.Fprintf(stderr, "%s %d of %d entry point(s) failed to resolve\n", errorIcon, len(checkErrs), len(entryPoints))

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: 1}
}
