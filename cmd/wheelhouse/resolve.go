// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wheelhouse-cli/internal/issue"
	"wheelhouse-cli/pkg/markers"
	"wheelhouse-cli/pkg/pyproject"
)

// newResolveCommand creates the `wheelhouse resolve` command.
func newResolveCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		extras     []string
		forEnv     bool
		pythonVer  string
		platform   string
		withGroups []string
	)

	cmd := &cobra.Command{
		Use:   "resolve [path]",
		Short: "Resolve the dependency set for a manifest",
		Long: `Resolve the manifest's dependency set: the base dependencies plus the
requirements of every requested extra, in declaration order, deduplicated.

With --for-env, requirements whose environment marker evaluates false for
the target environment are dropped. The target defaults to the host and
can be adjusted with --python and --platform.

Examples:
  wheelhouse resolve                         Base dependencies only
  wheelhouse resolve --extra cli --extra mcp Base plus two extras
  wheelhouse resolve --for-env --python 3.13 Drop requirements that do not
                                             apply to Python 3.13
  wheelhouse resolve --group dev             Include a dependency group`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicitPath := ""
			if len(args) > 0 {
				explicitPath = args[0]
			}
			return runResolve(cmd, app, rootFlags, resolveOptions{
				explicitPath: explicitPath,
				extras:       extras,
				groups:       withGroups,
				forEnv:       forEnv,
				pythonVer:    pythonVer,
				platform:     platform,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&extras, "extra", "e", nil, "extra to include (repeatable)")
	cmd.Flags().StringArrayVarP(&withGroups, "group", "g", nil, "dependency group to include (repeatable)")
	cmd.Flags().BoolVar(&forEnv, "for-env", false, "drop requirements whose marker does not apply to the target environment")
	cmd.Flags().StringVar(&pythonVer, "python", "", "target Python version for --for-env (e.g. 3.13)")
	cmd.Flags().StringVar(&platform, "platform", "", "target sys_platform for --for-env (e.g. linux, darwin, win32)")

	return cmd
}

// resolveOptions carries the parsed resolve flags.
type resolveOptions struct {
	explicitPath string
	extras       []string
	groups       []string
	forEnv       bool
	pythonVer    string
	platform     string
}

func runResolve(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, opts resolveOptions) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg := app.loadConfig(cmd.Context(), rootFlags)
	d := app.newDiscovery(cfg)

	found, err := d.Load("", opts.explicitPath)
	if err != nil {
		return renderDiscoveryFailure(cmd, err, rootFlags.verbose)
	}
	manifest := found.Manifest

	// Config-level default extras apply when none are requested explicitly.
	requested := opts.extras
	if len(requested) == 0 {
		requested = cfg.DefaultExtras
	}

	extraNames := make([]pyproject.ExtraName, len(requested))
	for i, name := range requested {
		extraNames[i] = pyproject.ExtraName(name)
	}

	var resolved []pyproject.Requirement
	if opts.forEnv {
		resolved, err = manifest.ResolveForEnvironment(targetEnvironment(opts), extraNames...)
	} else {
		resolved, err = manifest.Resolve(extraNames...)
	}
	if err != nil {
		var unknownExtra *pyproject.UnknownExtraError
		if errors.As(err, &unknownExtra) {
			rendered, renderErr := issue.Get(issue.ExtraUnknownId).Render("dark")
			if renderErr == nil {
				fmt.Fprint(stderr, rendered)
			}
		}
		fmt.Fprintf(stderr, "%s %s\n", errorIcon, err)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	// Dependency groups are appended after the project dependency set; they
	// are a development-time concept and never merge into the extras union.
	groupReqs, err := resolveGroups(manifest, opts.groups)
	if err != nil {
		fmt.Fprintf(stderr, "%s %s\n", errorIcon, err)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	if rootFlags.verbose {
		fmt.Fprintf(stdout, "%s %s\n", infoIcon, reportPathStyle.Render(found.Path))
		if len(requested) > 0 {
			fmt.Fprintf(stdout, "%s extras: %v\n", infoIcon, requested)
		}
	}

	for _, req := range resolved {
		fmt.Fprintln(stdout, req.String())
	}
	for _, req := range groupReqs {
		fmt.Fprintln(stdout, req.String())
	}
	return nil
}

// resolveGroups parses the requirements of each requested dependency group.
func resolveGroups(manifest *pyproject.Manifest, groups []string) ([]pyproject.Requirement, error) {
	var out []pyproject.Requirement
	for _, group := range groups {
		raws, ok := manifest.DependencyGroups[group]
		if !ok {
			return nil, fmt.Errorf("unknown dependency group %q", group)
		}
		reqs, errs := pyproject.ParseRequirements(raws)
		if len(errs) > 0 {
			return nil, fmt.Errorf("dependency group %q: %w", group, errs[0])
		}
		out = append(out, reqs...)
	}
	return out, nil
}

// targetEnvironment builds the marker environment for --for-env, starting
// from the host defaults and applying the --python and --platform overrides.
func targetEnvironment(opts resolveOptions) markers.Environment {
	env := markers.DefaultEnvironment()
	if opts.pythonVer != "" {
		env["python_version"] = opts.pythonVer
		env["python_full_version"] = opts.pythonVer + ".0"
		env["implementation_version"] = opts.pythonVer + ".0"
	}
	if opts.platform != "" {
		env["sys_platform"] = opts.platform
		switch opts.platform {
		case "win32":
			env["os_name"] = "nt"
			env["platform_system"] = "Windows"
		case "darwin":
			env["platform_system"] = "Darwin"
		case "linux":
			env["os_name"] = "posix"
			env["platform_system"] = "Linux"
		}
	}
	return env
}
