// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wheelhouse-cli/internal/config"
	"wheelhouse-cli/internal/issue"
)

// newConfigCommand creates the `wheelhouse config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wheelhouse configuration",
		Long: `Manage wheelhouse configuration.

Configuration is stored in:
  - Linux: ~/.config/wheelhouse/config.cue
  - macOS: ~/Library/Application Support/wheelhouse/config.cue
  - Windows: %APPDATA%\wheelhouse\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), cmd, app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), cmd, app, rootFlags, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	stdout := cmd.OutOrStdout()

	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: rootFlags.configPath})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(cmd.ErrOrStderr(), rendered)
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(stdout)

	// Derive the config file path from the standard config directory; the
	// provider does not cache resolved paths.
	if cfgPath, ok := resolvedConfigFile(rootFlags); ok {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("manifest_name"), valueStyle.Render(string(cfg.ManifestName)))
	if cfg.TagPrefix != "" {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("tag_prefix"), valueStyle.Render(string(cfg.TagPrefix)))
	} else {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("tag_prefix"), SubtitleStyle.Render("(built-in default)"))
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("default_extras"))
	if len(cfg.DefaultExtras) == 0 {
		fmt.Fprintf(stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, extra := range cfg.DefaultExtras {
			fmt.Fprintf(stdout, "  - %s\n", valueStyle.Render(extra))
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(stdout, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(stdout, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(stdout, "  debounce_ms: %s\n", valueStyle.Render(strconv.Itoa(cfg.Watch.DebounceMs)))

	return nil
}

// resolvedConfigFile reports the config file backing the loaded config,
// if one exists on disk.
func resolvedConfigFile(rootFlags *rootFlagValues) (string, bool) {
	if rootFlags.configPath != "" {
		return rootFlags.configPath, fileExistsCheck(rootFlags.configPath)
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", false
	}
	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	return cfgPath, fileExistsCheck(cfgPath)
}

func initConfig(cmd *cobra.Command) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n",
		SuccessStyle.Render(successIcon),
		filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	return nil
}

func showConfigPath(cmd *cobra.Command) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	return nil
}

func setConfigValue(ctx context.Context, cmd *cobra.Command, app *App, rootFlags *rootFlagValues, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: rootFlags.configPath})
	if err != nil {
		return err
	}

	switch key {
	case "manifest_name":
		name := config.ManifestFileName(value)
		if ok, errs := name.IsValid(); !ok {
			return fmt.Errorf("invalid manifest_name: %w", errs[0])
		}
		cfg.ManifestName = name

	case "tag_prefix":
		prefix := config.TagPrefix(value)
		if ok, errs := prefix.IsValid(); !ok {
			return fmt.Errorf("invalid tag_prefix: %w", errs[0])
		}
		cfg.TagPrefix = prefix

	case "default_extras":
		extras := splitExtrasList(value)
		cfg.DefaultExtras = extras

	case "ui.color_scheme":
		scheme := config.ColorScheme(value)
		if ok, errs := scheme.IsValid(); !ok {
			return fmt.Errorf("invalid ui.color_scheme: %w", errs[0])
		}
		cfg.UI.ColorScheme = scheme

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	case "watch.debounce_ms":
		ms, convErr := strconv.Atoi(value)
		if convErr != nil || ms < 0 {
			return fmt.Errorf("invalid watch.debounce_ms: must be a non-negative integer")
		}
		cfg.Watch.DebounceMs = ms

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: manifest_name, tag_prefix, default_extras, ui.color_scheme, ui.verbose, watch.debounce_ms", key)
	}

	if ok, errs := cfg.IsValid(); !ok {
		return fmt.Errorf("invalid configuration: %w", errs[0])
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s\n", SuccessStyle.Render(successIcon), key, value)
	return nil
}

// splitExtrasList splits a comma-separated extras list, dropping empty
// entries.
func splitExtrasList(value string) []string {
	var extras []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			extras = append(extras, trimmed)
		}
	}
	return extras
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
