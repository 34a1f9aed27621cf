// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/wheelhouse/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/wheelhouse/config.cue on macOS, %APPDATA%\wheelhouse\config.cue
// on Windows). The package provides type-safe configuration access and covers the manifest
// file name, default extras, the version tag prefix, UI settings, and watch behavior.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
