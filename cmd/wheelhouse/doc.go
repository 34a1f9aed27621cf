// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for wheelhouse.
//
// This package implements the Cobra command hierarchy for the wheelhouse CLI,
// including the root command and subcommands for manifest validation,
// dependency resolution, entry point checking, version derivation, and
// configuration management.
package cmd
