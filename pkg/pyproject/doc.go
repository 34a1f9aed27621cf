// SPDX-License-Identifier: MPL-2.0

// Package pyproject defines the schema, parsing, and validation for
// pyproject.toml packaging manifests.
//
// A manifest declares everything an external build tool needs to produce a
// distributable artifact without executing project code: package identity,
// base dependencies, named optional dependency groups (extras), development
// dependency groups, console-script entry points, and tool configuration
// such as the version-derivation source.
//
// Parsing is a two-step flow: the TOML document is decoded into a generic
// map, then unified with an embedded CUE schema and decoded into typed Go
// structs. Structural rules the schema cannot express (requirement grammar,
// duplicate conflicts, dynamic-field exclusivity) run as a second
// validation pass that collects all issues instead of stopping at the
// first.
package pyproject
