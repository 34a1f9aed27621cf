// SPDX-License-Identifier: MPL-2.0

// Package discovery handles locating and loading pyproject manifests.
//
// This package intentionally combines two related concerns:
//   - File discovery: locating the manifest via an explicit path or an upward
//     search from the working directory
//   - Validation aggregation: bundling parse and validation issues into
//     structured diagnostics for consistent rendering by the CLI layer
//
// These concerns are tightly coupled because diagnostic rendering depends
// directly on where and how the manifest was found. Splitting them would
// create unnecessary indirection without meaningful abstraction benefit.
//
// File organization:
//   - discovery.go: Core types (Discovery, DiscoveredManifest) and search methods
//   - diagnostic.go: Diagnostic types and the Validate entry point
package discovery
