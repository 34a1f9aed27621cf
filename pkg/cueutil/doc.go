// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the schema-validated decode pattern used across
// the pyproject and config packages:
//
//  1. Compile the embedded schema
//  2. Compile (or encode) user data and unify with the schema
//  3. Validate and decode to a Go struct
//
// Two entry points exist: ParseAndDecode for data that is itself CUE (the
// app config file), and UnifyMapAndDecode for data that arrives as a
// generic Go map (a decoded TOML document).
//
// # Usage
//
//	//go:embed pyproject_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.UnifyMapAndDecode[Manifest](
//	    schemaBytes,
//	    tomlMap,
//	    "#Pyproject",
//	    cueutil.WithFilename("pyproject.toml"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
