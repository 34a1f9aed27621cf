// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes runtime.GOOS string constants so call sites
// that branch on the host operating system (config directory lookup,
// marker environment defaults) never compare against scattered literals.
package platform
