// SPDX-License-Identifier: MPL-2.0

// Command wheelhouse is a toolkit for Python packaging manifests. It
// discovers, validates, and resolves pyproject.toml files.
package main

import cmd "wheelhouse-cli/cmd/wheelhouse"

func main() {
	cmd.Execute()
}
