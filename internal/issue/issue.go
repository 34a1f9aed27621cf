// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	RequirementInvalidId
	ExtraUnknownId
	ExtraConflictId
	EntryPointInvalidId
	EntryPointUnresolvedId
	VersionDeriveFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No pyproject.toml found!

We searched for a manifest but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. The path passed with --file
2. Current directory
3. Parent directories, up to the filesystem root

## Things you can try:
- Scaffold a manifest in your current directory:
~~~
$ wheelhouse init
~~~

- Or run from inside the project:
~~~
$ cd /path/to/your/project
$ wheelhouse validate
~~~

## Example manifest structure:
~~~toml
[project]
name = "myproject"
version = "0.1.0"
requires-python = ">=3.9"
dependencies = [
  "httpx>=0.27",
]
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse pyproject.toml!

Your manifest contains syntax errors or invalid configuration.

## Common issues:
- Invalid TOML syntax (missing quotes, brackets, etc.)
- Unknown field names under [project]
- Wrong value types (e.g., a string where a list is expected)
- A missing [project] table

## Things you can try:
- Check the error message above for the specific field path
- Run with verbose mode for more details:
~~~
$ wheelhouse --verbose validate
~~~

## Example of a valid [project] table:
~~~toml
[project]
name = "myproject"
version = "0.1.0"
dependencies = [
  "httpx>=0.27",
  "pydantic>=2.10",
]

[project.optional-dependencies]
cli = ["rich>=13"]
~~~`,
	}

	requirementInvalidIssue = &Issue{
		id: RequirementInvalidId,
		mdMsg: `
# Invalid dependency requirement!

A requirement string does not match the dependency specification grammar.

## A requirement consists of:
- A distribution name: ` + "`httpx`" + `
- Optional extras: ` + "`httpx[http2,socks]`" + `
- Optional version specifiers: ` + "`httpx>=0.27,<1.0`" + `
- An optional environment marker after a semicolon:
~~~toml
dependencies = [
  'tomli>=2.0; python_version < "3.11"',
]
~~~

## Things you can try:
- Check for typos in operators (valid: ==, !=, >=, <=, >, <, ~=, ===)
- Quote marker strings with double quotes inside the marker
- Make sure extras brackets are balanced and non-empty`,
	}

	extraUnknownIssue = &Issue{
		id: ExtraUnknownId,
		mdMsg: `
# Unknown extra!

You requested an optional dependency group the manifest does not declare.

## Things you can try:
- List the declared extras:
~~~
$ wheelhouse inspect
~~~

- Check for typos; extras compare case-insensitively and "-", "_", "."
  are interchangeable
- Declare the group under [project.optional-dependencies]:
~~~toml
[project.optional-dependencies]
cli = ["rich>=13"]
~~~`,
	}

	extraConflictIssue = &Issue{
		id: ExtraConflictId,
		mdMsg: `
# Conflicting requirements!

The same distribution is required twice with constraints that cannot both
hold, so no version could ever satisfy the combined set.

## Example of a conflict:
~~~toml
dependencies = [
  "httpx==0.27.0",
  "httpx==0.28.0",   # no version is both 0.27.0 and 0.28.0
]
~~~

## Things you can try:
- Keep a single requirement per distribution in each group
- When two groups genuinely need different versions, loosen the pins to
  a range both can satisfy
- Requirements that target different environments can coexist when they
  carry different markers`,
	}

	entryPointInvalidIssue = &Issue{
		id: EntryPointInvalidId,
		mdMsg: `
# Invalid entry point!

A [project.scripts] value does not match the callable reference form.

## Entry points look like:
~~~toml
[project.scripts]
mytool = "mypkg.cli:main"
~~~

The part before the colon is a dotted module path; the part after the
colon is the function to call. Both must be valid Python identifiers.

## Things you can try:
- Include the colon and the function name (just "mypkg.cli" is not enough)
- Remove spaces and "=" from the script name
- Check each dotted segment starts with a letter or underscore`,
	}

	entryPointUnresolvedIssue = &Issue{
		id: EntryPointUnresolvedId,
		mdMsg: `
# Entry point module not found!

An entry point references a module that does not exist under any of the
project's package roots, so installing the package would produce a broken
launcher.

## Things you can try:
- Check the module path for typos:
~~~
$ wheelhouse entrypoints --check
~~~

- Create the missing module file, or its package with an __init__.py
- Point the wheel at the right package directory:
~~~toml
[tool.wheelhouse.wheel]
packages = ["src/mypkg"]
~~~`,
	}

	versionDeriveFailedIssue = &Issue{
		id: VersionDeriveFailedId,
		mdMsg: `
# Failed to derive the version!

The manifest configures a VCS-derived version but the version could not
be computed from the repository state.

## Requirements for VCS-derived versions:
- The manifest must live inside a git repository
- The repository must have at least one commit
- project.version must not be set literally; declare it dynamic instead:
~~~toml
[project]
name = "myproject"
dynamic = ["version"]

[tool.wheelhouse.version]
source = "vcs"
~~~

## Things you can try:
- Run from inside the repository
- Create an initial commit
- Tag a release so derived versions have an anchor:
~~~
$ git tag v0.1.0
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the wheelhouse configuration file.

## Configuration file locations:
- Linux: ~/.config/wheelhouse/config.cue
- macOS: ~/Library/Application Support/wheelhouse/config.cue
- Windows: %APPDATA%\wheelhouse\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ wheelhouse config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/wheelhouse/config.cue
~~~

## Example configuration:
~~~cue
manifest_name: "pyproject.toml"
default_extras: ["dev"]

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():     manifestNotFoundIssue,
		manifestParseErrorIssue.Id():   manifestParseErrorIssue,
		requirementInvalidIssue.Id():   requirementInvalidIssue,
		extraUnknownIssue.Id():         extraUnknownIssue,
		extraConflictIssue.Id():        extraConflictIssue,
		entryPointInvalidIssue.Id():    entryPointInvalidIssue,
		entryPointUnresolvedIssue.Id(): entryPointUnresolvedIssue,
		versionDeriveFailedIssue.Id():  versionDeriveFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
