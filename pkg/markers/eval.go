// SPDX-License-Identifier: MPL-2.0

package markers

import (
	"fmt"
	"runtime"
	"strings"

	"wheelhouse-cli/pkg/pep440"
)

// Environment maps marker variable names to their values for evaluation.
type Environment map[string]string

// knownVariables lists the marker variables the grammar accepts.
// "extra" is set during extras resolution and defaults to empty.
var knownVariables = map[string]bool{
	"os_name":                        true,
	"sys_platform":                   true,
	"platform_machine":               true,
	"platform_python_implementation": true,
	"platform_release":               true,
	"platform_system":                true,
	"platform_version":               true,
	"python_version":                 true,
	"python_full_version":            true,
	"implementation_name":            true,
	"implementation_version":         true,
	"extra":                          true,
}

// versionVariables lists the variables whose values compare as versions
// rather than lexically.
var versionVariables = map[string]bool{
	"python_version":         true,
	"python_full_version":    true,
	"implementation_version": true,
	"platform_version":       false, // platform_version is free-form text
}

func isKnownVariable(name string) bool {
	return knownVariables[name]
}

// DefaultEnvironment returns a marker environment describing the host the
// tool runs on. Python-specific variables are filled with neutral defaults
// that callers can override before evaluation.
func DefaultEnvironment() Environment {
	env := Environment{
		"os_name":                        "posix",
		"sys_platform":                   "linux",
		"platform_machine":               runtime.GOARCH,
		"platform_python_implementation": "CPython",
		"platform_release":               "",
		"platform_system":                "Linux",
		"platform_version":               "",
		"python_version":                 "3.12",
		"python_full_version":            "3.12.0",
		"implementation_name":            "cpython",
		"implementation_version":         "3.12.0",
		"extra":                          "",
	}

	switch runtime.GOOS {
	case "darwin":
		env["sys_platform"] = "darwin"
		env["platform_system"] = "Darwin"
	case "windows":
		env["os_name"] = "nt"
		env["sys_platform"] = "win32"
		env["platform_system"] = "Windows"
	}

	return env
}

// WithExtra returns a copy of the environment with the "extra" variable set.
func (env Environment) WithExtra(extra string) Environment {
	clone := make(Environment, len(env)+1)
	for k, v := range env {
		clone[k] = v
	}
	clone["extra"] = extra
	return clone
}

// Eval implements Expr.
func (e *OrExpr) Eval(env Environment) (bool, error) {
	for _, operand := range e.Operands {
		ok, err := operand.Eval(env)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Eval implements Expr.
func (e *AndExpr) Eval(env Environment) (bool, error) {
	for _, operand := range e.Operands {
		ok, err := operand.Eval(env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Eval implements Expr.
func (e *Comparison) Eval(env Environment) (bool, error) {
	lhs, err := e.Lhs.resolve(env)
	if err != nil {
		return false, err
	}
	rhs, err := e.Rhs.resolve(env)
	if err != nil {
		return false, err
	}

	switch e.Op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	}

	if e.versionComparison() {
		return compareVersions(lhs, rhs, e.Op)
	}
	return compareStrings(lhs, rhs, e.Op), nil
}

// versionComparison reports whether the comparison involves a
// version-valued marker variable on either side.
func (e *Comparison) versionComparison() bool {
	return (!e.Lhs.Literal && versionVariables[e.Lhs.Value]) ||
		(!e.Rhs.Literal && versionVariables[e.Rhs.Value])
}

// resolve returns the operand's value under the environment.
func (o *Operand) resolve(env Environment) (string, error) {
	if o.Literal {
		return o.Value, nil
	}
	value, ok := env[o.Value]
	if !ok {
		return "", fmt.Errorf("marker variable %q not set in environment", o.Value)
	}
	return value, nil
}

// compareVersions compares two values as PEP 440 versions. Values that do
// not parse as versions fall back to lexical comparison, matching the
// permissive behavior of real-world marker evaluation.
func compareVersions(lhs, rhs, op string) (bool, error) {
	lv, lErr := pep440.Parse(lhs)
	rv, rErr := pep440.Parse(rhs)
	if lErr != nil || rErr != nil {
		return compareStrings(lhs, rhs, op), nil
	}

	if op == "===" {
		return lhs == rhs, nil
	}
	if op == "~=" {
		set, err := pep440.ParseSpecifierSet("~=" + rhs)
		if err != nil {
			return false, err
		}
		return set.Match(lv), nil
	}

	c := lv.Compare(rv)
	switch op {
	case "==":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	default:
		return false, fmt.Errorf("unsupported version comparison operator %q", op)
	}
}

// compareStrings compares two values lexically.
func compareStrings(lhs, rhs, op string) bool {
	switch op {
	case "==", "===":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	case ">":
		return lhs > rhs
	case ">=":
		return lhs >= rhs
	case "<":
		return lhs < rhs
	case "<=":
		return lhs <= rhs
	case "~=":
		return lhs == rhs
	default:
		return false
	}
}

// Evaluate is a convenience helper that parses and evaluates a marker
// expression in one call.
func Evaluate(marker string, env Environment) (bool, error) {
	expr, err := Parse(marker)
	if err != nil {
		return false, err
	}
	return expr.Eval(env)
}
