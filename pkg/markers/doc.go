// SPDX-License-Identifier: MPL-2.0

// Package markers implements the environment-marker expression language
// used in dependency requirement strings, e.g.:
//
//	python_version >= "3.9" and sys_platform != "win32"
//
// Expressions combine comparisons of marker variables against quoted
// strings with "and", "or", and parentheses ("and" binds tighter than
// "or"). Version-valued variables (python_version, python_full_version,
// implementation_version) compare via the pep440 package; all other
// variables compare lexically. The "in" and "not in" operators test
// substring containment.
package markers
