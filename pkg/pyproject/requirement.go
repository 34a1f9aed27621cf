// SPDX-License-Identifier: MPL-2.0

package pyproject

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"wheelhouse-cli/pkg/markers"
	"wheelhouse-cli/pkg/pep440"
)

// ErrInvalidRequirement is the sentinel error wrapped by InvalidRequirementError.
var ErrInvalidRequirement = errors.New("invalid requirement")

// InvalidRequirementError is returned when a requirement string does not
// match the dependency-specification grammar.
type InvalidRequirementError struct {
	// Value is the offending requirement string.
	Value string
	// Reason describes which part of the grammar failed.
	Reason string
	// Cause is the underlying parse error, if any.
	Cause error
}

// Error implements the error interface.
func (e *InvalidRequirementError) Error() string {
	msg := fmt.Sprintf("invalid requirement %q", e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidRequirement for errors.Is detection.
// The underlying cause stays reachable through Error() only; the sentinel
// is what callers branch on.
func (e *InvalidRequirementError) Unwrap() error { return ErrInvalidRequirement }

// Requirement is a parsed dependency requirement: a distribution name plus
// optional extras, version specifiers, direct URL, and environment marker.
// Requirements are immutable once parsed.
type Requirement struct {
	// Name is the required distribution.
	Name DistributionName
	// Extras are the extras requested from the dependency itself
	// (e.g., "httpx[http2]").
	Extras []ExtraName
	// Specifiers is the version constraint set. Never nil; empty for
	// unconstrained requirements.
	Specifiers *pep440.SpecifierSet
	// URL is the direct reference target for "name @ url" requirements.
	URL string
	// Marker is the parsed environment marker, nil when absent.
	Marker markers.Expr
	// MarkerText is the raw marker expression, "" when absent.
	MarkerText string
	// Raw is the original requirement string.
	Raw string
}

// requirementRegex matches the head of a requirement: name, optional
// extras brackets, and the remainder (specifiers or URL).
var requirementRegex = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`)

// ParseRequirement parses a dependency requirement string.
func ParseRequirement(raw string) (*Requirement, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &InvalidRequirementError{Value: raw, Reason: "empty requirement"}
	}

	spec := trimmed
	markerText := ""
	if idx := strings.IndexByte(trimmed, ';'); idx >= 0 {
		spec = strings.TrimSpace(trimmed[:idx])
		markerText = strings.TrimSpace(trimmed[idx+1:])
		if markerText == "" {
			return nil, &InvalidRequirementError{Value: raw, Reason: "empty environment marker"}
		}
	}

	matches := requirementRegex.FindStringSubmatch(spec)
	if matches == nil || matches[1] == "" {
		return nil, &InvalidRequirementError{Value: raw, Reason: "malformed name"}
	}

	req := &Requirement{
		Name:       DistributionName(matches[1]),
		MarkerText: markerText,
		Raw:        trimmed,
	}

	if matches[2] != "" || strings.Contains(spec, "[]") {
		for _, extra := range strings.Split(matches[2], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				return nil, &InvalidRequirementError{Value: raw, Reason: "empty extra name"}
			}
			name := ExtraName(extra)
			if ok, errs := name.IsValid(); !ok {
				return nil, &InvalidRequirementError{Value: raw, Reason: "bad extra name", Cause: errs[0]}
			}
			req.Extras = append(req.Extras, name)
		}
	}

	rest := strings.TrimSpace(matches[3])
	switch {
	case strings.HasPrefix(rest, "@"):
		url := strings.TrimSpace(strings.TrimPrefix(rest, "@"))
		if url == "" {
			return nil, &InvalidRequirementError{Value: raw, Reason: "empty URL after @"}
		}
		req.URL = url
		empty, err := pep440.ParseSpecifierSet("")
		if err != nil {
			return nil, err
		}
		req.Specifiers = empty

	default:
		// Requirement specifiers may be wrapped in parentheses.
		if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
			rest = strings.TrimSpace(rest[1 : len(rest)-1])
		}
		set, err := pep440.ParseSpecifierSet(rest)
		if err != nil {
			return nil, &InvalidRequirementError{Value: raw, Reason: "bad version specifiers", Cause: err}
		}
		req.Specifiers = set
	}

	if markerText != "" {
		expr, err := markers.Parse(markerText)
		if err != nil {
			return nil, &InvalidRequirementError{Value: raw, Reason: "bad environment marker", Cause: err}
		}
		req.Marker = expr
	}

	return req, nil
}

// ParseRequirements parses a list of requirement strings, collecting all
// failures instead of stopping at the first.
func ParseRequirements(raws []string) ([]Requirement, []error) {
	var reqs []Requirement
	var errs []error
	for _, raw := range raws {
		req, err := ParseRequirement(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reqs = append(reqs, *req)
	}
	return reqs, errs
}

// Key returns the identity used for deduplication during resolution:
// canonical name plus specifiers, URL, and marker text.
func (r *Requirement) Key() string {
	return r.Name.Canonical() + "|" + r.Specifiers.String() + "|" + r.URL + "|" + r.MarkerText
}

// String returns a normalized requirement string.
func (r *Requirement) String() string {
	var sb strings.Builder
	sb.WriteString(string(r.Name))

	if len(r.Extras) > 0 {
		parts := make([]string, len(r.Extras))
		for i, extra := range r.Extras {
			parts[i] = string(extra)
		}
		sb.WriteString("[")
		sb.WriteString(strings.Join(parts, ","))
		sb.WriteString("]")
	}

	if r.URL != "" {
		sb.WriteString(" @ ")
		sb.WriteString(r.URL)
	} else if s := r.Specifiers.String(); s != "" {
		sb.WriteString(s)
	}

	if r.MarkerText != "" {
		sb.WriteString("; ")
		sb.WriteString(r.MarkerText)
	}

	return sb.String()
}

// AppliesTo reports whether the requirement applies under the given marker
// environment. Requirements without a marker always apply.
func (r *Requirement) AppliesTo(env markers.Environment) (bool, error) {
	if r.Marker == nil {
		return true, nil
	}
	return r.Marker.Eval(env)
}
