// SPDX-License-Identifier: MPL-2.0

// Package pep440 implements parsing, comparison, and constraint matching
// for PEP 440-style version strings and version specifier sets.
//
// Versions are normalized on parse (spelling variants like "alpha" fold to
// "a", separators are canonicalized) and compare per the PEP 440 ordering
// rules: dev releases sort before pre-releases, pre-releases before finals,
// finals before post-releases, with local segments breaking ties.
//
// Specifier sets are comma-separated conjunctions of clauses
// (">=1.0,<2.0,!=1.5"). Matching is pure version comparison; the
// pip behavior of hiding pre-releases from open ranges unless explicitly
// requested is a resolver policy and intentionally not replicated here.
package pep440
