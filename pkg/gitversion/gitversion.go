// SPDX-License-Identifier: MPL-2.0

// Package gitversion derives a package version from the state of the
// repository containing the manifest. An exact release tag yields that
// release; commits past the latest tag yield a dev pre-release of the next
// patch version carrying the commit count and abbreviated commit hash; a
// modified worktree is marked in the local segment.
package gitversion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"wheelhouse-cli/pkg/pep440"
)

// DefaultTagPrefix is stripped from tag names before version parsing.
const DefaultTagPrefix = "v"

// shortHashLen is the abbreviated commit hash length used in local
// version segments.
const shortHashLen = 7

// ErrNoRepository is the sentinel error wrapped by NoRepositoryError.
var ErrNoRepository = errors.New("no git repository")

type (
	// Description captures the repository state a version is derived from.
	Description struct {
		// Version is the derived package version.
		Version *pep440.Version
		// Tag is the release tag the version is based on, "" when the
		// repository has no parseable release tag.
		Tag string
		// TagVersion is the version parsed from Tag, nil when Tag is "".
		TagVersion *pep440.Version
		// Distance is the number of commits between HEAD and the tag
		// (total commit count when Tag is "").
		Distance int
		// CommitSHA is the full HEAD commit hash.
		CommitSHA string
		// Dirty reports whether the worktree has uncommitted changes.
		Dirty bool
	}

	// NoRepositoryError is returned when the manifest directory is not
	// inside a git repository.
	NoRepositoryError struct {
		// Dir is the directory the search started from.
		Dir string
	}
)

// Error implements the error interface.
func (e *NoRepositoryError) Error() string {
	return fmt.Sprintf("no git repository found at or above %s", e.Dir)
}

// Unwrap returns ErrNoRepository for errors.Is detection.
func (e *NoRepositoryError) Unwrap() error { return ErrNoRepository }

// String renders the description the way a build log would show it.
func (d *Description) String() string {
	state := "clean"
	if d.Dirty {
		state = "dirty"
	}
	if d.Tag == "" {
		return fmt.Sprintf("%s (untagged, %d commits, %s)", d.Version, d.Distance, state)
	}
	return fmt.Sprintf("%s (tag %s +%d, %s)", d.Version, d.Tag, d.Distance, state)
}

// Derive computes the version for the repository containing dir. The
// tagPrefix (DefaultTagPrefix when "") is stripped from tag names before
// parsing; under the default prefix, unprefixed tags like "1.2.3" count
// too. Tags that do not parse as versions are ignored.
func Derive(dir string, tagPrefix string) (*Description, error) {
	if tagPrefix == "" {
		tagPrefix = DefaultTagPrefix
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, &NoRepositoryError{Dir: dir}
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	tagged, err := collectReleaseTags(repo, tagPrefix)
	if err != nil {
		return nil, err
	}

	desc := &Description{CommitSHA: head.Hash().String()}

	desc.Tag, desc.TagVersion, desc.Distance, err = describe(repo, head.Hash(), tagged)
	if err != nil {
		return nil, err
	}

	desc.Dirty, err = worktreeDirty(repo)
	if err != nil {
		return nil, err
	}

	desc.Version, err = buildVersion(desc)
	if err != nil {
		return nil, err
	}

	return desc, nil
}

// releaseTag is a tag whose name parses as a version after prefix stripping.
type releaseTag struct {
	name    string
	version *pep440.Version
}

// collectReleaseTags maps commit hashes to the release tags pointing at
// them. Annotated tags are dereferenced to their target commit.
func collectReleaseTags(repo *git.Repository, tagPrefix string) (map[plumbing.Hash][]releaseTag, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tagged := map[plumbing.Hash][]releaseTag{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		text, found := strings.CutPrefix(name, tagPrefix)
		if !found {
			if tagPrefix != DefaultTagPrefix {
				return nil
			}
			// Under the default prefix, bare tags like "1.2.3" are
			// accepted alongside "v1.2.3", matching setuptools-scm.
			text = name
		}
		version, parseErr := pep440.Parse(text)
		if parseErr != nil {
			// Not a release tag.
			return nil
		}

		target := ref.Hash()
		if tagObj, tagErr := repo.TagObject(ref.Hash()); tagErr == nil {
			target = tagObj.Target
		}

		tagged[target] = append(tagged[target], releaseTag{name: name, version: version})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tags: %w", err)
	}

	return tagged, nil
}

// describe walks the commit history from HEAD and returns the first
// release tag reached plus the number of commits between them. When no
// tagged commit is reachable it returns the total commit count.
func describe(repo *git.Repository, from plumbing.Hash, tagged map[plumbing.Hash][]releaseTag) (string, *pep440.Version, int, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return "", nil, 0, fmt.Errorf("failed to walk history: %w", err)
	}
	defer iter.Close()

	distance := 0
	var match *releaseTag
	err = iter.ForEach(func(c *object.Commit) error {
		if tags, ok := tagged[c.Hash]; ok {
			match = bestTag(tags)
			return storer.ErrStop
		}
		distance++
		return nil
	})
	if err != nil {
		return "", nil, 0, fmt.Errorf("failed to walk history: %w", err)
	}

	if match == nil {
		return "", nil, distance, nil
	}
	return match.name, match.version, distance, nil
}

// bestTag picks the highest version among tags pointing at one commit.
func bestTag(tags []releaseTag) *releaseTag {
	best := &tags[0]
	for i := 1; i < len(tags); i++ {
		if tags[i].version.Compare(best.version) > 0 {
			best = &tags[i]
		}
	}
	return best
}

// worktreeDirty reports whether the repository's worktree has uncommitted
// changes. Bare repositories count as clean.
func worktreeDirty(repo *git.Repository) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}
	return !status.IsClean(), nil
}

// buildVersion assembles the derived version string from the description
// and parses it back so the result is always normalized.
func buildVersion(desc *Description) (*pep440.Version, error) {
	short := desc.CommitSHA
	if len(short) > shortHashLen {
		short = short[:shortHashLen]
	}

	var text string
	switch {
	case desc.TagVersion != nil && desc.Distance == 0:
		text = desc.TagVersion.String()
		if desc.Dirty {
			text = appendLocal(text, "dirty")
		}

	case desc.TagVersion != nil:
		text = fmt.Sprintf("%s.dev%d+g%s", nextPatch(desc.TagVersion), desc.Distance, short)
		if desc.Dirty {
			text = appendLocal(text, "dirty")
		}

	default:
		text = fmt.Sprintf("0.0.0.dev%d+g%s", desc.Distance, short)
		if desc.Dirty {
			text = appendLocal(text, "dirty")
		}
	}

	version, err := pep440.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("derived version %q is invalid: %w", text, err)
	}
	return version, nil
}

// nextPatch returns the tag's release with the last digit incremented,
// dropping any pre, post, dev, or local parts.
func nextPatch(v *pep440.Version) string {
	release := make([]string, len(v.Release))
	for i, n := range v.Release {
		release[i] = strconv.Itoa(n)
	}
	release[len(release)-1] = strconv.Itoa(v.Release[len(v.Release)-1] + 1)
	return strings.Join(release, ".")
}

// appendLocal adds a segment to the version's local part, starting one
// when absent.
func appendLocal(text, segment string) string {
	if strings.Contains(text, "+") {
		return text + "." + segment
	}
	return text + "+" + segment
}
