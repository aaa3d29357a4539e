package sitedata

import (
	"log/slog"

	"github.com/go-git/go-git/v5"
)

// Revision describes the git commit the input directory is checked out at.
// It returns false when dir is not inside a repository or HEAD is unborn.
func Revision(dir string) (map[string]any, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, false
	}
	ref, err := repo.Head()
	if err != nil {
		slog.Debug("No git HEAD for revision data", slog.String("path", dir), slog.String("error", err.Error()))
		return nil, false
	}

	hash := ref.Hash().String()
	rev := map[string]any{
		"commit": hash,
		"short":  hash[:7],
	}
	if ref.Name().IsBranch() {
		rev["branch"] = ref.Name().Short()
	}
	if commit, err := repo.CommitObject(ref.Hash()); err == nil {
		rev["author"] = commit.Author.Name
		rev["time"] = commit.Author.When
	}
	return rev, true
}
