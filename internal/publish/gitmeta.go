package publish

import (
	"github.com/go-git/go-git/v5"
)

// headRevision reports the HEAD commit of the repository enclosing dir
// and whether its worktree holds uncommitted changes. Outside any
// repository, or on errors, both results are zero; provenance is best
// effort and never fails a publication.
func headRevision(dir string) (revision string, dirty bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}

	head, err := repo.Head()
	if err != nil {
		return "", false
	}
	revision = head.Hash().String()

	wt, err := repo.Worktree()
	if err != nil {
		return revision, false
	}
	status, err := wt.Status()
	if err != nil {
		return revision, false
	}
	return revision, !status.IsClean()
}
