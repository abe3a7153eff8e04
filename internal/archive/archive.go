// Package archive snapshots an export directory into a git repository so that
// successive downloads of the same articles form a history.
package archive

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNothingToCommit is returned when the export left the worktree unchanged
var ErrNothingToCommit = errors.New("nothing to commit")

// Signature identifies the author of snapshot commits
type Signature struct {
	Name  string
	Email string
}

// DefaultSignature is used when no author is configured
var DefaultSignature = Signature{Name: "devtoy", Email: "devtoy@localhost"}

// Commit stages every markdown file in dir and commits it. The repository
// containing dir is used when there is one; otherwise dir is initialised as a
// new repository. It returns the new commit hash.
func Commit(dir, message string, author Signature) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve directory: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return "", fmt.Errorf("failed to open repository %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	// Worktree paths are slash-separated and relative to the repository root.
	prefix, err := worktreePrefix(wt.Filesystem.Root(), dir)
	if err != nil {
		return "", err
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read worktree status: %w", err)
	}
	if !hasMarkdownChanges(status, prefix) {
		return "", ErrNothingToCommit
	}

	if err := wt.AddGlob(path.Join(prefix, "*.md")); err != nil {
		return "", fmt.Errorf("failed to stage articles: %w", err)
	}

	if author.Name == "" {
		author = DefaultSignature
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	return hash.String(), nil
}

// worktreePrefix returns dir relative to root in worktree form, "" for root itself
func worktreePrefix(root, dir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", fmt.Errorf("cannot locate %s in repository %s: %w", dir, root, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

func hasMarkdownChanges(status git.Status, prefix string) bool {
	for file, s := range status {
		if !isArticleFile(file, prefix) || s.Worktree == git.Deleted {
			continue
		}
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			return true
		}
	}
	return false
}

// isArticleFile matches the *.md files an export writes directly under prefix
func isArticleFile(file, prefix string) bool {
	if prefix != "" {
		var ok bool
		if file, ok = strings.CutPrefix(file, prefix+"/"); !ok {
			return false
		}
	}
	return !strings.Contains(file, "/") && path.Ext(file) == ".md"
}
