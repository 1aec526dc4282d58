package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Git commits the output into a repository on disk, under <site>/. The
// repository is initialised when missing.
type Git struct {
	RepoPath string
	Author   string
	Email    string
	now      func() time.Time
}

// NewGit creates a git adapter.
func NewGit(repoPath, author, email string) *Git {
	return &Git{RepoPath: repoPath, Author: author, Email: email, now: time.Now}
}

func (g *Git) Name() string { return "git" }

func (g *Git) Deploy(ctx context.Context, dir string, req Request) (*Result, error) {
	t, err := walkTree(dir)
	if err != nil {
		return nil, err
	}
	repo, err := g.open()
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}

	site := siteName(dir, req)
	if err := os.RemoveAll(filepath.Join(g.RepoPath, site)); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", site, err)
	}
	for _, f := range t.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := path.Join(site, f.rel)
		if err := copyFile(f.path, filepath.Join(g.RepoPath, filepath.FromSlash(rel))); err != nil {
			return nil, err
		}
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("staging: %w", err)
	}

	at := g.now()
	hash, err := wt.Commit(fmt.Sprintf("Publish %s (%d files)", site, len(t.files)), &git.CommitOptions{
		Author:            &object.Signature{Name: g.Author, Email: g.Email, When: at},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}

	return &Result{
		Success: true,
		URL:     "git:" + hash.String(),
		Message: fmt.Sprintf("committed %s to %s", hash.String()[:7], g.RepoPath),
		Summary: t.summary(g.Name(), at),
	}, nil
}

func (g *Git) open() (*git.Repository, error) {
	repo, err := git.PlainOpen(g.RepoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err = os.MkdirAll(g.RepoPath, 0o755); err == nil {
			repo, err = git.PlainInit(g.RepoPath, false)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", g.RepoPath, err)
	}
	return repo, nil
}
