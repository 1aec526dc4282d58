package deploy

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHub uploads the output through the repository contents API, one
// commit per file, under <site>/ on Branch.
type GitHub struct {
	Owner  string
	Repo   string
	Branch string
	token  string
	client *github.Client
	now    func() time.Time
}

// NewGitHub creates a GitHub adapter authenticated with token.
func NewGitHub(ctx context.Context, token, owner, repo, branch string) *GitHub {
	g := &GitHub{Owner: owner, Repo: repo, Branch: branch, token: token, now: time.Now}
	if token != "" {
		g.client = newGitHubClient(ctx, token)
	}
	return g
}

// WithClient replaces the API client.
func (g *GitHub) WithClient(c *github.Client) *GitHub {
	g.client = c
	return g
}

func newGitHubClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) Deploy(ctx context.Context, dir string, req Request) (*Result, error) {
	client := g.client
	if req.APIKey != "" {
		client = newGitHubClient(ctx, req.APIKey)
	}
	if client == nil {
		return nil, fmt.Errorf("github: token not set")
	}
	if g.Owner == "" || g.Repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}

	t, err := walkTree(dir)
	if err != nil {
		return nil, err
	}
	site := siteName(dir, req)
	for _, f := range t.files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, err
		}
		if err := g.put(ctx, client, path.Join(site, f.rel), data); err != nil {
			return nil, err
		}
	}

	return &Result{
		Success: true,
		URL:     fmt.Sprintf("https://%s.github.io/%s/%s/", g.Owner, g.Repo, site),
		Message: fmt.Sprintf("uploaded %d files to %s/%s@%s", len(t.files), g.Owner, g.Repo, g.Branch),
		Summary: t.summary(g.Name(), g.now()),
	}, nil
}

// put creates or updates one file, passing the current blob sha when the
// file already exists.
func (g *GitHub) put(ctx context.Context, client *github.Client, p string, data []byte) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Publish " + p),
		Content: data,
		Branch:  github.String(g.Branch),
	}

	existing, _, resp, err := client.Repositories.GetContents(ctx, g.Owner, g.Repo, p,
		&github.RepositoryContentGetOptions{Ref: g.Branch})
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		if _, _, err := client.Repositories.UpdateFile(ctx, g.Owner, g.Repo, p, opts); err != nil {
			return fmt.Errorf("updating %s: %w", p, err)
		}
		return nil
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		if _, _, err := client.Repositories.CreateFile(ctx, g.Owner, g.Repo, p, opts); err != nil {
			return fmt.Errorf("creating %s: %w", p, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading %s: %w", p, err)
	default:
		return fmt.Errorf("reading %s: not a file", p)
	}
}
