package git

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
)

// Remote describes the repository to mirror.
type Remote struct {
	URL    string
	Branch string
	Token  string // sent as HTTP basic auth password when set
	Depth  int    // shallow clone depth, 0 for full history
}

// SyncResult reports what a sync did.
type SyncResult struct {
	Path    string
	Commit  string
	Cloned  bool
	Changed bool // HEAD moved (always true after a clone)
}

// Client mirrors one remote into a directory.
type Client struct {
	dir    string
	remote Remote
}

// NewClient returns a Client that keeps dir in sync with remote.
func NewClient(dir string, remote Remote) *Client {
	if remote.Branch == "" {
		remote.Branch = "main"
	}
	return &Client{dir: dir, remote: remote}
}

// Path returns the mirror directory.
func (c *Client) Path() string { return c.dir }

// Sync clones the remote when the mirror is missing and fetches and resets it
// otherwise.
func (c *Client) Sync(ctx context.Context) (SyncResult, error) {
	if _, err := os.Stat(filepath.Join(c.dir, ".git")); err != nil {
		return c.clone(ctx)
	}
	return c.update(ctx)
}

func (c *Client) clone(ctx context.Context) (SyncResult, error) {
	slog.Debug("Cloning repository", logfields.Repository(c.remote.URL), logfields.Branch(c.remote.Branch), logfields.Path(c.dir))
	if err := os.RemoveAll(c.dir); err != nil {
		return SyncResult{}, classify(err, "clone", c.remote.URL)
	}

	opts := &git.CloneOptions{
		URL:           c.remote.URL,
		ReferenceName: plumbing.NewBranchReferenceName(c.remote.Branch),
		SingleBranch:  true,
		Depth:         c.remote.Depth,
		Auth:          c.auth(),
	}
	repository, err := git.PlainCloneContext(ctx, c.dir, false, opts)
	if err != nil {
		return SyncResult{}, classify(err, "clone", c.remote.URL)
	}

	commit := headCommit(repository)
	slog.Info("Repository cloned", logfields.Repository(c.remote.URL), slog.String("commit", short(commit)), logfields.Path(c.dir))
	return SyncResult{Path: c.dir, Commit: commit, Cloned: true, Changed: true}, nil
}

func (c *Client) update(ctx context.Context) (SyncResult, error) {
	repository, err := git.PlainOpen(c.dir)
	if err != nil {
		return SyncResult{}, classify(err, "open", c.remote.URL)
	}
	before := headCommit(repository)

	remoteRef := plumbing.NewRemoteReferenceName("origin", c.remote.Branch)
	spec := ggitcfg.RefSpec("+" + plumbing.NewBranchReferenceName(c.remote.Branch).String() + ":" + remoteRef.String())
	err = repository.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []ggitcfg.RefSpec{spec},
		Depth:      c.remote.Depth,
		Auth:       c.auth(),
		Force:      true,
	})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return SyncResult{}, classify(err, "fetch", c.remote.URL)
	}

	ref, err := repository.Reference(remoteRef, true)
	if err != nil {
		return SyncResult{}, classify(err, "resolve", c.remote.URL)
	}
	wt, err := repository.Worktree()
	if err != nil {
		return SyncResult{}, classify(err, "worktree", c.remote.URL)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: ref.Hash(), Mode: git.HardReset}); err != nil {
		return SyncResult{}, classify(err, "reset", c.remote.URL)
	}

	after := ref.Hash().String()
	changed := after != before
	if changed {
		slog.Info("Repository updated", logfields.Repository(c.remote.URL), slog.String("from", short(before)), slog.String("to", short(after)))
	} else {
		slog.Debug("Repository already up to date", logfields.Repository(c.remote.URL))
	}
	return SyncResult{Path: c.dir, Commit: after, Changed: changed}, nil
}

func (c *Client) auth() transport.AuthMethod {
	if c.remote.Token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "token", // GitHub/GitLab accept any non-empty username with a token
		Password: c.remote.Token,
	}
}

func headCommit(repository *git.Repository) string {
	ref, err := repository.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
