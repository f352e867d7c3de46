package commands

import (
	"context"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/git"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/mirror"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/workspace"
)

// MirrorCmd implements the 'mirror' command.
type MirrorCmd struct {
	Output string `short:"o" help:"MkDocs docs tree to write (overrides convert.output)"`
	Once   bool   `help:"Sync and convert once, then exit"`
}

func (m *MirrorCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if !cfg.Mirror.Enabled() {
		return errors.ConfigError("mirror.url is not configured").Build()
	}
	output := m.Output
	if output == "" {
		output = cfg.Convert.Output
	}
	if output == "" {
		return errors.ValidationError("mirror needs an output directory").Build()
	}

	ws := workspace.NewPersistentManager(cfg.Mirror.Workspace)
	if err := ws.Create(); err != nil {
		return err
	}
	dir, err := ws.Subdir("repo")
	if err != nil {
		return err
	}

	s, err := newSession(cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	client := git.NewClient(dir, git.Remote{
		URL:    cfg.Mirror.URL,
		Branch: cfg.Mirror.Branch,
		Token:  cfg.Mirror.Token,
		Depth:  cfg.Mirror.Depth,
	})
	convertFn := func(ctx context.Context, source string) error {
		_, err := s.convertTree(ctx, g.Logger, source, output)
		return err
	}
	mr := mirror.New(client, cfg.Mirror.Subdir, convertFn, s.recorder,
		mirror.WithRetry(cfg.Mirror.Retry.Policy()))

	ctx, stop := signalContext()
	defer stop()

	if m.Once {
		return mr.RunOnce(ctx)
	}
	return mr.Run(ctx, cfg.Mirror.IntervalDuration())
}
