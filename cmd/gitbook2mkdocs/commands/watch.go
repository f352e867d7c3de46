package commands

import (
	"context"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source string `short:"s" help:"GitBook tree (overrides convert.source)"`
	Output string `short:"o" help:"MkDocs docs tree to write (overrides convert.output)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	tree, err := (&ConvertCmd{Source: w.Source, Output: w.Output}).tree(cfg)
	if err != nil {
		return err
	}

	s, err := newSession(cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signalContext()
	defer stop()

	if _, err := s.convertTree(ctx, g.Logger, tree.DocsDir, tree.SiteDir); err != nil {
		return err
	}

	conv := s.converter(g.Logger, 0, cfg.Convert.Incremental)
	handler := func(ctx context.Context, paths []string) error {
		_, err := conv.Update(ctx, s.context(g.Logger, tree.DocsDir, tree.SiteDir), paths)
		return err
	}

	watcher, err := watch.New(tree.DocsDir, cfg.Watch.DebounceDuration(), handler,
		tree.SiteDir, cfg.Assets.Alias)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
