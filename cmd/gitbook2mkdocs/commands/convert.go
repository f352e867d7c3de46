package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/config"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/convert"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Source  string `short:"s" help:"GitBook tree (overrides convert.source)"`
	Output  string `short:"o" help:"MkDocs docs tree to write (overrides convert.output)"`
	Workers int    `short:"w" help:"Pages translated concurrently (overrides convert.workers)"`
	Full    bool   `help:"Translate every page, ignoring journaled fingerprints"`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	tree, err := c.tree(cfg)
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

	conv := s.converter(g.Logger, c.Workers, cfg.Convert.Incremental && !c.Full)
	_, err = conv.Convert(ctx, s.context(g.Logger, tree.DocsDir, tree.SiteDir))
	return err
}

// tree resolves the source and output directories from flags and config.
func (c *ConvertCmd) tree(cfg *config.Config) (config.BuildConfig, error) {
	source, output := c.Source, c.Output
	if source == "" {
		source = cfg.Convert.Source
	}
	if output == "" {
		output = cfg.Convert.Output
	}
	if source == "" || output == "" {
		return config.BuildConfig{}, errors.ValidationError("convert needs a source and an output directory").
			WithContext("source", source).
			WithContext("output", output).
			Build()
	}
	return config.BuildConfig{DocsDir: source, SiteDir: output}, nil
}

// converter builds a Converter over the session's plugin runner.
// Incremental conversion needs the journal and is dropped without one.
func (s *session) converter(logger *slog.Logger, workers int, incremental bool) *convert.Converter {
	if workers <= 0 {
		workers = s.cfg.Convert.Workers
	}
	opts := []convert.Option{
		convert.WithWorkers(workers),
		convert.WithRecorder(s.recorder),
	}
	switch {
	case incremental && s.store != nil:
		opts = append(opts, convert.WithIncremental(s.store))
	case incremental:
		logger.Warn("Incremental conversion needs journal.path; converting every page")
	}
	return convert.New(s.runner, opts...)
}

// convertTree runs one full conversion of source into output.
func (s *session) convertTree(ctx context.Context, logger *slog.Logger, source, output string) (convert.Result, error) {
	return s.converter(logger, 0, s.cfg.Convert.Incremental).Convert(ctx, s.context(logger, source, output))
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
