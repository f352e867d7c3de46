package commands

// BuildCmd implements the 'build' command. It stands in for a host: the
// docs_dir of mkdocs.yml is translated into site_dir with the assets
// published next to the pages.
type BuildCmd struct {
	MkDocs  string `name:"mkdocs" help:"Path to mkdocs.yml (overrides configuration)"`
	Workers int    `short:"w" help:"Pages translated concurrently (overrides convert.workers)"`
	Full    bool   `help:"Translate every page, ignoring journaled fingerprints"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	bc, err := readBuildConfig(cfg, b.MkDocs)
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

	conv := s.converter(g.Logger, b.Workers, cfg.Convert.Incremental && !b.Full)
	_, err = conv.Convert(ctx, s.context(g.Logger, bc.DocsDir, bc.SiteDir))
	return err
}
