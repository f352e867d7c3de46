package commands

import (
	"context"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/plugin"
)

// PostBuildCmd implements the 'post-build' command.
type PostBuildCmd struct {
	MkDocs  string `name:"mkdocs" help:"Path to mkdocs.yml (overrides configuration)"`
	BuildID string `name:"build-id" help:"Build ID printed by pre-build"`
}

func (p *PostBuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	bc, err := readBuildConfig(cfg, p.MkDocs)
	if err != nil {
		return err
	}

	s, err := newSession(cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	pc := plugin.NewPluginContext(g.Logger, bc, cfg.Assets)
	if p.BuildID != "" {
		pc = plugin.ResumePluginContext(g.Logger, bc, cfg.Assets, p.BuildID)
	}
	return s.runner.PostBuild(context.Background(), pc)
}
