package commands

import (
	"context"
	"fmt"
	"io"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/plugin"
)

// PreBuildCmd implements the 'pre-build' command.
type PreBuildCmd struct {
	MkDocs string `name:"mkdocs" help:"Path to mkdocs.yml (overrides configuration)"`

	out io.Writer
}

// Run links the asset alias and prints the build ID, which page and
// post-build accept through --build-id.
func (p *PreBuildCmd) Run(g *Global, root *CLI) error {
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
	if err := s.runner.PreBuild(context.Background(), pc); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout(p.out), pc.BuildID)
	return nil
}
