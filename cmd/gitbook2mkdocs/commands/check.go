package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/workspace"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Source string `short:"s" help:"GitBook tree (defaults to convert.source, then the mkdocs.yml docs_dir)"`
	MkDocs string `name:"mkdocs" help:"Path to mkdocs.yml (overrides configuration)"`

	out io.Writer
}

// Run converts the tree into a scratch directory with auditing on and
// prints the findings. Nothing is journaled and the source is left as found.
func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	source := c.Source
	if source == "" {
		source = cfg.Convert.Source
	}
	if source == "" {
		bc, err := readBuildConfig(cfg, c.MkDocs)
		if err != nil {
			return err
		}
		source = bc.DocsDir
	}

	scratch := *cfg
	scratch.Journal.Path = ""
	scratch.Metrics.Textfile = ""
	scratch.Convert.Incremental = false

	ws := workspace.NewManager("")
	if err := ws.Create(); err != nil {
		return err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			g.Logger.Warn("Failed to remove scratch workspace", logfields.Error(err))
		}
	}()

	s, err := newSession(&scratch, true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signalContext()
	defer stop()

	if _, err := s.convertTree(ctx, g.Logger, source, ws.Path()); err != nil {
		return err
	}

	report := s.gitbook.Report()
	if err := report.WriteText(stdout(c.out)); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "write audit report").Build()
	}
	if !report.Clean() {
		return errors.ValidationError(fmt.Sprintf("%d audit findings", len(report.Findings))).
			WithContext("source", source).
			Build()
	}
	return nil
}
