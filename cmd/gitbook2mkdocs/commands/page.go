package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/config"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/plugin"
)

// PageCmd implements the 'page' command: the per-page hook for hosts that
// shell out once per page.
type PageCmd struct {
	File    string `arg:"" optional:"" help:"Markdown page to translate; stdin when omitted"`
	Name    string `help:"Page path used in logs and the journal (defaults to FILE)"`
	BuildID string `name:"build-id" help:"Journal the page under the build started by pre-build"`
	MkDocs  string `name:"mkdocs" help:"Path to mkdocs.yml (overrides configuration)"`

	in  io.Reader
	out io.Writer
}

func (p *PageCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	markdown, name, err := p.read()
	if err != nil {
		return err
	}

	s, err := newSession(cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	bc := buildConfigOrDefault(cfg, p.MkDocs)
	pc := plugin.NewPluginContext(g.Logger, bc, cfg.Assets)
	if p.BuildID != "" {
		pc = plugin.ResumePluginContext(g.Logger, bc, cfg.Assets, p.BuildID)
	}

	translated := s.runner.Page(context.Background(), pc, markdown, name)
	if _, err := io.WriteString(stdout(p.out), translated); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "write translated page").Build()
	}
	return nil
}

// read returns the page text and the name it is reported under.
func (p *PageCmd) read() (string, string, error) {
	name := p.Name
	if p.File == "" {
		in := p.in
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", "", errors.WrapError(err, errors.CategoryFileSystem, "read page from stdin").Build()
		}
		if name == "" {
			name = "-"
		}
		return string(data), name, nil
	}

	// #nosec G304 -- page path is provided by the operator
	data, err := os.ReadFile(p.File)
	if os.IsNotExist(err) {
		return "", "", errors.NewError(errors.CategoryNotFound, fmt.Sprintf("page not found: %s", p.File)).
			WithContext("path", p.File).
			Build()
	}
	if err != nil {
		return "", "", errors.WrapError(err, errors.CategoryFileSystem, "read page").
			WithContext("path", p.File).
			Build()
	}
	if name == "" {
		name = filepath.ToSlash(p.File)
	}
	return string(data), name, nil
}

// buildConfigOrDefault reads mkdocs.yml when present and otherwise assumes
// the MkDocs defaults next to the working directory. A page can be
// translated without a host project.
func buildConfigOrDefault(cfg *config.Config, path string) config.BuildConfig {
	bc, err := readBuildConfig(cfg, path)
	if err != nil {
		return config.BuildConfig{DocsDir: config.DefaultDocsDir, SiteDir: config.DefaultSiteDir}
	}
	return bc
}
