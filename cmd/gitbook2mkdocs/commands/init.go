package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`

	out io.Writer
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	// With an output directory the file is placed there under its default name.
	if i.Output != "" {
		return RunInit(stdout(i.out), filepath.Join(i.Output, config.DefaultFile), i.Force)
	}
	return RunInit(stdout(i.out), root.Config, i.Force)
}

func RunInit(w io.Writer, configPath string, force bool) error {
	_, _ = fmt.Fprintf(w, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		_, _ = fmt.Fprintln(w, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(w, "initialized successfully")
	return nil
}
