package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct {
	out io.Writer
}

func (v *VersionCmd) Run(_ *Global, _ *CLI) error {
	_, _ = fmt.Fprintf(stdout(v.out), "gitbook2mkdocs %s\n", version.String())
	return nil
}
