package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/translator"
)

// PassesCmd implements the 'passes' command.
type PassesCmd struct {
	Format string `short:"f" help:"Output format: text, mermaid, dot, json" default:"text" enum:"text,mermaid,dot,json"`
	Output string `short:"o" help:"Output file path (optional, prints to stdout if not specified)"`
	List   bool   `short:"l" help:"List available formats and exit"`

	out io.Writer
}

// Run prints the pass pipeline the configuration resolves to, so skipped
// passes are left out.
func (cmd *PassesCmd) Run(_ *Global, root *CLI) error {
	w := stdout(cmd.out)
	if cmd.List {
		_, _ = fmt.Fprintln(w, "Available visualization formats:")
		_, _ = fmt.Fprintln(w)
		for _, format := range translator.SupportedFormats() {
			_, _ = fmt.Fprintf(w, "  %-10s %s\n", format, translator.FormatDescription(format))
		}
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Usage examples:")
		_, _ = fmt.Fprintln(w, "  gitbook2mkdocs passes                     # Text format to stdout")
		_, _ = fmt.Fprintln(w, "  gitbook2mkdocs passes -f mermaid          # Mermaid diagram to stdout")
		_, _ = fmt.Fprintln(w, "  gitbook2mkdocs passes -f dot -o pipe.dot  # DOT format to file")
		return nil
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	tr, err := newTranslator(cfg)
	if err != nil {
		return err
	}
	output, err := tr.Visualize(translator.VisualizationFormat(cmd.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "visualize pass pipeline").Build()
	}

	if cmd.Output != "" {
		if err := os.WriteFile(cmd.Output, []byte(output), 0o600); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "write visualization").
				WithContext("path", cmd.Output).
				Build()
		}
		slog.Info("Pass pipeline written", logfields.Path(cmd.Output), slog.String("format", cmd.Format))
		return nil
	}
	_, _ = fmt.Fprint(w, output)
	return nil
}
