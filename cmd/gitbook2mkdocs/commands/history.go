package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/eventstore"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	BuildID string        `arg:"" optional:"" name:"build-id" help:"Show the events of this build"`
	Since   time.Duration `help:"Only builds started within this window" default:"168h"`
	Limit   int           `short:"n" help:"Maximum number of builds to list" default:"20"`

	out io.Writer
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.ConfigError("journal.path is not configured").Build()
	}
	defer closeJournal(store)

	ctx := context.Background()
	w := tabwriter.NewWriter(stdout(h.out), 0, 0, 2, ' ', 0)
	if h.BuildID != "" {
		events, err := store.GetByBuildID(ctx, h.BuildID)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return errors.NewError(errors.CategoryNotFound, "no events recorded for build").
				WithContext("build_id", h.BuildID).
				Build()
		}
		writeEvents(w, events)
		return w.Flush()
	}

	builds, err := eventstore.History(ctx, store, time.Now().Add(-h.Since), h.Limit)
	if err != nil {
		return err
	}
	writeBuilds(w, builds)
	return w.Flush()
}

func writeEvents(w io.Writer, events []eventstore.Event) {
	_, _ = fmt.Fprintln(w, "TIME\tTYPE\tSUBJECT")
	for _, e := range events {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.Local().Format(time.RFC3339), e.Type, e.Subject)
	}
	s := eventstore.Summarize(events[0].BuildID, events)
	_, _ = fmt.Fprintf(w, "\n%d translated, %d skipped, %d rewrites, completed: %t\n",
		s.PagesTranslated, s.PagesSkipped, s.Rewrites, s.Completed)
}

func writeBuilds(w io.Writer, builds []eventstore.BuildSummary) {
	_, _ = fmt.Fprintln(w, "BUILD\tSTARTED\tDURATION\tTRANSLATED\tSKIPPED\tREWRITES\tCOMPLETED")
	for _, b := range builds {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
			b.BuildID,
			b.StartedAt.Local().Format(time.RFC3339),
			b.Duration().Round(time.Millisecond),
			b.PagesTranslated,
			b.PagesSkipped,
			b.Rewrites,
			b.Completed)
	}
}
