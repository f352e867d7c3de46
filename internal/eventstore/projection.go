package eventstore

import (
	"context"
	"sort"
	"time"
)

// BuildSummary is a read model of one lifecycle run, folded from its events.
type BuildSummary struct {
	BuildID         string
	StartedAt       time.Time
	FinishedAt      time.Time
	Completed       bool // a post_build event was recorded
	PagesTranslated int
	PagesSkipped    int
	Rewrites        int
	AssetsPublished bool
}

// Duration is the time between the first and last event of the build.
func (b BuildSummary) Duration() time.Duration {
	return b.FinishedAt.Sub(b.StartedAt)
}

// Summarize folds the events of a single build into a summary.
func Summarize(buildID string, events []Event) BuildSummary {
	s := BuildSummary{BuildID: buildID}
	for _, e := range events {
		if e.BuildID != buildID {
			continue
		}
		if s.StartedAt.IsZero() || e.Timestamp.Before(s.StartedAt) {
			s.StartedAt = e.Timestamp
		}
		if e.Timestamp.After(s.FinishedAt) {
			s.FinishedAt = e.Timestamp
		}

		switch e.Type {
		case TypePageTranslated:
			s.PagesTranslated++
			var p PageTranslated
			if e.Decode(&p) == nil {
				for _, n := range p.Rewrites {
					s.Rewrites += n
				}
			}
		case TypePageSkipped:
			s.PagesSkipped++
		case TypePostBuild:
			s.Completed = true
			var p PostBuild
			if e.Decode(&p) == nil {
				s.AssetsPublished = p.AssetsPublished
			}
		case TypePreBuild:
		}
	}
	return s
}

// History returns summaries of the builds recorded since since, newest first,
// at most limit of them (all when limit <= 0).
func History(ctx context.Context, store Store, since time.Time, limit int) ([]BuildSummary, error) {
	events, err := store.GetRange(ctx, since, time.Now().Add(time.Minute))
	if err != nil {
		return nil, err
	}

	byBuild := make(map[string][]Event)
	var order []string
	for _, e := range events {
		if _, seen := byBuild[e.BuildID]; !seen {
			order = append(order, e.BuildID)
		}
		byBuild[e.BuildID] = append(byBuild[e.BuildID], e)
	}

	summaries := make([]BuildSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, Summarize(id, byBuild[id]))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
