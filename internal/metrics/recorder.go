package metrics

import "time"

// ResultLabel enumerates per-page outcomes for counters.
type ResultLabel string

const (
	ResultTranslated ResultLabel = "translated"
	ResultSkipped    ResultLabel = "skipped"
	ResultCopied     ResultLabel = "copied"
	ResultFailed     ResultLabel = "failed"
)

// Recorder defines observability hooks for translation and lifecycle metrics.
type Recorder interface {
	IncPage(result ResultLabel)
	AddPassRewrites(pass string, n int)
	IncAuditFinding(kind string)
	ObserveHookDuration(hook string, d time.Duration, success bool)
	ObserveBuildDuration(d time.Duration)
	IncMirrorSync(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncPage(ResultLabel)                              {}
func (NoopRecorder) AddPassRewrites(string, int)                      {}
func (NoopRecorder) IncAuditFinding(string)                           {}
func (NoopRecorder) ObserveHookDuration(string, time.Duration, bool) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)               {}
func (NoopRecorder) IncMirrorSync(bool)                               {}

// RecordStats adds every non-zero per-pass rewrite count to r.
func RecordStats(r Recorder, rewrites map[string]int) {
	for pass, n := range rewrites {
		if n > 0 {
			r.AddPassRewrites(pass, n)
		}
	}
}
