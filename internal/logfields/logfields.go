package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyHook       = "hook"
	KeyPage       = "page"
	KeyPass       = "pass"
	KeyPath       = "path"
	KeyRewrites   = "rewrites"
	KeyWorkers    = "workers"
	KeyPages      = "pages"
	KeySkipped    = "skipped"
	KeyFindings   = "findings"
	KeyRepo       = "repository"
	KeyBranch     = "branch"
	KeySchedule   = "schedule_name"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Hook(name string) slog.Attr      { return slog.String(KeyHook, name) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Pass(name string) slog.Attr      { return slog.String(KeyPass, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Rewrites(n int) slog.Attr        { return slog.Int(KeyRewrites, n) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Skipped(n int) slog.Attr         { return slog.Int(KeySkipped, n) }
func Findings(n int) slog.Attr        { return slog.Int(KeyFindings, n) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func ScheduleName(n string) slog.Attr { return slog.String(KeySchedule, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
