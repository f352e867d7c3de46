package version

// Version is the gitbook2mkdocs release, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/gitbook2mkdocs/internal/version.Version=v0.3.0".
var Version = "unknown"

// Build metadata, set the same way as Version.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by the CLI.
func String() string {
	return Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
