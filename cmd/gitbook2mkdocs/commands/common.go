package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/config"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/eventstore"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/metrics"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/plugin"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/translator"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"gitbook2mkdocs.yaml" env:"GITBOOK2MKDOCS_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Page      PageCmd      `cmd:"" aliases:"translate" help:"Translate one page (file or stdin) to stdout"`
	PreBuild  PreBuildCmd  `cmd:"" name:"pre-build" help:"Run the pre-build hook: link the asset alias"`
	PostBuild PostBuildCmd `cmd:"" name:"post-build" help:"Run the post-build hook: publish assets and remove the alias"`
	Build     BuildCmd     `cmd:"" help:"Run the whole lifecycle over the mkdocs.yml docs tree"`
	Convert   ConvertCmd   `cmd:"" help:"Convert a GitBook tree into an MkDocs docs tree"`
	Watch     WatchCmd     `cmd:"" help:"Convert, then re-convert changed pages until interrupted"`
	Mirror    MirrorCmd    `cmd:"" help:"Mirror and convert a GitBook-synced git repository on a schedule"`
	Check     CheckCmd     `cmd:"" help:"Convert into a scratch directory and report what did not translate"`
	History   HistoryCmd   `cmd:"" help:"Show journaled builds or the events of one build"`
	Passes    PassesCmd    `cmd:"" help:"Show the translation pass pipeline (text, mermaid, dot, json)"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	Ver       VersionCmd   `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

var logLevels = foundation.NewNormalizer(map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}, slog.LevelInfo)

// parseLogLevel honors --verbose first, then GITBOOK2MKDOCS_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return logLevels.Normalize(os.Getenv("GITBOOK2MKDOCS_LOG_LEVEL"))
}

// loadConfig loads the configuration file, falling back to defaults when it
// does not exist.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.LoadOrDefault(root.Config)
}

// newTranslator builds the translator the configuration asks for.
func newTranslator(cfg *config.Config) (*translator.Translator, error) {
	t, err := translator.New(
		translator.WithSkip(cfg.Translate.Skip...),
		translator.WithAssetPaths(cfg.Assets.Source, cfg.Assets.Alias),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "build translator").Fatal().Build()
	}
	return t, nil
}

// openJournal opens the build journal, or returns nil when none is configured.
func openJournal(cfg *config.Config) (eventstore.Store, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create journal directory").
			WithContext("path", cfg.Journal.Path).
			Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func closeJournal(store eventstore.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close journal", logfields.Error(err))
	}
}

// newRecorder returns a Prometheus recorder when a textfile is configured.
func newRecorder(cfg *config.Config) metrics.Recorder {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}
	}
	return metrics.NewPrometheusRecorder(nil)
}

// session bundles what one lifecycle run needs.
type session struct {
	cfg      *config.Config
	store    eventstore.Store
	recorder metrics.Recorder
	gitbook  *plugin.GitBook
	runner   *plugin.Runner
}

// newSession wires the GitBook plugin to the journal, metrics and audit
// settings of cfg. Close must be called when done.
func newSession(cfg *config.Config, forceAudit bool) (*session, error) {
	tr, err := newTranslator(cfg)
	if err != nil {
		return nil, err
	}
	store, err := openJournal(cfg)
	if err != nil {
		return nil, err
	}
	recorder := newRecorder(cfg)

	opts := []plugin.Option{
		plugin.WithTranslator(tr),
		plugin.WithRecorder(recorder),
		plugin.WithMetricsTextfile(cfg.Metrics.Textfile),
		plugin.WithAudit(cfg.Audit.Enabled || forceAudit),
	}
	if store != nil {
		opts = append(opts, plugin.WithStore(store))
	}
	gitbook := plugin.NewGitBook(opts...)

	registry := plugin.NewRegistry()
	if err := registry.Register(gitbook); err != nil {
		closeJournal(store)
		return nil, errors.WrapError(err, errors.CategoryInternal, "register plugin").Build()
	}
	return &session{
		cfg:      cfg,
		store:    store,
		recorder: recorder,
		gitbook:  gitbook,
		runner:   plugin.NewRunner(registry, recorder),
	}, nil
}

func (s *session) Close() { closeJournal(s.store) }

// context starts a build over docs and site.
func (s *session) context(logger *slog.Logger, docs, site string) *plugin.PluginContext {
	return plugin.NewPluginContext(logger, config.BuildConfig{DocsDir: docs, SiteDir: site}, s.cfg.Assets)
}

// readBuildConfig reads the host's mkdocs.yml, with path overriding the
// configured location.
func readBuildConfig(cfg *config.Config, path string) (config.BuildConfig, error) {
	if path == "" {
		path = cfg.MkDocsConfig
	}
	return config.ReadMkDocs(path)
}
