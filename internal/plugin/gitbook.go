package plugin

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/assets"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/audit"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/eventstore"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/fingerprint"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/metrics"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/translator"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/version"
)

// GitBookName is the name the GitBook plugin registers under.
const GitBookName = "gitbook"

// textfileWriter is implemented by recorders that can persist themselves.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// GitBook translates GitBook pages to MkDocs Material and serves the GitBook
// asset directory under its alias for the length of a build.
type GitBook struct {
	translator *translator.Translator
	store      eventstore.Store
	recorder   metrics.Recorder
	textfile   string
	audit      bool

	mu     sync.Mutex
	pages  int
	report audit.Report
}

// Option configures a GitBook plugin.
type Option func(*GitBook)

// WithTranslator replaces the default translator.
func WithTranslator(t *translator.Translator) Option {
	return func(g *GitBook) { g.translator = t }
}

// WithStore journals lifecycle events to s.
func WithStore(s eventstore.Store) Option {
	return func(g *GitBook) { g.store = s }
}

// WithRecorder records metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *GitBook) { g.recorder = r }
}

// WithMetricsTextfile writes the recorder to path after each build when the
// recorder supports it.
func WithMetricsTextfile(path string) Option {
	return func(g *GitBook) { g.textfile = path }
}

// WithAudit enables auditing of every translated page.
func WithAudit(enabled bool) Option {
	return func(g *GitBook) { g.audit = enabled }
}

// NewGitBook returns the GitBook plugin.
func NewGitBook(opts ...Option) *GitBook {
	g := &GitBook{recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(g)
	}
	if g.translator == nil {
		g.translator = translator.Default()
	}
	if g.recorder == nil {
		g.recorder = metrics.NoopRecorder{}
	}
	return g
}

// Metadata implements Hooks.
func (g *GitBook) Metadata() PluginMetadata {
	return PluginMetadata{
		Name:        GitBookName,
		Version:     version.Version,
		Description: "Translate GitBook markup to MkDocs Material",
	}
}

// OnPreBuild links the alias to the asset directory when the directory exists
// and the alias does not.
func (g *GitBook) OnPreBuild(ctx context.Context, pc *PluginContext) error {
	g.mu.Lock()
	g.pages = 0
	g.report = audit.Report{}
	g.mu.Unlock()

	created, err := assets.Link(pc.AssetSourceDir(), pc.AssetAliasDir())
	if err != nil {
		return err
	}
	if created {
		pc.Logger.Info("Linked asset alias",
			logfields.Path(pc.AssetAliasDir()),
			"target", pc.AssetSourceDir())
	}

	g.journal(ctx, pc, func() (eventstore.Event, error) {
		return eventstore.NewPreBuild(pc.BuildID, eventstore.PreBuild{DocsDir: pc.Build.DocsDir, AliasCreated: created})
	})
	return nil
}

// OnPageMarkdown translates one page.
func (g *GitBook) OnPageMarkdown(ctx context.Context, pc *PluginContext, markdown, page string) string {
	out, stats := g.translator.TranslateWithStats(markdown)

	g.recorder.IncPage(metrics.ResultTranslated)
	metrics.RecordStats(g.recorder, stats.Rewrites)
	pc.Logger.Debug("Translated page", logfields.Page(page), logfields.Rewrites(stats.Total()))

	g.mu.Lock()
	g.pages++
	g.mu.Unlock()

	if g.audit {
		g.auditPage(pc, page, out)
	}

	if g.store != nil {
		fp, err := fingerprint.Page([]byte(markdown))
		if err != nil {
			pc.Logger.Debug("Page not fingerprinted", logfields.Page(page), logfields.Error(err))
		}
		g.journal(ctx, pc, func() (eventstore.Event, error) {
			return eventstore.NewPageTranslated(pc.BuildID, eventstore.PageTranslated{
				Page:        page,
				Fingerprint: fp,
				Output:      pc.PageOutput(page),
				Rewrites:    stats.Rewrites,
			})
		})
	}
	return out
}

// OnPostBuild publishes the asset directory into the site and removes the alias.
func (g *GitBook) OnPostBuild(ctx context.Context, pc *PluginContext) error {
	published, err := assets.Publish(pc.AssetSourceDir(), pc.SiteAssetDir())
	if err != nil {
		return err
	}
	if published {
		pc.Logger.Info("Published assets", logfields.Path(pc.SiteAssetDir()))
	}

	removed, err := assets.RemoveAlias(pc.AssetAliasDir())
	if err != nil {
		return err
	}

	elapsed := time.Since(pc.StartedAt)
	g.recorder.ObserveBuildDuration(elapsed)

	g.mu.Lock()
	pages := g.pages
	findings := len(g.report.Findings)
	g.mu.Unlock()

	g.journal(ctx, pc, func() (eventstore.Event, error) {
		return eventstore.NewPostBuild(pc.BuildID, eventstore.PostBuild{
			SiteDir:         pc.Build.SiteDir,
			AssetsPublished: published,
			AliasRemoved:    removed,
			Pages:           pages,
			DurationMS:      elapsed.Milliseconds(),
		})
	})

	if w, ok := g.recorder.(textfileWriter); ok && g.textfile != "" {
		if err := w.WriteTextfile(g.textfile); err != nil {
			pc.Logger.Warn("Failed to write metrics textfile", logfields.Path(g.textfile), logfields.Error(err))
		}
	}

	attrs := []any{logfields.Pages(pages), logfields.DurationMS(float64(elapsed.Milliseconds()))}
	if g.audit {
		attrs = append(attrs, logfields.Findings(findings))
	}
	pc.Logger.Info("Build finished", attrs...)
	return nil
}

// Report returns a copy of the audit findings of the current build.
func (g *GitBook) Report() audit.Report {
	g.mu.Lock()
	defer g.mu.Unlock()
	return audit.Report{Pages: g.report.Pages, Findings: append([]audit.Finding(nil), g.report.Findings...)}
}

// Pages returns the number of pages translated in the current build.
func (g *GitBook) Pages() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pages
}

func (g *GitBook) auditPage(pc *PluginContext, page, translated string) {
	findings := audit.New(pc.AssetSourceDir(), pc.Assets.Alias).Page(page, []byte(translated))
	for _, f := range findings {
		g.recorder.IncAuditFinding(string(f.Kind))
		pc.Logger.Warn("Audit finding",
			logfields.Page(f.Page),
			"line", f.Line,
			"kind", string(f.Kind),
			"detail", f.Detail)
	}

	g.mu.Lock()
	g.report.Add(findings)
	g.mu.Unlock()
}

// journal appends an event. Journal failures never fail a build.
func (g *GitBook) journal(ctx context.Context, pc *PluginContext, build func() (eventstore.Event, error)) {
	if g.store == nil {
		return
	}
	e, err := build()
	if err == nil {
		err = g.store.Append(ctx, e)
	}
	if err != nil {
		pc.Logger.Warn("Failed to journal event", logfields.Error(err))
	}
}
