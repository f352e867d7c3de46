package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/audit"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/config"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/eventstore"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/metrics"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/translator"
)

type gitbookFixture struct {
	docs string
	site string
	pc   *PluginContext
}

func newGitBookFixture(t *testing.T, withAssets bool) gitbookFixture {
	t.Helper()
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	site := filepath.Join(root, "site")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	if withAssets {
		dir := filepath.Join(docs, ".gitbook", "assets")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o600))
	}
	pc := NewPluginContext(nil, config.BuildConfig{DocsDir: docs, SiteDir: site},
		config.AssetsConfig{Source: translator.DefaultAssetSource, Alias: translator.DefaultAssetAlias})
	return gitbookFixture{docs: docs, site: site, pc: pc}
}

func TestGitBook_Lifecycle(t *testing.T) {
	f := newGitBookFixture(t, true)
	ctx := context.Background()

	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	recorder := metrics.NewPrometheusRecorder(nil)
	textfile := filepath.Join(t.TempDir(), "gitbook2mkdocs.prom")
	g := NewGitBook(WithStore(store), WithRecorder(recorder), WithMetricsTextfile(textfile), WithAudit(true))

	require.NoError(t, g.OnPreBuild(ctx, f.pc))
	alias := filepath.Join(f.docs, "gbassets")
	info, err := os.Lstat(alias)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	src := "{% hint style=\"info\" %}\nNote\nSee ![a](.gitbook/assets/a.png)\n{% endhint %}\n"
	out := g.OnPageMarkdown(ctx, f.pc, src, "guide/index.md")
	assert.Equal(t, "!!! info \"Note\"\n    See ![a](gbassets/a.png)\n\n", out)

	require.NoError(t, g.OnPostBuild(ctx, f.pc))

	_, err = os.Lstat(alias)
	assert.True(t, os.IsNotExist(err), "alias removed")
	assert.FileExists(t, filepath.Join(f.site, "gbassets", "a.png"))
	assert.FileExists(t, textfile)
	assert.Equal(t, 1, g.Pages())
	report := g.Report()
	assert.True(t, report.Clean())

	events, err := store.GetByBuildID(ctx, f.pc.BuildID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, eventstore.TypePreBuild, events[0].Type)
	assert.Equal(t, eventstore.TypePageTranslated, events[1].Type)
	assert.Equal(t, eventstore.TypePostBuild, events[2].Type)

	var post eventstore.PostBuild
	require.NoError(t, events[2].Decode(&post))
	assert.True(t, post.AssetsPublished)
	assert.True(t, post.AliasRemoved)
	assert.Equal(t, 1, post.Pages)

	var page eventstore.PageTranslated
	require.NoError(t, events[1].Decode(&page))
	assert.Equal(t, filepath.Join(f.site, "guide", "index.md"), page.Output)

	fp, found, err := store.LastPageFingerprint(ctx, f.pc.PageOutput("guide/index.md"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotEmpty(t, fp)

	_, found, err = store.LastPageFingerprint(ctx, "guide/index.md")
	require.NoError(t, err)
	assert.False(t, found, "page events are keyed by output path")
}

func TestGitBook_NoAssetDirectory(t *testing.T) {
	f := newGitBookFixture(t, false)
	ctx := context.Background()
	g := NewGitBook()

	require.NoError(t, g.OnPreBuild(ctx, f.pc))
	_, err := os.Lstat(filepath.Join(f.docs, "gbassets"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, g.OnPostBuild(ctx, f.pc))
	assert.NoDirExists(t, filepath.Join(f.site, "gbassets"))
}

func TestGitBook_ExistingAliasIsKept(t *testing.T) {
	f := newGitBookFixture(t, true)
	ctx := context.Background()
	alias := filepath.Join(f.docs, "gbassets")
	require.NoError(t, os.MkdirAll(alias, 0o755))

	g := NewGitBook()
	require.NoError(t, g.OnPreBuild(ctx, f.pc))
	require.NoError(t, g.OnPostBuild(ctx, f.pc))

	assert.DirExists(t, alias, "a real directory is never removed")
}

func TestGitBook_AuditReportsMissingAsset(t *testing.T) {
	f := newGitBookFixture(t, true)
	ctx := context.Background()
	g := NewGitBook(WithAudit(true))

	require.NoError(t, g.OnPreBuild(ctx, f.pc))
	g.OnPageMarkdown(ctx, f.pc, "![gone](.gitbook/assets/missing.png)\n{% embed url=\"x\" %}\n", "p.md")

	report := g.Report()
	assert.False(t, report.Clean())
	assert.Equal(t, map[audit.Kind]int{audit.KindMissingAsset: 1, audit.KindResidualTag: 1}, report.Counts())
}

func TestGitBook_WithTranslator(t *testing.T) {
	tr, err := translator.New(translator.WithSkip("hints"))
	require.NoError(t, err)

	f := newGitBookFixture(t, false)
	g := NewGitBook(WithTranslator(tr))

	src := "{% hint style=\"info\" %}\nT\nb\n{% endhint %}"
	assert.Equal(t, src, g.OnPageMarkdown(context.Background(), f.pc, src, "p.md"))
	assert.Equal(t, GitBookName, g.Metadata().Name)
}
