package plugin

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/config"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
)

func newTestContext() *PluginContext {
	return NewPluginContext(nil, config.BuildConfig{DocsDir: "docs", SiteDir: "site"}, config.AssetsConfig{Source: ".gitbook/assets", Alias: "gbassets"})
}

func TestRunner_Lifecycle(t *testing.T) {
	var calls []string
	registry := NewRegistry()
	require.NoError(t, registry.Register(&recordingHooks{name: "first", calls: &calls, suffix: "1"}))
	require.NoError(t, registry.Register(&recordingHooks{name: "second", calls: &calls, suffix: "2"}))

	runner := NewRunner(registry, nil)
	pc := newTestContext()
	ctx := context.Background()

	require.NoError(t, runner.PreBuild(ctx, pc))
	out := runner.Page(ctx, pc, "x", "index.md")
	require.NoError(t, runner.PostBuild(ctx, pc))

	assert.Equal(t, "x12", out)
	assert.Equal(t, []string{
		"first:pre_build", "second:pre_build",
		"first:page:index.md", "second:page:index.md",
		"first:post_build", "second:post_build",
	}, calls)
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	var calls []string
	cause := stderrors.New("disk full")
	registry := NewRegistry()
	require.NoError(t, registry.Register(&recordingHooks{name: "broken", calls: &calls, postErr: cause}))
	require.NoError(t, registry.Register(&recordingHooks{name: "after", calls: &calls}))

	err := NewRunner(registry, nil).PostBuild(context.Background(), newTestContext())

	require.Error(t, err)
	assert.Equal(t, []string{"broken:post_build"}, calls)
	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.HasCategory(err, errors.CategoryHook))

	var perr *PluginError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken", perr.PluginName)
	assert.Equal(t, HookPostBuild, perr.Operation)
}

func TestRunner_CanceledContext(t *testing.T) {
	var calls []string
	registry := NewRegistry()
	require.NoError(t, registry.Register(&recordingHooks{name: "only", calls: &calls}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(registry, nil).PreBuild(ctx, newTestContext())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestNewPluginContext(t *testing.T) {
	a := newTestContext()
	b := newTestContext()

	assert.NotEmpty(t, a.BuildID)
	assert.NotEqual(t, a.BuildID, b.BuildID)
	assert.Equal(t, "docs/.gitbook/assets", a.AssetSourceDir())
	assert.Equal(t, "docs/gbassets", a.AssetAliasDir())
	assert.Equal(t, "site/gbassets", a.SiteAssetDir())
}

func TestResumePluginContext(t *testing.T) {
	pc := ResumePluginContext(nil, config.BuildConfig{}, config.AssetsConfig{}, "build-1")
	assert.Equal(t, "build-1", pc.BuildID)
	assert.NotNil(t, pc.Logger)
}
