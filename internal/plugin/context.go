package plugin

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/config"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
)

// PluginContext carries the state of one build through all three hooks.
type PluginContext struct {
	// Logger is tagged with the build ID.
	Logger *slog.Logger

	// Build is the host build configuration.
	Build config.BuildConfig

	// Assets names the asset directory and its alias.
	Assets config.AssetsConfig

	// BuildID uniquely identifies this build.
	BuildID string

	// StartedAt is when the context was created.
	StartedAt time.Time
}

// NewPluginContext creates a context with a fresh build ID.
func NewPluginContext(logger *slog.Logger, build config.BuildConfig, assets config.AssetsConfig) *PluginContext {
	return ResumePluginContext(logger, build, assets, uuid.NewString())
}

// ResumePluginContext creates a context for an existing build, as when the
// pre-build and post-build hooks run in separate processes.
func ResumePluginContext(logger *slog.Logger, build config.BuildConfig, assets config.AssetsConfig, id string) *PluginContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginContext{
		Logger:    logger.With(logfields.BuildID(id)),
		Build:     build,
		Assets:    assets,
		BuildID:   id,
		StartedAt: time.Now(),
	}
}

// AssetSourceDir returns the on-disk GitBook asset directory.
func (pc *PluginContext) AssetSourceDir() string { return pc.Build.AssetSourceDir(pc.Assets) }

// AssetAliasDir returns the alias path inside the docs root.
func (pc *PluginContext) AssetAliasDir() string { return pc.Build.AssetAliasDir(pc.Assets) }

// SiteAssetDir returns where assets are published in the built site.
func (pc *PluginContext) SiteAssetDir() string { return pc.Build.SiteAssetDir(pc.Assets) }

// PageOutput returns the absolute output path of page, the key under which the
// journal records its translations.
func (pc *PluginContext) PageOutput(page string) string {
	out := filepath.Join(pc.Build.SiteDir, filepath.FromSlash(page))
	if abs, err := filepath.Abs(out); err == nil {
		return abs
	}
	return out
}
