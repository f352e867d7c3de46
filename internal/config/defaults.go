package config

import (
	"path/filepath"
	"runtime"
	"time"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/retry"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/translator"
)

const (
	defaultDebounce       = 500 * time.Millisecond
	defaultMirrorInterval = 15 * time.Minute
	defaultMirrorBranch   = "main"
)

// ApplyDefaults fills unset fields. Relative default paths are joined to baseDir.
func (c *Config) ApplyDefaults(baseDir string) {
	if c.MkDocsConfig == "" {
		c.MkDocsConfig = filepath.Join(baseDir, "mkdocs.yml")
	}
	if c.Assets.Source == "" {
		c.Assets.Source = translator.DefaultAssetSource
	}
	if c.Assets.Alias == "" {
		c.Assets.Alias = translator.DefaultAssetAlias
	}
	if c.Convert.Workers <= 0 {
		c.Convert.Workers = runtime.NumCPU()
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = defaultDebounce.String()
	}
	if c.Mirror.Branch == "" {
		c.Mirror.Branch = defaultMirrorBranch
	}
	if c.Mirror.Interval == "" {
		c.Mirror.Interval = defaultMirrorInterval.String()
	}
	if c.Mirror.Depth < 0 {
		c.Mirror.Depth = 0
	}
	if c.Mirror.Retry.Backoff == "" {
		c.Mirror.Retry.Backoff = string(retry.BackoffLinear)
	}
	if c.Mirror.Retry.Initial == "" {
		c.Mirror.Retry.Initial = retry.DefaultPolicy().Initial.String()
	}
	if c.Mirror.Retry.Max == "" {
		c.Mirror.Retry.Max = retry.DefaultPolicy().Max.String()
	}
	if c.Mirror.Workspace == "" {
		c.Mirror.Workspace = filepath.Join(baseDir, ".gitbook2mkdocs", "mirror")
	}
}
