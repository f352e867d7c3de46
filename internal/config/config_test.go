package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/retry"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, "audit:\n  enabled: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "mkdocs.yml"), cfg.MkDocsConfig)
	assert.Equal(t, ".gitbook/assets", cfg.Assets.Source)
	assert.Equal(t, "gbassets", cfg.Assets.Alias)
	assert.Equal(t, runtime.NumCPU(), cfg.Convert.Workers)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDuration())
	assert.Equal(t, "main", cfg.Mirror.Branch)
	assert.Equal(t, 15*time.Minute, cfg.Mirror.IntervalDuration())
	assert.True(t, cfg.Audit.Enabled)
	assert.False(t, cfg.Mirror.Enabled())

	policy := cfg.Mirror.Retry.Policy()
	assert.Equal(t, retry.DefaultPolicy(), policy)
}

func TestRetryConfig_Policy(t *testing.T) {
	p := RetryConfig{Backoff: "exponential", Initial: "2s", Max: "10s", MaxRetries: -1}.Policy()
	assert.Equal(t, retry.BackoffExponential, p.Mode)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 10*time.Second, p.Max)
	assert.Zero(t, p.MaxRetries)
}

func TestLoad_ResolvesPathsAndExpandsEnv(t *testing.T) {
	t.Setenv("G2M_TEST_TOKEN", "secret")
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, `
journal:
  path: state/journal.db
convert:
  source: gitbook
  output: /abs/docs
mirror:
  url: https://example.com/docs.git
  token: ${G2M_TEST_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "state", "journal.db"), cfg.Journal.Path)
	assert.Equal(t, filepath.Join(dir, "gitbook"), cfg.Convert.Source)
	assert.Equal(t, "/abs/docs", cfg.Convert.Output)
	assert.Equal(t, "secret", cfg.Mirror.Token)
	assert.True(t, cfg.Mirror.Enabled())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultFile, "assets: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "gbassets", cfg.Assets.Alias)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"absolute source", func(c *Config) { c.Assets.Source = "/srv/assets" }},
		{"escaping alias", func(c *Config) { c.Assets.Alias = "../assets" }},
		{"dot alias", func(c *Config) { c.Assets.Alias = "." }},
		{"same source and alias", func(c *Config) { c.Assets.Alias = c.Assets.Source + "/" }},
		{"unknown pass", func(c *Config) { c.Translate.Skip = []string{"emoji"} }},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }},
		{"zero debounce", func(c *Config) { c.Watch.Debounce = "0s" }},
		{"bad mirror interval", func(c *Config) {
			c.Mirror.URL = "https://example.com/x.git"
			c.Mirror.Interval = "-1m"
		}},
		{"bad retry backoff", func(c *Config) {
			c.Mirror.URL = "https://example.com/x.git"
			c.Mirror.Retry.Backoff = "random"
		}},
		{"bad retry initial", func(c *Config) {
			c.Mirror.URL = "https://example.com/x.git"
			c.Mirror.Retry.Initial = "later"
		}},
		{"mirror subdir escapes", func(c *Config) {
			c.Mirror.URL = "https://example.com/x.git"
			c.Mirror.Subdir = "../other"
		}},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation), "got %v", err)
		})
	}
}

func TestValidate_KnownSkip(t *testing.T) {
	cfg := Default()
	cfg.Translate.Skip = []string{"figures", "tabs"}
	assert.NoError(t, cfg.Validate())
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))

	t.Setenv("GITBOOK_SYNC_TOKEN", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Convert.Workers)
	assert.True(t, cfg.Convert.Incremental)
	assert.Equal(t, filepath.Join(filepath.Dir(path), ".gitbook2mkdocs", "journal.db"), cfg.Journal.Path)
}
