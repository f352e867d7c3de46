// Package config loads gitbook2mkdocs settings and the host MkDocs build configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/retry"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "gitbook2mkdocs.yaml"

// Config is the gitbook2mkdocs configuration file.
type Config struct {
	// MkDocsConfig points to the host's mkdocs.yml; docs_dir and site_dir come from it.
	MkDocsConfig string          `yaml:"mkdocs_config"`
	Assets       AssetsConfig    `yaml:"assets"`
	Translate    TranslateConfig `yaml:"translate"`
	Convert      ConvertConfig   `yaml:"convert"`
	Journal      JournalConfig   `yaml:"journal"`
	Metrics      MetricsConfig   `yaml:"metrics"`
	Audit        AuditConfig     `yaml:"audit"`
	Watch        WatchConfig     `yaml:"watch"`
	Mirror       MirrorConfig    `yaml:"mirror"`
}

// AssetsConfig names the GitBook asset directory and the alias it is served under.
// Both are relative to the docs root.
type AssetsConfig struct {
	Source string `yaml:"source"`
	Alias  string `yaml:"alias"`
}

// TranslateConfig tunes the page translator.
type TranslateConfig struct {
	Skip []string `yaml:"skip,omitempty"` // pass names to disable
}

// ConvertConfig controls whole-tree conversion.
type ConvertConfig struct {
	Source      string `yaml:"source,omitempty"` // GitBook tree
	Output      string `yaml:"output,omitempty"` // MkDocs docs tree
	Workers     int    `yaml:"workers"`
	Incremental bool   `yaml:"incremental"`
}

// JournalConfig locates the sqlite build journal. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MetricsConfig enables the Prometheus textfile written after each build.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// AuditConfig enables post-translation checks.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// MirrorConfig describes a GitBook-synced repository converted on a schedule.
type MirrorConfig struct {
	URL       string `yaml:"url,omitempty"`
	Branch    string `yaml:"branch,omitempty"`
	Subdir    string `yaml:"subdir,omitempty"` // GitBook root inside the repository
	Token     string `yaml:"token,omitempty"`
	Interval  string `yaml:"interval,omitempty"`
	Depth     int    `yaml:"depth"`
	Workspace string `yaml:"workspace,omitempty"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig controls retries of a failed sync within one mirror run.
type RetryConfig struct {
	Backoff    string `yaml:"backoff"` // fixed, linear or exponential
	Initial    string `yaml:"initial"`
	Max        string `yaml:"max"`
	MaxRetries int    `yaml:"max_retries"` // negative disables retries
}

// Policy returns the retry policy the settings describe.
func (r RetryConfig) Policy() retry.Policy {
	initial, _ := time.ParseDuration(r.Initial)
	maxDelay, _ := time.ParseDuration(r.Max)
	return retry.NewPolicy(retry.BackoffMode(r.Backoff), initial, maxDelay, r.MaxRetries)
}

// DebounceDuration returns the parsed watch debounce. Validate guarantees it parses.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return defaultDebounce
	}
	return d
}

// IntervalDuration returns the parsed mirror interval. Validate guarantees it parses.
func (m MirrorConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(m.Interval)
	if err != nil {
		return defaultMirrorInterval
	}
	return d
}

// Enabled reports whether a mirror repository is configured.
func (m MirrorConfig) Enabled() bool { return m.URL != "" }

// Load reads configPath, expanding ${VAR} references after loading .env files,
// then applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	// #nosec G304 -- configuration path is provided by the operator
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration").
			WithContext("path", configPath).
			Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse configuration").
			WithContext("path", configPath).
			Fatal().
			Build()
	}

	baseDir := filepath.Dir(configPath)
	cfg.resolvePaths(baseDir)
	cfg.ApplyDefaults(baseDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configPath when it exists and otherwise returns defaults.
// It lets the hooks run with zero configuration next to a plain mkdocs.yml.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultFile
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Debug("No configuration file, using defaults", logfields.Path(configPath))
		loadEnvFiles()
		return Default(), nil
	}
	return Load(configPath)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults(".")
	return cfg
}

// resolvePaths makes file paths in the configuration relative to its directory.
func (c *Config) resolvePaths(baseDir string) {
	for _, p := range []*string{
		&c.MkDocsConfig,
		&c.Convert.Source,
		&c.Convert.Output,
		&c.Journal.Path,
		&c.Metrics.Textfile,
		&c.Mirror.Workspace,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}

// loadEnvFiles loads .env then .env.local when present. Existing process
// variables are never overridden.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(name))
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const exampleConfig = `# gitbook2mkdocs configuration
mkdocs_config: mkdocs.yml

assets:
  source: .gitbook/assets
  alias: gbassets

translate:
  # Pass names to disable (see: gitbook2mkdocs passes)
  skip: []

convert:
  source: gitbook
  output: docs
  workers: 4
  incremental: true

journal:
  path: .gitbook2mkdocs/journal.db

metrics:
  # Prometheus textfile written after each build
  textfile: ""

audit:
  enabled: true

watch:
  debounce: 500ms

mirror:
  url: ""
  branch: main
  subdir: ""
  token: ${GITBOOK_SYNC_TOKEN}
  interval: 15m
  depth: 1
  workspace: .gitbook2mkdocs/mirror
  retry:
    backoff: linear
    initial: 1s
    max: 30s
    max_retries: 2
`
