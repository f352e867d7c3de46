// Package plugin defines the lifecycle contract a host documentation build
// drives: one pre-build call, one call per page, one post-build call.
package plugin

import (
	"context"
	"fmt"
	"regexp"
)

// Hooks is the three-method lifecycle a plugin implements.
type Hooks interface {
	// Metadata returns the plugin's identity.
	Metadata() PluginMetadata

	// OnPreBuild runs once before any page is processed.
	OnPreBuild(ctx context.Context, pc *PluginContext) error

	// OnPageMarkdown returns the rewritten markdown of one page. page is the
	// path relative to the docs root. It may be called concurrently.
	OnPageMarkdown(ctx context.Context, pc *PluginContext, markdown, page string) string

	// OnPostBuild runs once after the site has been written.
	OnPostBuild(ctx context.Context, pc *PluginContext) error
}

// PluginMetadata describes a plugin.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g. "gitbook").
	Name string

	// Version is the semantic version (e.g. "v1.0.0").
	Version string

	// Description provides a human-readable summary.
	Description string
}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s", m.Name, m.Version)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("invalid plugin name: %s", m.Name)
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	return nil
}

// BaseHooks provides no-op lifecycle methods. Plugins embed it and override
// the hooks they need.
type BaseHooks struct{}

// OnPreBuild is a no-op.
func (BaseHooks) OnPreBuild(context.Context, *PluginContext) error { return nil }

// OnPageMarkdown returns markdown unchanged.
func (BaseHooks) OnPageMarkdown(_ context.Context, _ *PluginContext, markdown, _ string) string {
	return markdown
}

// OnPostBuild is a no-op.
func (BaseHooks) OnPostBuild(context.Context, *PluginContext) error { return nil }
