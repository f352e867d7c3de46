package translator

import (
	"fmt"
	"path"
	"strings"
)

const (
	assetPathsName = "asset_paths"

	// DefaultAssetSource is the GitBook asset directory, relative to the docs root.
	DefaultAssetSource = ".gitbook/assets"

	// DefaultAssetAlias is the directory name assets are served from after translation.
	DefaultAssetAlias = "gbassets"
)

// assetPathsPass replaces every literal "<source>/" with "<alias>/".
type assetPathsPass struct {
	from string
	to   string
}

func newAssetPathsPass(source, alias string) (assetPathsPass, error) {
	if source == "" {
		source = DefaultAssetSource
	}
	if alias == "" {
		alias = DefaultAssetAlias
	}
	source = strings.Trim(path.Clean(source), "/")
	alias = strings.Trim(path.Clean(alias), "/")
	if source == "" || source == "." || alias == "" || alias == "." {
		return assetPathsPass{}, fmt.Errorf("asset source and alias must name a directory")
	}
	return assetPathsPass{from: source + "/", to: alias + "/"}, nil
}

func (assetPathsPass) Name() string     { return assetPathsName }
func (assetPathsPass) Stage() PassStage { return StageAssets }

func (assetPathsPass) Dependencies() PassDependencies {
	return PassDependencies{
		MustRunAfter: []string{figuresName},
	}
}

func (p assetPathsPass) Apply(text string) (string, int) {
	n := strings.Count(text, p.from)
	if n == 0 {
		return text, 0
	}
	return strings.ReplaceAll(text, p.from, p.to), n
}

// RewriteAssetPaths replaces every ".gitbook/assets/" with "gbassets/".
func RewriteAssetPaths(text string) string {
	out, _ := defaultAssetPaths.Apply(text)
	return out
}

var defaultAssetPaths = assetPathsPass{
	from: DefaultAssetSource + "/",
	to:   DefaultAssetAlias + "/",
}

func init() {
	Register(defaultAssetPaths)
}
