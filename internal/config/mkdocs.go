package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
)

// MkDocs defaults for docs_dir and site_dir.
const (
	DefaultDocsDir = "docs"
	DefaultSiteDir = "site"
)

// BuildConfig is the host build configuration the lifecycle hooks receive.
// DocsDir and SiteDir are absolute or relative to the working directory.
type BuildConfig struct {
	ConfigFile string
	DocsDir    string
	SiteDir    string
}

// AssetSourceDir returns <docs_dir>/<source>.
func (b BuildConfig) AssetSourceDir(assets AssetsConfig) string {
	return filepath.Join(b.DocsDir, filepath.FromSlash(assets.Source))
}

// AssetAliasDir returns <docs_dir>/<alias>.
func (b BuildConfig) AssetAliasDir(assets AssetsConfig) string {
	return filepath.Join(b.DocsDir, filepath.FromSlash(assets.Alias))
}

// SiteAssetDir returns <site_dir>/<alias>.
func (b BuildConfig) SiteAssetDir(assets AssetsConfig) string {
	return filepath.Join(b.SiteDir, filepath.FromSlash(assets.Alias))
}

// ReadMkDocs reads docs_dir and site_dir from an mkdocs.yml, resolving them
// against the file's directory. Other keys are not interpreted, so files that
// carry !!python tags still load.
func ReadMkDocs(path string) (BuildConfig, error) {
	// #nosec G304 -- mkdocs.yml path is provided by the operator
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return BuildConfig{}, errors.NewError(errors.CategoryNotFound, "mkdocs configuration not found").
			WithContext("path", path).
			Build()
	}
	if err != nil {
		return BuildConfig{}, errors.WrapError(err, errors.CategoryConfig, "read mkdocs configuration").
			WithContext("path", path).
			Build()
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return BuildConfig{}, errors.WrapError(err, errors.CategoryConfig, "parse mkdocs configuration").
			WithContext("path", path).
			Fatal().
			Build()
	}

	docsDir := DefaultDocsDir
	siteDir := DefaultSiteDir
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		root := doc.Content[0]
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			if val.Kind != yaml.ScalarNode || val.Value == "" {
				continue
			}
			switch key.Value {
			case "docs_dir":
				docsDir = val.Value
			case "site_dir":
				siteDir = val.Value
			}
		}
	}

	base := filepath.Dir(path)
	return BuildConfig{
		ConfigFile: path,
		DocsDir:    resolve(base, docsDir),
		SiteDir:    resolve(base, siteDir),
	}, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
