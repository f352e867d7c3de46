// Package convert turns a GitBook tree into an MkDocs docs tree by driving
// the plugin lifecycle over every page.
package convert

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/assets"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/eventstore"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/fingerprint"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/metrics"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/plugin"
)

// Result summarizes one conversion.
type Result struct {
	Translated int
	Skipped    int
	Copied     int
	Removed    int
	Duration   time.Duration
}

// Pages returns translated plus skipped pages.
func (r Result) Pages() int { return r.Translated + r.Skipped }

// Converter translates trees. It is safe to reuse across runs but not for
// concurrent runs over the same output.
type Converter struct {
	runner      *plugin.Runner
	store       eventstore.Store
	recorder    metrics.Recorder
	workers     int
	incremental bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithWorkers bounds the number of pages processed at once.
func WithWorkers(n int) Option {
	return func(c *Converter) { c.workers = n }
}

// WithIncremental skips pages whose source fingerprint matches the journal
// and whose output exists. It needs a store.
func WithIncremental(store eventstore.Store) Option {
	return func(c *Converter) {
		c.store = store
		c.incremental = store != nil
	}
}

// WithRecorder records skipped and copied files.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Converter) { c.recorder = r }
}

// New returns a Converter that runs pages through runner.
func New(runner *plugin.Runner, opts ...Option) *Converter {
	c := &Converter{runner: runner, workers: runtime.NumCPU(), recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	if c.recorder == nil {
		c.recorder = metrics.NoopRecorder{}
	}
	return c
}

// Convert translates the whole tree at pc.Build.DocsDir into pc.Build.SiteDir.
func (c *Converter) Convert(ctx context.Context, pc *plugin.PluginContext) (Result, error) {
	files, err := c.collect(pc)
	if err != nil {
		return Result{}, err
	}
	return c.run(ctx, pc, files, nil)
}

// Update converts only the given paths, relative to the source root. Paths
// that no longer exist are removed from the output.
func (c *Converter) Update(ctx context.Context, pc *plugin.PluginContext, paths []string) (Result, error) {
	var files, gone []string
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		rel := filepath.ToSlash(filepath.Clean(p))
		if seen[rel] || rel == "." || strings.HasPrefix(rel, "../") || c.excluded(pc, rel) {
			continue
		}
		seen[rel] = true

		info, err := os.Stat(filepath.Join(pc.Build.DocsDir, filepath.FromSlash(rel)))
		switch {
		case os.IsNotExist(err):
			gone = append(gone, rel)
		case err != nil:
			return Result{}, fsError(err, "stat source file", rel)
		case info.Mode().IsRegular():
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	sort.Strings(gone)
	return c.run(ctx, pc, files, gone)
}

func (c *Converter) run(ctx context.Context, pc *plugin.PluginContext, files, gone []string) (Result, error) {
	start := time.Now()
	if err := os.MkdirAll(pc.Build.SiteDir, 0o750); err != nil {
		return Result{}, fsError(err, "create output directory", pc.Build.SiteDir)
	}
	if err := c.runner.PreBuild(ctx, pc); err != nil {
		return Result{}, err
	}
	finished := false
	defer func() {
		if !finished {
			c.dropAlias(pc)
		}
	}()

	var translated, skipped, copied atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !isMarkdown(rel) {
				if err := c.copy(pc, rel); err != nil {
					c.recorder.IncPage(metrics.ResultFailed)
					return err
				}
				c.recorder.IncPage(metrics.ResultCopied)
				copied.Add(1)
				return nil
			}
			done, err := c.page(gctx, pc, rel)
			if err != nil {
				c.recorder.IncPage(metrics.ResultFailed)
				return err
			}
			if done {
				translated.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	removed := 0
	for _, rel := range gone {
		err := os.Remove(filepath.Join(pc.Build.SiteDir, filepath.FromSlash(rel)))
		if err != nil && !os.IsNotExist(err) {
			return Result{}, fsError(err, "remove output file", rel)
		}
		if err == nil {
			removed++
		}
	}

	if err := c.runner.PostBuild(ctx, pc); err != nil {
		return Result{}, err
	}
	finished = true

	res := Result{
		Translated: int(translated.Load()),
		Skipped:    int(skipped.Load()),
		Copied:     int(copied.Load()),
		Removed:    removed,
		Duration:   time.Since(start),
	}
	pc.Logger.Info("Converted tree",
		logfields.Path(pc.Build.SiteDir),
		logfields.Pages(res.Translated),
		logfields.Skipped(res.Skipped),
		logfields.Workers(c.workers),
		logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res, nil
}

// page translates one markdown file. It returns false when the page was
// skipped as unchanged.
func (c *Converter) page(ctx context.Context, pc *plugin.PluginContext, rel string) (bool, error) {
	src := filepath.Join(pc.Build.DocsDir, filepath.FromSlash(rel))
	dst := filepath.Join(pc.Build.SiteDir, filepath.FromSlash(rel))

	// #nosec G304 -- path comes from walking the configured source tree
	data, err := os.ReadFile(src)
	if err != nil {
		return false, fsError(err, "read page", rel)
	}

	if c.incremental {
		if unchanged, fp := c.unchanged(ctx, pc, rel, data, dst); unchanged {
			c.recorder.IncPage(metrics.ResultSkipped)
			c.journalSkip(ctx, pc, rel, fp)
			pc.Logger.Debug("Page unchanged", logfields.Page(rel))
			return false, nil
		}
	}

	out := c.runner.Page(ctx, pc, string(data), rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return false, fsError(err, "create output directory", rel)
	}
	if err := os.WriteFile(dst, []byte(out), 0o600); err != nil {
		return false, errors.WrapError(err, errors.CategoryTranslate, "write translated page").
			WithContext("page", rel).
			Build()
	}
	return true, nil
}

func (c *Converter) unchanged(ctx context.Context, pc *plugin.PluginContext, rel string, data []byte, dst string) (bool, string) {
	fp, err := fingerprint.Page(data)
	if err != nil {
		return false, ""
	}
	if _, err := os.Stat(dst); err != nil {
		return false, fp
	}
	last, found, err := c.store.LastPageFingerprint(ctx, pc.PageOutput(rel))
	if err != nil {
		pc.Logger.Warn("Journal lookup failed", logfields.Page(rel), logfields.Error(err))
		return false, fp
	}
	return found && last == fp, fp
}

// dropAlias removes the asset alias left in the source tree by a build that
// failed before its post-build hook ran.
func (c *Converter) dropAlias(pc *plugin.PluginContext) {
	removed, err := assets.RemoveAlias(pc.AssetAliasDir())
	if err != nil {
		pc.Logger.Warn("Failed to remove asset alias", logfields.Path(pc.AssetAliasDir()), logfields.Error(err))
		return
	}
	if removed {
		pc.Logger.Debug("Removed asset alias after failed build", logfields.Path(pc.AssetAliasDir()))
	}
}

func (c *Converter) journalSkip(ctx context.Context, pc *plugin.PluginContext, rel, fp string) {
	e, err := eventstore.NewPageSkipped(pc.BuildID, eventstore.PageSkipped{
		Page:        rel,
		Fingerprint: fp,
		Output:      pc.PageOutput(rel),
	})
	if err == nil {
		err = c.store.Append(ctx, e)
	}
	if err != nil {
		pc.Logger.Warn("Failed to journal event", logfields.Page(rel), logfields.Error(err))
	}
}

func (c *Converter) copy(pc *plugin.PluginContext, rel string) error {
	dst := filepath.Join(pc.Build.SiteDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fsError(err, "create output directory", rel)
	}
	if err := assets.CopyFile(filepath.Join(pc.Build.DocsDir, filepath.FromSlash(rel)), dst); err != nil {
		return fsError(err, "copy file", rel)
	}
	return nil
}

// collect lists regular files below the source root in lexical order,
// leaving out the asset directory and its alias (published by post-build)
// and the output directory when it is nested in the source.
func (c *Converter) collect(pc *plugin.PluginContext) ([]string, error) {
	root := pc.Build.DocsDir
	if _, err := os.Stat(root); err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotFound, "source tree not found").
			WithContext("path", root).
			Build()
	}
	output, _ := filepath.Abs(pc.Build.SiteDir)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if abs, _ := filepath.Abs(path); abs == output || c.excluded(pc, rel) || rel == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || c.excluded(pc, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fsError(err, "walk source tree", root)
	}
	return files, nil
}

func (c *Converter) excluded(pc *plugin.PluginContext, rel string) bool {
	for _, dir := range []string{pc.Assets.Source, pc.Assets.Alias} {
		dir = strings.Trim(filepath.ToSlash(filepath.Clean(dir)), "/")
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

func isMarkdown(rel string) bool {
	return strings.EqualFold(filepath.Ext(rel), ".md")
}

func fsError(err error, message, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, message).
		WithContext("path", path).
		Build()
}
