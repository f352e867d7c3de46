package plugin

import (
	"context"
	"time"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/metrics"
)

// Runner drives every registered plugin through the lifecycle in
// registration order.
type Runner struct {
	registry *Registry
	recorder metrics.Recorder
}

// NewRunner returns a Runner over registry. A nil recorder disables metrics.
func NewRunner(registry *Registry, recorder metrics.Recorder) *Runner {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Runner{registry: registry, recorder: recorder}
}

// PreBuild runs OnPreBuild on each plugin and stops at the first failure.
func (r *Runner) PreBuild(ctx context.Context, pc *PluginContext) error {
	for _, p := range r.registry.List() {
		if err := r.run(ctx, pc, p, HookPreBuild, p.OnPreBuild); err != nil {
			return err
		}
	}
	return nil
}

// Page passes markdown through each plugin's OnPageMarkdown in turn.
func (r *Runner) Page(ctx context.Context, pc *PluginContext, markdown, page string) string {
	for _, p := range r.registry.List() {
		start := time.Now()
		markdown = p.OnPageMarkdown(ctx, pc, markdown, page)
		r.recorder.ObserveHookDuration(HookPage, time.Since(start), true)
	}
	return markdown
}

// PostBuild runs OnPostBuild on each plugin and stops at the first failure.
func (r *Runner) PostBuild(ctx context.Context, pc *PluginContext) error {
	for _, p := range r.registry.List() {
		if err := r.run(ctx, pc, p, HookPostBuild, p.OnPostBuild); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, pc *PluginContext, p Hooks, hook string, fn func(context.Context, *PluginContext) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := p.Metadata().Name
	start := time.Now()
	err := fn(ctx, pc)
	elapsed := time.Since(start)
	r.recorder.ObserveHookDuration(hook, elapsed, err == nil)

	if err != nil {
		pc.Logger.Error("Hook failed",
			logfields.Hook(hook),
			"plugin", name,
			logfields.Error(err))
		return errors.WrapError(NewPluginError(name, hook, err), errors.CategoryHook, hook+" hook failed").
			Fatal().
			WithContext("plugin", name).
			WithContext("hook", hook).
			Build()
	}

	pc.Logger.Debug("Hook finished",
		logfields.Hook(hook),
		"plugin", name,
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}
