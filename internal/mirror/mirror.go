// Package mirror keeps a converted copy of a GitBook-synced repository fresh
// by syncing and converting it on a schedule.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/git"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/metrics"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/retry"
)

const jobName = "mirror-sync"

// Syncer brings the local clone up to date.
type Syncer interface {
	Sync(ctx context.Context) (git.SyncResult, error)
}

// ConvertFunc converts the GitBook tree rooted at source.
type ConvertFunc func(ctx context.Context, source string) error

// Mirror ties a Syncer to a conversion.
type Mirror struct {
	syncer   Syncer
	subdir   string
	convert  ConvertFunc
	recorder metrics.Recorder
	retry    retry.Policy

	mu        sync.Mutex
	converted string // commit of the last successful conversion
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithRetry retries retryable sync failures within one run. Without it a
// failed sync waits for the next tick.
func WithRetry(p retry.Policy) Option {
	return func(m *Mirror) { m.retry = p }
}

// New returns a Mirror. subdir is the GitBook root inside the repository.
func New(syncer Syncer, subdir string, convert ConvertFunc, recorder metrics.Recorder, opts ...Option) *Mirror {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	m := &Mirror{syncer: syncer, subdir: subdir, convert: convert, recorder: recorder}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunOnce syncs and, when the commit differs from the last conversion,
// converts.
func (m *Mirror) RunOnce(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res git.SyncResult
	err := m.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = m.syncer.Sync(ctx)
		if err != nil && retry.Retryable(err) {
			slog.Debug("Sync attempt failed", logfields.Error(err))
		}
		return err
	})
	if err != nil {
		m.recorder.IncMirrorSync(false)
		return err
	}
	if res.Commit != "" && res.Commit == m.converted {
		m.recorder.IncMirrorSync(true)
		slog.Debug("Mirror unchanged", slog.String("commit", res.Commit))
		return nil
	}

	source := res.Path
	if m.subdir != "" {
		source = filepath.Join(res.Path, filepath.FromSlash(m.subdir))
	}
	if err := m.convert(ctx, source); err != nil {
		m.recorder.IncMirrorSync(false)
		return err
	}
	m.converted = res.Commit
	m.recorder.IncMirrorSync(true)
	return nil
}

// Run calls RunOnce immediately and then every interval until ctx is
// canceled. Runs never overlap; failures are logged and retried at the next
// tick.
func (m *Mirror) Run(ctx context.Context, interval time.Duration) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			if err := m.RunOnce(ctx); err != nil {
				slog.Error("Mirror sync failed", logfields.ScheduleName(jobName), logfields.Error(err))
				return
			}
			slog.Debug("Mirror sync finished", logfields.ScheduleName(jobName),
				logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create mirror job: %w", err)
	}

	slog.Info("Starting mirror schedule", logfields.ScheduleName(jobName), slog.Duration("interval", interval))
	s.Start()
	<-ctx.Done()
	slog.Info("Stopping mirror schedule", logfields.ScheduleName(jobName))
	return s.Shutdown()
}
