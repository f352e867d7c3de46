package mirror

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/git"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/metrics"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/retry"
)

type fakeSyncer struct {
	mu      sync.Mutex
	commits []string
	err     error
	calls   int
}

func (f *fakeSyncer) Sync(context.Context) (git.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return git.SyncResult{}, f.err
	}
	commit := f.commits[0]
	if len(f.commits) > 1 {
		f.commits = f.commits[1:]
	}
	return git.SyncResult{Path: "/mirror", Commit: commit, Changed: true}, nil
}

type countingRecorder struct {
	metrics.NoopRecorder
	ok, failed atomic.Int32
}

func (r *countingRecorder) IncMirrorSync(success bool) {
	if success {
		r.ok.Add(1)
	} else {
		r.failed.Add(1)
	}
}

func TestRunOnce_ConvertsOnlyNewCommits(t *testing.T) {
	syncer := &fakeSyncer{commits: []string{"aaa", "aaa", "bbb"}}
	var sources []string
	m := New(syncer, "docs", func(_ context.Context, source string) error {
		sources = append(sources, source)
		return nil
	}, nil)

	ctx := context.Background()
	for range 3 {
		require.NoError(t, m.RunOnce(ctx))
	}

	assert.Equal(t, []string{filepath.Join("/mirror", "docs"), filepath.Join("/mirror", "docs")}, sources)
	assert.Equal(t, 3, syncer.calls)
}

func TestRunOnce_Failures(t *testing.T) {
	cause := stderrors.New("offline")
	syncer := &fakeSyncer{err: cause}
	recorder := &countingRecorder{}
	m := New(syncer, "", func(context.Context, string) error { return nil }, recorder)
	assert.ErrorIs(t, m.RunOnce(context.Background()), cause)
	assert.Equal(t, int32(1), recorder.failed.Load())
	assert.Equal(t, int32(0), recorder.ok.Load())

	convertErr := stderrors.New("bad page")
	attempts := 0
	m = New(&fakeSyncer{commits: []string{"aaa"}}, "", func(context.Context, string) error {
		attempts++
		return convertErr
	}, nil)
	assert.ErrorIs(t, m.RunOnce(context.Background()), convertErr)
	assert.ErrorIs(t, m.RunOnce(context.Background()), convertErr, "failed commit is retried")
	assert.Equal(t, 2, attempts)
}

func TestRun_StartsImmediately(t *testing.T) {
	syncer := &fakeSyncer{commits: []string{"aaa"}}
	converted := make(chan string, 1)
	m := New(syncer, "", func(_ context.Context, source string) error {
		select {
		case converted <- source:
		default:
		}
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Hour) }()

	select {
	case source := <-converted:
		assert.Equal(t, "/mirror", source)
	case <-time.After(5 * time.Second):
		t.Fatal("mirror did not run at start")
	}
	cancel()
	assert.NoError(t, <-done)
}

type flakySyncer struct {
	failures int
	calls    int
}

func (f *flakySyncer) Sync(context.Context) (git.SyncResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return git.SyncResult{}, errors.GitError("git fetch failed").Retryable().Build()
	}
	return git.SyncResult{Path: "/mirror", Commit: "abc"}, nil
}

func TestRunOnce_RetriesTransientSyncFailures(t *testing.T) {
	syncer := &flakySyncer{failures: 2}
	rec := &countingRecorder{}
	converted := 0
	m := New(syncer, "", func(context.Context, string) error {
		converted++
		return nil
	}, rec, WithRetry(retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 2)))

	require.NoError(t, m.RunOnce(context.Background()))
	assert.Equal(t, 3, syncer.calls)
	assert.Equal(t, 1, converted)
	assert.Equal(t, int32(1), rec.ok.Load())
}

func TestRunOnce_NoRetryWithoutPolicy(t *testing.T) {
	syncer := &flakySyncer{failures: 1}
	m := New(syncer, "", func(context.Context, string) error { return nil }, nil)

	require.Error(t, m.RunOnce(context.Background()))
	assert.Equal(t, 1, syncer.calls)
}
