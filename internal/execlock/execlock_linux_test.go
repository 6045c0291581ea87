//go:build linux
// +build linux

package execlock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() AcquireConfig {
	return AcquireConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	l := New(path)

	require.NoError(t, l.Acquire(context.Background(), testConfig()))
	require.NoError(t, l.Release())

	// Reacquirable after release.
	require.NoError(t, l.Acquire(context.Background(), testConfig()))
	require.NoError(t, l.Release())
}

func TestAcquireContended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	holder := New(path)
	require.NoError(t, holder.Acquire(context.Background(), testConfig()))
	defer holder.Release()

	// flock is per open file description, so a second handle on the
	// same path contends even within one process.
	waiter := New(path)
	err := waiter.Acquire(context.Background(), testConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContended), "got %v", err)
}

func TestAcquireAfterHolderReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	holder := New(path)
	require.NoError(t, holder.Acquire(context.Background(), testConfig()))

	done := make(chan error, 1)
	go func() {
		waiter := New(path)
		cfg := testConfig()
		cfg.MaxAttempts = 500
		err := waiter.Acquire(context.Background(), cfg)
		if err == nil {
			waiter.Release()
		}
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, holder.Release())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}

func TestAcquireUnbounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	holder := New(path)
	require.NoError(t, holder.Acquire(context.Background(), testConfig()))

	done := make(chan error, 1)
	go func() {
		waiter := New(path)
		err := waiter.Acquire(context.Background(), AcquireConfig{Unbounded: true})
		if err == nil {
			waiter.Release()
		}
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, holder.Release())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("unbounded waiter never acquired the lock")
	}
}

func TestAcquireContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	holder := New(path)
	require.NoError(t, holder.Acquire(context.Background(), testConfig()))
	defer holder.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	waiter := New(path)
	cfg := testConfig()
	cfg.MaxAttempts = 1 << 30
	cfg.MaxDelay = time.Millisecond

	err := waiter.Acquire(ctx, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestAcquireOpenFailure(t *testing.T) {
	// Lock path inside a nonexistent directory: open fails with a
	// non-contention error that must not be retried.
	l := New(filepath.Join(t.TempDir(), "missing", "test.lock"))
	err := l.Acquire(context.Background(), testConfig())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrContended))
}

func TestReleaseWithoutAcquire(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "test.lock"))
	require.NoError(t, l.Release())
}

func TestBackoffDelayCapped(t *testing.T) {
	cfg := testConfig()
	cfg.Jitter = false

	assert.Equal(t, time.Millisecond, backoffDelay(0, cfg))
	assert.Equal(t, 2*time.Millisecond, backoffDelay(1, cfg))
	assert.Equal(t, 4*time.Millisecond, backoffDelay(2, cfg))
	// Capped at MaxDelay from here on.
	assert.Equal(t, 5*time.Millisecond, backoffDelay(10, cfg))
	assert.Equal(t, 5*time.Millisecond, backoffDelay(60, cfg))
}
