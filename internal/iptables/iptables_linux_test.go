//go:build linux
// +build linux

package iptables

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/iptx/internal/execlock"
)

// oldVersion probes as 1.4.7: no -C, no --wait, so every invocation
// goes through the advisory lock.
const oldVersion = "iptables v1.4.7"

func lockedTestConfig() execlock.AcquireConfig {
	return execlock.AcquireConfig{
		MaxAttempts:   2000,
		InitialDelay:  100 * time.Microsecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestAdvisoryModeOmitsWaitFlag(t *testing.T) {
	runner := newMockRunner(t, oldVersion)
	runner.On("Exec", CmdIPv4, "-t", "filter", "-A", "INPUT", "-j", "ACCEPT").
		Return(Result{Success: true}, nil)

	ipt, err := New(
		WithRunner(runner),
		WithLockPath(filepath.Join(t.TempDir(), "xtables.lock")),
		WithLockConfig(lockedTestConfig()),
	)
	require.NoError(t, err)
	assert.False(t, ipt.Capabilities().HasWait)

	ok, err := ipt.Append("filter", "INPUT", "-j", "ACCEPT")
	require.NoError(t, err)
	assert.True(t, ok)
	runner.AssertExpectations(t)
}

func TestExistsLegacyScansListing(t *testing.T) {
	listing := "-P INPUT ACCEPT\n-A INPUT -i lo -j ACCEPT\n-A INPUT -p tcp --dport 22 -j ACCEPT\n"
	runner := newMockRunner(t, oldVersion)
	runner.On("Exec", CmdIPv4, "-t", "filter", "-S").
		Return(Result{Success: true, Stdout: []byte(listing)}, nil)

	ipt, err := New(
		WithRunner(runner),
		WithLockPath(filepath.Join(t.TempDir(), "xtables.lock")),
		WithLockConfig(lockedTestConfig()),
	)
	require.NoError(t, err)

	exists, err := ipt.Exists("filter", "INPUT", "-i", "lo", "-j", "ACCEPT")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = ipt.Exists("filter", "INPUT", "-i", "eth0", "-j", "DROP")
	require.NoError(t, err)
	assert.False(t, exists)
}

// The lock must be free again after every outcome, including a spawn
// failure: a subsequent acquisition must not hang.
func TestLockReleasedAfterSpawnFailure(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "xtables.lock")

	runner := newMockRunner(t, oldVersion)
	runner.On("Exec", CmdIPv4, "-t", "filter", "-F").
		Return(Result{}, errors.New("permission denied"))

	ipt, err := New(
		WithRunner(runner),
		WithLockPath(lockPath),
		WithLockConfig(lockedTestConfig()),
	)
	require.NoError(t, err)

	_, err = ipt.FlushTable("filter")
	require.Error(t, err)

	probe := execlock.New(lockPath)
	cfg := execlock.AcquireConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	require.NoError(t, probe.Acquire(context.Background(), cfg), "lock still held after spawn failure")
	require.NoError(t, probe.Release())
}

func TestLockFailureSurfaces(t *testing.T) {
	runner := newMockRunner(t, oldVersion)

	// Lock path in a nonexistent directory: acquisition fails with a
	// non-contention error before any subprocess is launched.
	ipt, err := New(
		WithRunner(runner),
		WithLockPath(filepath.Join(t.TempDir(), "missing", "xtables.lock")),
		WithLockConfig(lockedTestConfig()),
	)
	require.NoError(t, err)

	_, err = ipt.FlushTable("filter")
	require.Error(t, err)
	assert.False(t, errors.Is(err, execlock.ErrContended))
	runner.AssertNotCalled(t, "Exec", CmdIPv4, "-t", "filter", "-F")
}

// overlapRunner records how many Exec calls run concurrently.
type overlapRunner struct {
	mu        sync.Mutex
	active    int
	maxActive int
	calls     int
}

func (r *overlapRunner) Exec(name string, args ...string) (Result, error) {
	r.mu.Lock()
	r.active++
	if r.active > r.maxActive {
		r.maxActive = r.active
	}
	r.calls++
	r.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return Result{Success: true}, nil
}

func (r *overlapRunner) Output(name string, args ...string) ([]byte, error) {
	return []byte(oldVersion), nil
}

// Two handles sharing one lock file must never run their subprocesses
// with overlapping lifetimes.
func TestConcurrentInvocationsSerialized(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "xtables.lock")
	runner := &overlapRunner{}

	newHandle := func() *IPTables {
		ipt, err := New(
			WithRunner(runner),
			WithLockPath(lockPath),
			WithLockConfig(lockedTestConfig()),
		)
		require.NoError(t, err)
		return ipt
	}

	a, b := newHandle(), newHandle()

	const perHandle = 5
	var wg sync.WaitGroup
	for _, ipt := range []*IPTables{a, b} {
		wg.Add(1)
		go func(ipt *IPTables) {
			defer wg.Done()
			for i := 0; i < perHandle; i++ {
				_, err := ipt.Append("filter", "INPUT", "-j", "ACCEPT")
				assert.NoError(t, err)
			}
		}(ipt)
	}
	wg.Wait()

	assert.Equal(t, 2*perHandle, runner.calls)
	assert.Equal(t, 1, runner.maxActive, "subprocess lifetimes overlapped")
}
