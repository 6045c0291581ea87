// Package execlock provides the cross-process advisory lock that
// serializes xtables invocations when the binary has no --wait flag.
//
// The lock file is never read or written; its existence and flock state
// are the entire protocol. Only processes honoring the same convention
// are excluded. The kernel drops the lock when the holding process dies,
// so a crashed holder cannot wedge the system.
package execlock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"time"

	"grimm.is/iptx/internal/clock"
	"grimm.is/iptx/internal/logging"
)

// ErrContended is returned by a single acquisition attempt when another
// process currently holds the lock. Acquire retries it; every other
// error is fatal.
var ErrContended = errors.New("lock held by another process")

// AcquireConfig controls the busy-retry behavior of Acquire.
//
// The historical behavior is an unbounded tight loop with no backoff,
// which risks starving under heavy contention. The default here is a
// bounded retry with exponential backoff and jitter; set Unbounded for
// strict compatibility with the old loop.
type AcquireConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool

	// Unbounded retries forever with no delay, yielding the processor
	// between attempts. MaxAttempts and the backoff fields are ignored.
	Unbounded bool
}

// DefaultAcquireConfig returns the bounded backoff defaults.
func DefaultAcquireConfig() AcquireConfig {
	return AcquireConfig{
		MaxAttempts:   200,
		InitialDelay:  time.Millisecond,
		MaxDelay:      250 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Lock is an exclusive advisory lock backed by a well-known file.
// A Lock serializes one invocation at a time: Acquire immediately before
// the subprocess launch, Release immediately after it terminates.
type Lock struct {
	path   string
	f      *os.File
	clk    clock.Clock
	logger *logging.Logger
}

// New creates a lock on the given file path. The file is created on
// first acquisition if absent and is never deleted.
func New(path string) *Lock {
	return &Lock{
		path:   path,
		clk:    &clock.RealClock{},
		logger: logging.WithComponent("execlock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the exclusive lock, retrying contended attempts per cfg.
// A contended attempt is one failing with EWOULDBLOCK or EINTR; any
// other error aborts immediately. On success the caller must Release.
func (l *Lock) Acquire(ctx context.Context, cfg AcquireConfig) error {
	start := l.clk.Now()

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := l.tryAcquire()
		if err == nil {
			if attempt > 0 {
				l.logger.Debug("lock acquired after contention",
					"path", l.path, "attempts", attempt+1, "waited", l.clk.Since(start))
			}
			return nil
		}
		if !errors.Is(err, ErrContended) {
			return fmt.Errorf("lock %s: %w", l.path, err)
		}

		if cfg.Unbounded {
			// Historical tight loop. Yield so a spinning waiter does
			// not peg a core while the holder runs.
			runtime.Gosched()
			continue
		}

		if attempt+1 >= cfg.MaxAttempts {
			return fmt.Errorf("lock %s: %w after %d attempts", l.path, ErrContended, attempt+1)
		}

		delay := backoffDelay(attempt, cfg)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Release drops the lock and closes the underlying file. Safe to call
// when the lock is not held.
func (l *Lock) Release() error {
	return l.release()
}

func backoffDelay(attempt int, cfg AcquireConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))

	if cfg.Jitter {
		// Up to 25% jitter so synchronized waiters spread out.
		delay += delay * 0.25 * rand.Float64()
	}

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	return time.Duration(delay)
}
