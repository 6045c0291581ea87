//go:build linux
// +build linux

package execlock

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// tryAcquire makes one non-blocking flock attempt. EWOULDBLOCK means
// another process holds the lock; EINTR means the syscall was
// interrupted before we could know. Both map to ErrContended so the
// caller retries them.
func (l *Lock) tryAcquire() error {
	if l.f == nil {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open lock file: %w", err)
		}
		l.f = f
	}

	err := unix.Flock(int(l.f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EINTR):
		return ErrContended
	default:
		l.f.Close()
		l.f = nil
		return fmt.Errorf("flock: %w", err)
	}
}

func (l *Lock) release() error {
	if l.f == nil {
		return nil
	}

	// Closing the descriptor also drops the lock, but unlock explicitly
	// so a close error cannot leave it held.
	flockErr := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	closeErr := l.f.Close()
	l.f = nil

	if flockErr != nil {
		return fmt.Errorf("unlock: %w", flockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close lock file: %w", closeErr)
	}
	return nil
}
