//go:build !linux
// +build !linux

package execlock

import "errors"

var errUnsupported = errors.New("advisory locking requires linux")

func (l *Lock) tryAcquire() error {
	return errUnsupported
}

func (l *Lock) release() error {
	return nil
}
