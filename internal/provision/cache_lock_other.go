// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package provision

import "errors"

// errFlockUnavailable makes Cache fall back to its in-process mutex.
var errFlockUnavailable = errors.New("flock not available on this platform")

type cacheLock struct{}

func acquireCacheLock(string) (*cacheLock, error) {
	return nil, errFlockUnavailable
}

// Release is a no-op.
func (l *cacheLock) Release() {}
