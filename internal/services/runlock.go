package services

import "errors"

// ErrRunInProgress is returned when a run is requested while another run
// holds the lock.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// RunLock serializes reconciliation runs: the mapping table is a shared
// truncate-and-rebuild resource, so at most one run may execute at a time.
type RunLock struct {
	sem chan struct{}
}

// NewRunLock creates a new run lock
func NewRunLock() *RunLock {
	return &RunLock{sem: make(chan struct{}, 1)}
}

// TryAcquire attempts to take the lock without blocking. It returns a release
// function on success and ErrRunInProgress when the lock is held.
func (l *RunLock) TryAcquire() (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	default:
		return nil, ErrRunInProgress
	}
}

// Held reports whether a run currently holds the lock.
func (l *RunLock) Held() bool {
	return len(l.sem) > 0
}
