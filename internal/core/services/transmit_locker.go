package services

import "sync"

// transmitLocker serializes transmission runs per kindergarten. The portal
// assumes one active login context per credential, so a second run for the
// same kindergarten is refused while the first holds the slot; runs for
// different kindergartens proceed independently.
type transmitLocker struct {
	mu     sync.Mutex
	active map[string]bool
}

func newTransmitLocker() *transmitLocker {
	return &transmitLocker{active: make(map[string]bool)}
}

// TryAcquire claims the kindergarten's transmission slot. Returns false if
// a run is already active.
func (l *transmitLocker) TryAcquire(kindergartenID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active[kindergartenID] {
		return false
	}
	l.active[kindergartenID] = true
	return true
}

// Release frees the kindergarten's transmission slot.
func (l *transmitLocker) Release(kindergartenID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, kindergartenID)
}
