package graph

import (
	"time"
)

// lockTimeout bounds every wait for a lock other than the one of the node
// being operated on.
const lockTimeout = 10 * time.Millisecond

// timedMutex is a mutex supporting bounded waits.
type timedMutex struct {
	ch chan struct{}
}

func newTimedMutex() timedMutex {
	return timedMutex{ch: make(chan struct{}, 1)}
}

func (m *timedMutex) Lock() {
	m.ch <- struct{}{}
}

func (m *timedMutex) Unlock() {
	select {
	case <-m.ch:
	default:
		panic("graph: unlock of unlocked mutex")
	}
}

func (m *timedMutex) TryLock() bool {
	select {
	case m.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// TryLockFor waits at most d for the lock.
func (m *timedMutex) TryLockFor(d time.Duration) bool {
	if m.TryLock() {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case m.ch <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}
