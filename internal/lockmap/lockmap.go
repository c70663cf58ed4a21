// Package lockmap serializes mutating operations per file path. Two
// concurrent read-modify-rewrite sequences on the same ledger would
// otherwise race and silently lose the first writer's change.
package lockmap

import "sync"

// Locker hands out one mutex per key. The zero value is not usable; use New.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use. Mutexes are
// never discarded; the key space is one entry per user file.
func (l *Locker) Lock(key string) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for key. Panics if key was never locked.
func (l *Locker) Unlock(key string) {
	l.mu.Lock()
	m := l.locks[key]
	l.mu.Unlock()
	m.Unlock()
}
