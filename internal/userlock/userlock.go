// Package userlock serializes actions of the same user.
package userlock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per user id. Entries are dropped once nobody holds or waits on them.
type Locker struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

// New returns an empty Locker
func New() *Locker {
	return &Locker{locks: make(map[int64]*entry)}
}

// Lock blocks until the user's mutex is held and returns its release func
func (l *Locker) Lock(userID int64) func() {
	l.mu.Lock()
	e, ok := l.locks[userID]
	if !ok {
		e = &entry{}
		l.locks[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, userID)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of users currently holding or waiting on a lock
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
