package core

import "sync"

// userLocks hands out one mutex per user so turns of the same user run one at
// a time while different users proceed in parallel.
type userLocks struct {
	locks map[int64]*refMutex
	mu    sync.Mutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*refMutex)}
}

// lock blocks until the user's mutex is held and returns the release func.
func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &refMutex{}
		l.locks[userID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()

	return func() {
		m.mu.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
