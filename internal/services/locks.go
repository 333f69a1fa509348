package services

import "sync"

// PackageLocks hands out one mutex per (publisher, package). Locks are held
// for the duration of a lifecycle operation and only serialise callers in
// this process.
type PackageLocks struct {
	mu    sync.Mutex
	locks map[string]*packageLock
}

type packageLock struct {
	mu   sync.Mutex
	refs int
}

// NewPackageLocks returns an empty lock table.
func NewPackageLocks() *PackageLocks {
	return &PackageLocks{locks: make(map[string]*packageLock)}
}

// Lock blocks until the package is free and returns the matching unlock.
// Entries are dropped once nobody holds or waits on them.
func (l *PackageLocks) Lock(publisher, pkg string) (unlock func()) {
	if l == nil {
		return func() {}
	}
	id := publisher + "/" + pkg

	l.mu.Lock()
	pl, ok := l.locks[id]
	if !ok {
		pl = &packageLock{}
		l.locks[id] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of packages currently locked or awaited.
func (l *PackageLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
