package switcher

import "sync"

// dirLocks hands out one mutex per resolved target directory. The switch
// sequence is multi-step and not atomic at the filesystem level, so two
// overlapping switches against the same directory must never interleave.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDirLocks() *dirLocks {
	return &dirLocks{locks: make(map[string]*sync.Mutex)}
}

func (d *dirLocks) forDir(path string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[path] = lock
	}
	return lock
}

// tryAcquire attempts to take the lock for path without blocking. It
// returns a release func on success and false when a switch is already in
// flight for the same directory.
func (d *dirLocks) tryAcquire(path string) (func(), bool) {
	lock := d.forDir(path)
	if !lock.TryLock() {
		return nil, false
	}
	return lock.Unlock, true
}
