package lifecycle

import (
	"context"
	"sync"
)

// nameLock is a mutex that can be abandoned while waiting
type nameLock struct {
	sem  chan struct{}
	refs int // Protected by lockTable.mu
}

// lockTable hands out one lock per app name. Entries exist only while
// someone holds or waits for them.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*nameLock)}
}

// lock blocks until name is held or ctx is done
func (t *lockTable) lock(ctx context.Context, name string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	l, ok := t.locks[name]
	if !ok {
		l = &nameLock{sem: make(chan struct{}, 1)}
		t.locks[name] = l
	}
	l.refs++
	t.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		t.release(name, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			t.release(name, l)
		})
	}, nil
}

func (t *lockTable) release(name string, l *nameLock) {
	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, name)
	}
	t.mu.Unlock()
}

// size returns the number of names currently held or awaited
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
