package lock

import (
	"context"
	"fmt"
	"sync"
)

// Locker serializes work on one entity. The returned func releases the lock
// and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func ComplaintKey(complaintID int64) string {
	return fmt.Sprintf("complaint:%d", complaintID)
}

func UserKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

type entry struct {
	slot chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker. Entries are dropped once nobody holds
// or waits for them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e, false)
		return nil, fmt.Errorf("wait for lock %s: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.release(key, e, true) })
	}, nil
}

func (m *KeyedMutex) release(key string, e *entry, held bool) {
	if held {
		<-e.slot
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

func (m *KeyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
