package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrClosed is returned by a MemoryStore after Close.
var ErrClosed = errors.New("store: closed")

// MemoryStore is a Store held entirely in memory. It backs `--db :memory:`
// and the tests of every package above the store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	closed  bool
	now     func() time.Time
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return getEntry(s.entries, key)
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	setEntry(s.entries, key, value, s.now())
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return listEntries(s.entries, prefix), nil
}

// RunInTransaction runs fn against a private copy of the entries and swaps the
// copy in only when fn succeeds. The store lock is held throughout, so other
// callers observe either none or all of fn's writes.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx := &memoryTx{entries: make(map[string]Entry, len(s.entries)), now: s.now}
	for k, e := range s.entries {
		tx.entries[k] = e
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.entries = tx.entries
	return nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// memoryTx is the Store handed to a MemoryStore transaction. It is only used
// while the parent holds its lock.
type memoryTx struct {
	entries map[string]Entry
	now     func() time.Time
}

func (t *memoryTx) Get(ctx context.Context, key string) (*Entry, error) {
	return getEntry(t.entries, key)
}

func (t *memoryTx) Set(ctx context.Context, key string, value []byte) error {
	setEntry(t.entries, key, value, t.now())
	return nil
}

func (t *memoryTx) Delete(ctx context.Context, key string) error {
	delete(t.entries, key)
	return nil
}

func (t *memoryTx) List(ctx context.Context, prefix string) ([]*Entry, error) {
	return listEntries(t.entries, prefix), nil
}

// RunInTransaction on a memoryTx reuses the existing transaction (no nesting).
func (t *memoryTx) RunInTransaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

// Close is a no-op; the parent store owns the entries.
func (t *memoryTx) Close() error {
	return nil
}

func getEntry(entries map[string]Entry, key string) (*Entry, error) {
	e, ok := entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	e.Value = append([]byte(nil), e.Value...)
	return &e, nil
}

func setEntry(entries map[string]Entry, key string, value []byte, now time.Time) {
	e, ok := entries[key]
	if !ok {
		e = Entry{Key: key, CreatedAt: now}
	}
	e.Value = append([]byte(nil), value...)
	e.UpdatedAt = now
	entries[key] = e
}

func listEntries(entries map[string]Entry, prefix string) []*Entry {
	var out []*Entry
	for k, e := range entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		e.Value = append([]byte(nil), e.Value...)
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
