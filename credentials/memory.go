package credentials

import (
	"context"
	"sync"
)

var _ Medium = (*MemoryMedium)(nil)

// MemoryMedium keeps entries for the life of the process.
type MemoryMedium struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{
		entries: make(map[string]Entry),
	}
}

func (m *MemoryMedium) Set(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Name] = entry
	return nil
}

func (m *MemoryMedium) Get(_ context.Context, name string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if entry.Expired(NowTimeFunc()) {
		delete(m.entries, name)
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (m *MemoryMedium) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, name)
	return nil
}

// Len returns the number of entries held, expired or not.
func (m *MemoryMedium) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
