package starter

import (
	"context"
	"sort"
	"sync"
)

// MapStore keeps starters in memory. It backs tests and embedded catalogs.
type MapStore struct {
	mu       sync.RWMutex
	starters map[string]string
}

// NewMapStore creates a MapStore seeded with starters.
func NewMapStore(starters map[string]string) *MapStore {
	m := &MapStore{starters: make(map[string]string, len(starters))}
	for name, text := range starters {
		m.starters[name] = text
	}
	return m
}

// Put adds or replaces a starter.
func (m *MapStore) Put(name, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starters[name] = text
}

// Get returns the named starter.
func (m *MapStore) Get(ctx context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.starters[name]
	if !ok {
		return "", notFound(name)
	}
	return text, nil
}

// List returns all names in lexical order.
func (m *MapStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.starters))
	for name := range m.starters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close does nothing.
func (m *MapStore) Close() error { return nil }

var _ Store = (*MapStore)(nil)
