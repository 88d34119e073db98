package keystore

import (
	"sort"
	"sync"
)

// MemoryKeystore keeps keys in process memory only. It backs
// `serve --ephemeral` and tests.
type MemoryKeystore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKeystore returns an empty in-memory keystore.
func NewMemoryKeystore() *MemoryKeystore {
	return &MemoryKeystore{data: make(map[string]string)}
}

func (m *MemoryKeystore) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = value
	return nil
}

func (m *MemoryKeystore) Get(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[name]
	if !ok {
		return "", &ErrKeyNotFound{Name: name}
	}
	return v, nil
}

func (m *MemoryKeystore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[name]; !ok {
		return &ErrKeyNotFound{Name: name}
	}
	delete(m.data, name)
	return nil
}

func (m *MemoryKeystore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var _ Keystore = (*MemoryKeystore)(nil)
