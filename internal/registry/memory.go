package registry

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It also serves as the test double for
// registry consumers: GetErr and SetErr, when set, fail the matching call.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string

	GetErr error
	SetErr error

	gets int
	sets int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.GetErr != nil {
		return "", m.GetErr
	}
	return m.values[key], nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

// Raw returns the stored value for key without counting a read.
func (m *MemoryStore) Raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Put stores value without counting a write.
func (m *MemoryStore) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Calls returns how many Get and Set calls were made.
func (m *MemoryStore) Calls() (gets, sets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets, m.sets
}
