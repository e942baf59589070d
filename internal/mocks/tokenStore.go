package mocks

import (
	"sync"
	"time"
)

// MockTokenStore is an in-memory stand-in for the Redis token store.
type MockTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{values: make(map[string]string)}
}

func (m *MockTokenStore) Set(key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Values returns a copy of the stored entries for assertions.
func (m *MockTokenStore) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make(map[string]string, len(m.values))
	for key, value := range m.values {
		copied[key] = value
	}
	return copied
}

func (m *MockTokenStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MockTokenStore) GetDel(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value := m.values[key]
	delete(m.values, key)
	return value, nil
}

func (m *MockTokenStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MockTokenStore) Exists(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok, nil
}
