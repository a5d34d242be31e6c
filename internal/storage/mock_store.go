package storage

import (
	"context"
	"path"
	"sync"
)

// MockStore is an in-memory implementation of ArtifactStore for testing.
type MockStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
	calls     MockCalls

	// WriteErr, ReadErr, and DeleteErr force the corresponding operation to
	// fail when set, for exercising failure paths.
	WriteErr  error
	ReadErr   error
	DeleteErr error
}

// MockCalls tracks method invocations for test verification.
type MockCalls struct {
	Write  int
	Read   int
	Exists int
	Delete int
}

// NewMockStore creates a new in-memory artifact store.
func NewMockStore() *MockStore {
	return &MockStore{
		artifacts: make(map[string][]byte),
	}
}

// Write stores the artifact under a synthetic "mock://" path.
func (m *MockStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Write++

	if m.WriteErr != nil {
		return "", m.WriteErr
	}

	p := path.Join("mock:/", name)
	stored := make([]byte, len(data))
	copy(stored, data)
	m.artifacts[p] = stored
	return p, nil
}

// Read retrieves the artifact bytes at the given path.
func (m *MockStore) Read(ctx context.Context, p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.calls.Read++

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}

	data, ok := m.artifacts[p]
	if !ok {
		return nil, ErrNotFound{Path: p}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Exists checks whether an artifact is present at the given path.
func (m *MockStore) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.calls.Exists++

	_, ok := m.artifacts[p]
	return ok, nil
}

// Delete removes the artifact at the given path.
func (m *MockStore) Delete(ctx context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Delete++

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	if _, ok := m.artifacts[p]; !ok {
		return ErrNotFound{Path: p}
	}
	delete(m.artifacts, p)
	return nil
}

// Close releases resources.
func (m *MockStore) Close() error {
	return nil
}

// Calls returns a snapshot of recorded method invocations.
func (m *MockStore) Calls() MockCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Len returns the number of stored artifacts.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.artifacts)
}
