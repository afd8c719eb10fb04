package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a naive process-local Store.
//
// Concurrency: protected by RWMutex.
// Search: linear scan with case-insensitive substring matching. Suitable only
// for tests / demos.
type InMemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	storage map[string]map[string]Entry // namespace -> id -> entry
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new in-memory memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		storage: make(map[string]map[string]Entry),
	}
}

// Add stores a new entry.
func (m *InMemoryStore) Add(_ context.Context, namespace, content string, metadata map[string]string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.storage[namespace]; !exists {
		m.storage[namespace] = make(map[string]Entry)
	}

	m.seq++
	e := Entry{
		ID:        uuid.NewString(),
		Content:   content,
		Metadata:  copyMetadata(metadata),
		CreatedAt: time.Now(),
		Seq:       m.seq,
	}
	m.storage[namespace][e.ID] = e

	return e, nil
}

// Search returns entries whose content contains query.
func (m *InMemoryStore) Search(_ context.Context, namespace, query string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Entry, 0)
	for _, e := range m.storage[namespace] {
		if matches(e, query) {
			e.Metadata = copyMetadata(e.Metadata)
			results = append(results, e)
		}
	}

	return newestFirst(results, limit), nil
}

// List returns the most recent entries.
func (m *InMemoryStore) List(ctx context.Context, namespace string, limit int) ([]Entry, error) {
	return m.Search(ctx, namespace, "", limit)
}

// Delete removes a stored memory entry by id.
func (m *InMemoryStore) Delete(_ context.Context, namespace, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.storage[namespace][id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(m.storage[namespace], id)

	return nil
}

// Clear removes every entry of the namespace.
func (m *InMemoryStore) Clear(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.storage, namespace)

	return nil
}
