package docstore

import (
	"context"
	"fmt"
	"sync"

	"reportsync/internal/report"
)

// Document is one record held by the MemoryStore.
type Document struct {
	ID         string
	Collection string
	Fields     map[string]any
}

// MemoryStore is an in-memory implementation of report.DocumentStore,
// useful for testing. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	docs    []Document
	seq     int
	nextErr error
}

var _ report.DocumentStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailNext makes the next AddDocument call return err.
func (m *MemoryStore) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextErr = err
}

func (m *MemoryStore) AddDocument(_ context.Context, collection string, fields map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nextErr != nil {
		err := m.nextErr
		m.nextErr = nil
		return "", err
	}

	m.seq++
	id := fmt.Sprintf("doc-%d", m.seq)

	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	m.docs = append(m.docs, Document{ID: id, Collection: collection, Fields: copied})
	return id, nil
}

// Documents returns all stored documents in insertion order.
func (m *MemoryStore) Documents() []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Document, len(m.docs))
	copy(out, m.docs)
	return out
}
