package testutil

import (
	"reportsync/internal/report"
	"reportsync/internal/store"
)

// NewTestKVStore creates a new in-memory key-value store for testing.
func NewTestKVStore() report.KVStore {
	return store.NewMemoryStore()
}
