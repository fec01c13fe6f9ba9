package testutil

import (
	"reportsync/internal/docstore"
)

// NewTestDocumentStore creates a recording in-memory document store for
// testing. Use its Documents method to inspect what was written.
func NewTestDocumentStore() *docstore.MemoryStore {
	return docstore.NewMemoryStore()
}
