package testutil

import (
	"reportsync/internal/report"
	"reportsync/internal/vault"
)

// NewTestVault creates a new in-memory photo vault for testing.
func NewTestVault() report.PhotoVault {
	return vault.NewMemoryVault()
}
