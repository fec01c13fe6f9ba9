package testutil

import (
	"reportsync/internal/encryption"
	"reportsync/internal/report"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() report.Encryptor {
	return encryption.NewTestEncryptor()
}
