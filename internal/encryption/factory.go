// Package encryption protects the serialized report queue at rest. Queued
// reports carry contact details and last-seen locations of missing persons,
// which should not sit in plaintext on a shared device.
package encryption

import (
	"fmt"

	"reportsync/internal/config"
	"reportsync/internal/report"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Type "none" (or empty) returns nil: the store writes plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (report.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
