package vault

import (
	"fmt"

	"reportsync/internal/config"
	"reportsync/internal/report"
)

// NewVaultFromConfig creates a PhotoVault implementation based on the vault
// config type.
func NewVaultFromConfig(cfg config.VaultConfig) (report.PhotoVault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem vault requires root to be set")
		}
		return NewFileSystemVault(cfg.Root)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
