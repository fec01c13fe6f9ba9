package store

import (
	"fmt"
	"path/filepath"

	"reportsync/internal/config"
	"reportsync/internal/report"
)

// NewKVStoreFromConfig creates a KVStore implementation based on the store
// config type. encryptor is applied only by the file backend and may be nil.
func NewKVStoreFromConfig(cfg config.StoreConfig, hostID string, encryptor report.Encryptor) (report.KVStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file store requires path to be set")
		}
		return NewFileStore(cfg.Path, encryptor)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, hostID+".db"))
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
