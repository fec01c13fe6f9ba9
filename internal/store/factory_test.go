package store_test

import (
	"path/filepath"
	"testing"

	"reportsync/internal/config"
	"reportsync/internal/store"
)

func TestNewKVStoreFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{
			name:    "memory store",
			cfg:     config.StoreConfig{Type: "memory"},
			wantErr: false,
		},
		{
			name:    "file store without path",
			cfg:     config.StoreConfig{Type: "file"},
			wantErr: true,
		},
		{
			name:    "sqlite store without data dir",
			cfg:     config.StoreConfig{Type: "sqlite"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     config.StoreConfig{Type: "redis"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, err := store.NewKVStoreFromConfig(tt.cfg, "host-1", nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewKVStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if kv == nil {
					t.Fatal("NewKVStoreFromConfig() returned nil store without error")
				}
				kv.Close()
			}
		})
	}

	t.Run("file store with path", func(t *testing.T) {
		cfg := config.StoreConfig{Type: "file", Path: filepath.Join(t.TempDir(), "queue.json")}
		kv, err := store.NewKVStoreFromConfig(cfg, "host-1", nil)
		if err != nil {
			t.Fatalf("NewKVStoreFromConfig() error = %v", err)
		}
		defer kv.Close()
		if _, ok := kv.(*store.FileStore); !ok {
			t.Errorf("NewKVStoreFromConfig() = %T, want *store.FileStore", kv)
		}
	})

	t.Run("sqlite store is named after the host", func(t *testing.T) {
		dir := t.TempDir()
		cfg := config.StoreConfig{Type: "sqlite", DataDir: dir}
		kv, err := store.NewKVStoreFromConfig(cfg, "host-1", nil)
		if err != nil {
			t.Fatalf("NewKVStoreFromConfig() error = %v", err)
		}
		defer kv.Close()

		s, ok := kv.(*store.SQLiteStore)
		if !ok {
			t.Fatalf("NewKVStoreFromConfig() = %T, want *store.SQLiteStore", kv)
		}
		if got, want := s.Path(), filepath.Join(dir, "host-1.db"); got != want {
			t.Errorf("Path() = %q, want %q", got, want)
		}
	})
}
