package vault

import (
	"path/filepath"
	"testing"

	"reportsync/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VaultConfig
		wantErr bool
	}{
		{
			name:    "memory vault",
			cfg:     config.VaultConfig{Type: "memory"},
			wantErr: false,
		},
		{
			name:    "filesystem vault without root",
			cfg:     config.VaultConfig{Type: "filesystem"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     config.VaultConfig{Type: "s3"},
			wantErr: true,
		},
		{
			name:    "empty type",
			cfg:     config.VaultConfig{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVaultFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewVaultFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && v == nil {
				t.Error("NewVaultFromConfig() returned nil vault without error")
			}
		})
	}

	t.Run("filesystem vault with root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "offline_photos")
		v, err := NewVaultFromConfig(config.VaultConfig{Type: "filesystem", Root: root})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		fsv, ok := v.(*FileSystemVault)
		if !ok {
			t.Fatalf("NewVaultFromConfig() = %T, want *FileSystemVault", v)
		}
		if fsv.Root() != root {
			t.Errorf("Root() = %q, want %q", fsv.Root(), root)
		}
	})
}
