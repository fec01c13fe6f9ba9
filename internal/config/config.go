package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for reportsync.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Platform   string           `toml:"platform"`
	Store      StoreConfig      `toml:"store"`
	Vault      VaultConfig      `toml:"vault"`
	Upload     UploadConfig     `toml:"upload"`
	Documents  DocumentsConfig  `toml:"documents"`
	Network    NetworkConfig    `toml:"network"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// StoreConfig configures the durable queue store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type    string `toml:"type"`               // "memory", "file", or "sqlite"
	Path    string `toml:"path,omitempty"`     // only used for type=file
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// VaultConfig configures the photo vault.
type VaultConfig struct {
	Type string `toml:"type"`           // "memory" or "filesystem"
	Root string `toml:"root,omitempty"` // only used for type=filesystem
}

// UploadConfig configures the image upload client.
type UploadConfig struct {
	Endpoint     string   `toml:"endpoint"`
	UploadPreset string   `toml:"upload_preset"`
	Folder       string   `toml:"folder"`
	MaxRetries   int      `toml:"max_retries"`
	RetryDelay   duration `toml:"retry_delay"`
	Timeout      duration `toml:"timeout"`
}

// DocumentsConfig configures the remote document database client.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DocumentsConfig struct {
	Type       string `toml:"type"` // "http" or "memory"
	Endpoint   string `toml:"endpoint,omitempty"`
	Collection string `toml:"collection"`
}

// NetworkConfig configures the connectivity monitor.
type NetworkConfig struct {
	ProbeURL     string   `toml:"probe_url"`
	ProbeTimeout duration `toml:"probe_timeout"`
	PollInterval duration `toml:"poll_interval"`
}

// EncryptionConfig configures at-rest encryption of the queue file.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age", or "test"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// duration wraps time.Duration with TOML text (un)marshalling, so config
// values read as "2s" or "60s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default upload behavior, matching the production service limits.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultTimeout    = 60 * time.Second
)

// NewConfig creates a Config with the provided identity and sensible
// defaults rooted under baseDir.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:   hostID,
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		Platform: "cli",
		Store: StoreConfig{
			Type: "file",
			Path: filepath.Join(baseDir, "queue.json"),
		},
		Vault: VaultConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "offline_photos"),
		},
		Upload: UploadConfig{
			MaxRetries: DefaultMaxRetries,
			RetryDelay: duration{DefaultRetryDelay},
			Timeout:    duration{DefaultTimeout},
		},
		Documents: DocumentsConfig{
			Type:       "http",
			Collection: "reports",
		},
		Network: NetworkConfig{
			ProbeTimeout: duration{5 * time.Second},
			PollInterval: duration{15 * time.Second},
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "reportsync.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "reportsync.key"),
		},
	}
}

// RetryDelayDuration returns the configured retry delay, falling back to the
// default when unset.
func (c *UploadConfig) RetryDelayDuration() time.Duration {
	if c.RetryDelay.Duration <= 0 {
		return DefaultRetryDelay
	}
	return c.RetryDelay.Duration
}

// TimeoutDuration returns the configured upload timeout, falling back to
// the default when unset.
func (c *UploadConfig) TimeoutDuration() time.Duration {
	if c.Timeout.Duration <= 0 {
		return DefaultTimeout
	}
	return c.Timeout.Duration
}

// Retries returns the configured attempt limit, falling back to the default
// when unset.
func (c *UploadConfig) Retries() int {
	if c.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
