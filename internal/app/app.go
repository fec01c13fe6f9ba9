package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"reportsync/internal/config"
	"reportsync/internal/docstore"
	"reportsync/internal/encryption"
	"reportsync/internal/netmon"
	"reportsync/internal/report"
	"reportsync/internal/store"
	"reportsync/internal/upload"
	"reportsync/internal/vault"
)

// App is the application layer between the CLI and the report Manager.
// It constructs all dependencies from config and manages the store
// lifecycle on Close.
type App struct {
	cfg     *config.Config
	kv      report.KVStore
	vault   report.PhotoVault
	monitor *netmon.Monitor
	manager *report.Manager
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Save", "SyncAll").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	encryptor, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	kv, err := store.NewKVStoreFromConfig(cfg.Store, cfg.HostID, encryptor)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	v, err := vault.NewVaultFromConfig(cfg.Vault)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	docs, err := docstore.NewDocumentStoreFromConfig(cfg.Documents, nil)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("creating document store: %w", err)
	}

	checker := netmon.NewProbeChecker(cfg.Network.ProbeURL, cfg.Network.ProbeTimeout.Duration, nil)
	monitor := netmon.NewMonitor(checker, cfg.Network.PollInterval.Duration)

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, operation)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	uploader := upload.NewClient(upload.Options{
		Endpoint:     cfg.Upload.Endpoint,
		UploadPreset: cfg.Upload.UploadPreset,
		Folder:       cfg.Upload.Folder,
		MaxRetries:   cfg.Upload.Retries(),
		RetryDelay:   cfg.Upload.RetryDelayDuration(),
		Timeout:      cfg.Upload.TimeoutDuration(),
	}, v, monitor, &slogAdapter{l: logger})

	manager := report.NewManager(report.Deps{
		KV:       kv,
		Vault:    v,
		Uploader: uploader,
		Docs:     docs,
		Network:  monitor,
		Logger:   &slogAdapter{l: logger},
	}, report.Options{
		Collection: cfg.Documents.Collection,
		Platform:   cfg.Platform,
	})

	return &App{
		cfg:     cfg,
		kv:      kv,
		vault:   v,
		monitor: monitor,
		manager: manager,
		logFile: logFile,
	}, nil
}

// Manager exposes the report facade to the CLI.
func (a *App) Manager() *report.Manager {
	return a.manager
}

// Diagnostic builds a diagnostic runner from the configured endpoints.
func (a *App) Diagnostic() *netmon.Diagnostic {
	return &netmon.Diagnostic{
		ProbeURL:  a.cfg.Network.ProbeURL,
		UploadURL: a.cfg.Upload.Endpoint,
	}
}

// StartMonitor launches background connectivity polling. Long-lived callers
// (a watch mode, an embedding app) subscribe through the manager's monitor;
// one-shot CLI commands skip this.
func (a *App) StartMonitor(ctx context.Context) {
	a.monitor.Start(ctx)
}

// Close waits for background photo cleanup and releases all resources.
func (a *App) Close() error {
	a.manager.WaitForCleanup()
	a.monitor.Stop()

	var firstErr error
	if err := a.kv.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
