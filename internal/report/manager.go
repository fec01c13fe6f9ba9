package report

import (
	"context"
	"fmt"
)

// Manager is the public face of the offline report pipeline. It composes
// the queue, the photo vault, and the sync engine behind the handful of
// calls the capture and review surfaces need.
//
// Manager is an instance type on purpose: multiple configurations (tests vs
// production, different vault roots) coexist without shared global state.
type Manager struct {
	queue    *Queue
	vault    PhotoVault
	syncer   *Syncer
	network  ConnectivityMonitor
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	platform string
}

// Deps carries the collaborators for NewManager. All fields are required
// except Logger, Clock, and IDGen, which default to NopLogger, RealClock,
// and OfflineIDGenerator.
type Deps struct {
	KV       KVStore
	Vault    PhotoVault
	Uploader Uploader
	Docs     DocumentStore
	Network  ConnectivityMonitor
	Logger   Logger
	Clock    Clock
	IDGen    IDGenerator
}

// Options tunes manager behavior.
type Options struct {
	// Collection is the remote collection reports are promoted into.
	// Defaults to "reports".
	Collection string

	// Platform tags saved reports with their origin platform. Diagnostic
	// only.
	Platform string
}

// NewManager wires a Manager from its collaborators.
func NewManager(deps Deps, opts Options) *Manager {
	if deps.Logger == nil {
		deps.Logger = NewNopLogger()
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if deps.IDGen == nil {
		deps.IDGen = OfflineIDGenerator{}
	}
	if opts.Collection == "" {
		opts.Collection = "reports"
	}

	queue := NewQueue(deps.KV)
	syncer := NewSyncer(queue, deps.Vault, deps.Uploader, deps.Docs, deps.Network, deps.Logger, deps.Clock, opts.Collection)

	return &Manager{
		queue:    queue,
		vault:    deps.Vault,
		syncer:   syncer,
		network:  deps.Network,
		logger:   deps.Logger,
		clock:    deps.Clock,
		idgen:    deps.IDGen,
		platform: opts.Platform,
	}
}

// SaveOfflineReport queues a new report. The photo, if any, is copied into
// the vault first so it outlives the picker URI; the entry and its vault
// file live and die together.
func (m *Manager) SaveOfflineReport(fields map[string]any, photoURI string) (*SaveOutcome, error) {
	now := m.clock.Now()

	var photo string
	if photoURI != "" {
		persisted, err := m.vault.Persist(photoURI)
		if err != nil {
			// Degraded fallback: keep the original URI. Sync will surface
			// the failure through validation instead of losing the report.
			m.logger.Warn("persisting photo failed, keeping original URI", "uri", photoURI, "error", err)
			persisted = photoURI
		}
		photo = persisted
	}

	r := &OfflineReport{
		OfflineID: m.idgen.New(now),
		Photo:     photo,
		SavedAt:   now,
		Platform:  m.platform,
		Fields:    fields,
	}

	err := m.queue.Mutate(func(reports []*OfflineReport) ([]*OfflineReport, error) {
		return append(reports, r), nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving offline report: %w", err)
	}

	m.logger.Info("report saved offline", "offline_id", r.OfflineID)
	return &SaveOutcome{OfflineID: r.OfflineID}, nil
}

// GetPendingReports returns the queued reports in insertion order.
func (m *Manager) GetPendingReports() ([]*OfflineReport, error) {
	return m.queue.LoadReports()
}

// GetPendingCount returns the number of queued reports.
func (m *Manager) GetPendingCount() (int, error) {
	reports, err := m.queue.LoadReports()
	if err != nil {
		return 0, err
	}
	return len(reports), nil
}

// SyncOfflineReports runs a bulk sync pass over the whole queue.
func (m *Manager) SyncOfflineReports(ctx context.Context, onProgress ProgressFunc, skipPhotos bool) (*SyncOutcome, error) {
	return m.syncer.SyncAll(ctx, onProgress, skipPhotos)
}

// SyncSingleReport syncs one queued report by ID.
func (m *Manager) SyncSingleReport(ctx context.Context, offlineID string, skipPhoto bool) (*SingleSyncOutcome, error) {
	return m.syncer.SyncOne(ctx, offlineID, skipPhoto)
}

// GetLastSyncStatus returns the summary of the last sync run, or nil if no
// run has been recorded.
func (m *Manager) GetLastSyncStatus() (*SyncStatus, error) {
	return m.queue.LoadStatus()
}

// DeleteReport removes a queued report and its vault photo.
func (m *Manager) DeleteReport(offlineID string) error {
	return m.queue.Mutate(func(reports []*OfflineReport) ([]*OfflineReport, error) {
		idx := -1
		for i, r := range reports {
			if r.OfflineID == offlineID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("report not found: %s", offlineID)
		}

		r := reports[idx]
		if r.Photo != "" && m.vault.Contains(r.Photo) {
			if err := m.vault.Delete(r.Photo); err != nil {
				m.logger.Warn("could not delete photo file", "photo", r.Photo, "error", err)
			}
		}

		kept := make([]*OfflineReport, 0, len(reports)-1)
		for _, other := range reports {
			if other.OfflineID != offlineID {
				kept = append(kept, other)
			}
		}
		return kept, nil
	})
}

// ClearAllOfflineReports wipes the queue and the entire vault directory,
// recreating the empty directory afterwards.
func (m *Manager) ClearAllOfflineReports() error {
	if err := m.queue.Clear(); err != nil {
		return err
	}
	if err := m.vault.Clear(); err != nil {
		// Queue is already gone; a leftover photo directory is a cosmetic
		// problem, not data loss.
		m.logger.Warn("could not clear photo directory", "error", err)
	}
	m.logger.Info("cleared all offline reports")
	return nil
}

// GetStorageInfo sums vault file sizes for the pending entries, for display.
func (m *Manager) GetStorageInfo() (*StorageInfo, error) {
	reports, err := m.queue.LoadReports()
	if err != nil {
		return nil, err
	}

	var total int64
	for _, r := range reports {
		if r.Photo == "" {
			continue
		}
		size, err := m.vault.FileSize(r.Photo)
		if err != nil {
			m.logger.Warn("could not stat photo file", "photo", r.Photo, "error", err)
			continue
		}
		total += size
	}

	return &StorageInfo{
		ReportCount:      len(reports),
		TotalPhotoSize:   total,
		TotalPhotoSizeMB: fmt.Sprintf("%.2f", float64(total)/(1024*1024)),
	}, nil
}

// WaitForCleanup blocks until background photo cleanup has finished.
func (m *Manager) WaitForCleanup() {
	m.syncer.WaitForCleanup()
}
