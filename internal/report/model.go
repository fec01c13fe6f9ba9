package report

import "time"

// OfflineReport is one pending submission held in the local queue until it
// can be promoted to the remote document store.
//
// The bookkeeping fields (OfflineID, SavedAt, SyncAttempts, diagnostics,
// Platform) exist only while the report is queued locally; they are stripped
// before the remote write. Domain fields (name, last-seen location, contact
// info, ...) are opaque to this package and pass through Fields unchanged.
type OfflineReport struct {
	// OfflineID is assigned once at save time and never reused.
	OfflineID string `json:"offlineId"`

	// Photo is the vault-local path of the persisted photo, or the original
	// picker URI if vault persistence failed, or empty when the report has
	// no photo. The remote photo URL is never written back here: a synced
	// report is deleted from the queue, not mutated.
	Photo string `json:"photo,omitempty"`

	SavedAt      time.Time `json:"savedAt"`
	SyncAttempts int       `json:"syncAttempts"`

	// Diagnostic fields, set on sync failure and absent otherwise.
	LastSyncError   string     `json:"lastSyncError,omitempty"`
	LastSyncAttempt *time.Time `json:"lastSyncAttempt,omitempty"`

	// Platform tags the origin platform. Diagnostic only.
	Platform string `json:"platform,omitempty"`

	// Fields carries the domain payload verbatim.
	Fields map[string]any `json:"fields"`
}

// SyncStatus summarizes the last sync run. It is overwritten wholesale on
// each run, not appended to.
type SyncStatus struct {
	LastSync        time.Time `json:"lastSync"`
	Synced          int       `json:"synced"`
	Failed          int       `json:"failed"`
	PhotosSkipped   int       `json:"photosSkipped"`
	SyncedReportIDs []string  `json:"syncedReportIds"`
}

// SyncOutcome aggregates the result of a bulk sync pass.
type SyncOutcome struct {
	Synced        int
	Failed        int
	PhotosSkipped int

	// FailedReports holds the records retained in the queue, with updated
	// attempt counts and diagnostics.
	FailedReports []*OfflineReport
}

// SingleSyncOutcome is the result of syncing one record by ID.
type SingleSyncOutcome struct {
	PhotoUploaded bool
}

// SaveOutcome is the result of queueing a new report.
type SaveOutcome struct {
	OfflineID string
}

// StorageInfo reports local storage usage for display.
type StorageInfo struct {
	ReportCount      int
	TotalPhotoSize   int64
	TotalPhotoSizeMB string
}

// ProgressFunc is invoked after each record of a bulk sync, regardless of
// outcome. current is 1-based.
//
// The callback runs while the sync pass holds the queue lock, so it must not
// call back into queue-mutating Manager methods (SaveOfflineReport,
// DeleteReport, ClearAllOfflineReports); doing so deadlocks.
type ProgressFunc func(current, total int, r *OfflineReport)
