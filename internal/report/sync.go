package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Syncer drives queued reports through upload → remote write → local
// cleanup. Records move through Pending → Uploading → Writing →
// {Synced | Failed}: Synced removes the record and its vault photo, Failed
// keeps it queued with an incremented attempt count for a later pass.
//
// Records are processed sequentially, not in parallel. Reports are
// low-frequency, the remote services impose concurrency limits, and the
// partial-failure bookkeeping below only has to reason about one record at
// a time.
type Syncer struct {
	queue      *Queue
	vault      PhotoVault
	uploader   Uploader
	docs       DocumentStore
	network    ConnectivityMonitor
	logger     Logger
	clock      Clock
	collection string
	cleanups   sync.WaitGroup
}

// NewSyncer creates a sync engine writing to the given remote collection.
func NewSyncer(queue *Queue, vault PhotoVault, uploader Uploader, docs DocumentStore, network ConnectivityMonitor, logger Logger, clock Clock, collection string) *Syncer {
	return &Syncer{
		queue:      queue,
		vault:      vault,
		uploader:   uploader,
		docs:       docs,
		network:    network,
		logger:     logger,
		clock:      clock,
		collection: collection,
	}
}

// SyncAll walks the whole pending queue in insertion order. It aborts with
// ErrOffline before touching anything if the network is down. Each record is
// re-checked for connectivity, has its photo uploaded (unless skipPhotos),
// and is written to the remote store; failures keep the record queued with
// updated diagnostics. The retained failed list replaces the queue
// wholesale, the run summary overwrites the stored SyncStatus, and vault
// photos of synced records are cleaned up best-effort in the background.
//
// onProgress, if non-nil, fires after every record regardless of outcome. It
// runs under the queue lock held for the whole pass (the failed list replaces
// the queue wholesale, so concurrent saves must not interleave) and therefore
// must not mutate the queue through the facade.
func (s *Syncer) SyncAll(ctx context.Context, onProgress ProgressFunc, skipPhotos bool) (*SyncOutcome, error) {
	if !s.network.IsOnline(ctx) {
		return nil, ErrOffline
	}

	unlock := s.queue.Lock()
	defer unlock()

	reports, err := s.queue.LoadReports()
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return &SyncOutcome{}, nil
	}

	outcome := &SyncOutcome{}
	var syncedIDs []string
	var synced []*OfflineReport

	for i, r := range reports {
		photosSkipped, err := s.syncRecord(ctx, r, skipPhotos)
		outcome.PhotosSkipped += photosSkipped
		if err != nil {
			now := s.clock.Now()
			r.SyncAttempts++
			r.LastSyncError = err.Error()
			r.LastSyncAttempt = &now
			outcome.FailedReports = append(outcome.FailedReports, r)
			s.logger.Error("report sync failed", "offline_id", r.OfflineID, "attempts", r.SyncAttempts, "error", err)
		} else {
			syncedIDs = append(syncedIDs, r.OfflineID)
			synced = append(synced, r)
			s.logger.Info("report synced", "offline_id", r.OfflineID)
		}

		if onProgress != nil {
			onProgress(i+1, len(reports), r)
		}
	}

	outcome.Synced = len(syncedIDs)
	outcome.Failed = len(outcome.FailedReports)

	// Full overwrite: synced records must simply not appear in the new list.
	if err := s.queue.SaveReports(outcome.FailedReports); err != nil {
		return nil, err
	}

	status := &SyncStatus{
		LastSync:        s.clock.Now(),
		Synced:          outcome.Synced,
		Failed:          outcome.Failed,
		PhotosSkipped:   outcome.PhotosSkipped,
		SyncedReportIDs: syncedIDs,
	}
	if err := s.queue.SaveStatus(status); err != nil {
		s.logger.Warn("saving sync status", "error", err)
	}

	if len(synced) > 0 {
		s.cleanups.Add(1)
		go func() {
			defer s.cleanups.Done()
			s.cleanupPhotos(synced)
		}()
	}

	return outcome, nil
}

// WaitForCleanup blocks until background photo cleanup from previous sync
// passes has finished. Callers that exit promptly after a sync (the CLI)
// should wait before returning.
func (s *Syncer) WaitForCleanup() {
	s.cleanups.Wait()
}

// syncRecord promotes one record to the remote store. A failed photo upload
// does not fail the record: the remote write proceeds with a null photo and
// the photoUploadFailed flag so the textual report is not lost.
// photosSkipped reports whether the photo was counted as skipped.
func (s *Syncer) syncRecord(ctx context.Context, r *OfflineReport, skipPhoto bool) (photosSkipped int, err error) {
	// A multi-record pass can outlive the network; abandon the record as
	// failed rather than silently skipping it.
	if !s.network.IsOnline(ctx) {
		return 0, fmt.Errorf("connection lost during sync: %w", ErrOffline)
	}

	var photoURL any
	photoFailed := false

	if r.Photo != "" && !skipPhoto {
		url, uerr := s.uploader.Upload(ctx, r.Photo)
		if uerr != nil {
			photoFailed = true
			photosSkipped = 1
			if errors.Is(uerr, ErrSkipUpload) {
				s.logger.Warn("photo not uploadable", "offline_id", r.OfflineID, "photo", r.Photo)
			} else {
				s.logger.Warn("photo upload failed", "offline_id", r.OfflineID, "error", uerr)
			}
		} else {
			photoURL = url
		}
	}

	fields := make(map[string]any, len(r.Fields)+6)
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields["photo"] = photoURL
	fields["status"] = "search"
	fields["syncedFrom"] = "offline"
	fields["photoUploadFailed"] = photoFailed
	fields["originalOfflineId"] = r.OfflineID

	if _, err := s.docs.AddDocument(ctx, s.collection, fields); err != nil {
		return photosSkipped, fmt.Errorf("writing report: %w", err)
	}
	return photosSkipped, nil
}

// SyncOne syncs a single record by ID. On success the record is spliced out
// of the queue and its vault photo deleted; on failure the queue is left
// exactly as it was.
func (s *Syncer) SyncOne(ctx context.Context, offlineID string, skipPhoto bool) (*SingleSyncOutcome, error) {
	unlock := s.queue.Lock()
	defer unlock()

	reports, err := s.queue.LoadReports()
	if err != nil {
		return nil, err
	}

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

	if !s.network.IsOnline(ctx) {
		return nil, ErrOffline
	}

	var photoURL any
	photoFailed := false
	if r.Photo != "" && !skipPhoto {
		url, uerr := s.uploader.Upload(ctx, r.Photo)
		if uerr != nil {
			photoFailed = true
			s.logger.Warn("photo upload failed", "offline_id", r.OfflineID, "error", uerr)
		} else {
			photoURL = url
		}
	}

	fields := make(map[string]any, len(r.Fields)+6)
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields["photo"] = photoURL
	fields["status"] = "search"
	fields["syncedFrom"] = "offline"
	fields["photoUploadFailed"] = photoFailed
	fields["originalOfflineId"] = r.OfflineID

	if _, err := s.docs.AddDocument(ctx, s.collection, fields); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	remaining := append(reports[:idx:idx], reports[idx+1:]...)
	if err := s.queue.SaveReports(remaining); err != nil {
		return nil, err
	}

	if r.Photo != "" && s.vault.Contains(r.Photo) {
		if err := s.vault.Delete(r.Photo); err != nil {
			s.logger.Warn("could not delete photo file", "photo", r.Photo, "error", err)
		}
	}

	s.logger.Info("report synced", "offline_id", r.OfflineID)
	return &SingleSyncOutcome{PhotoUploaded: photoURL != nil}, nil
}

// cleanupPhotos deletes vault files for synced records. Best-effort:
// failures are logged, never surfaced.
func (s *Syncer) cleanupPhotos(synced []*OfflineReport) {
	for _, r := range synced {
		if r.Photo == "" || !s.vault.Contains(r.Photo) {
			continue
		}
		if err := s.vault.Delete(r.Photo); err != nil {
			s.logger.Warn("could not delete photo file", "photo", r.Photo, "error", err)
			continue
		}
		s.logger.Debug("cleaned up photo", "photo", r.Photo)
	}
}
