package report

import (
	"encoding/json"
	"fmt"
	"sync"
)

const (
	reportsKey = "offline_reports"
	statusKey  = "last_sync_status"
)

// Queue provides typed access to the pending-report list and last-sync
// status held in the KV store. The store holds whole JSON documents that are
// rewritten wholesale on every mutation, so Queue serializes every
// load-mutate-save sequence behind an in-process mutex: an auto-sync
// triggered by a reconnect event must not interleave with a user-initiated
// sync on the same key.
type Queue struct {
	kv KVStore
	mu sync.Mutex
}

func NewQueue(kv KVStore) *Queue {
	return &Queue{kv: kv}
}

// LoadReports returns the pending reports in insertion order.
// An absent key is an empty queue.
func (q *Queue) LoadReports() ([]*OfflineReport, error) {
	data, err := q.kv.Get(reportsKey)
	if err != nil {
		return nil, fmt.Errorf("reading queue: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var reports []*OfflineReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("decoding queue: %w", err)
	}
	return reports, nil
}

// SaveReports replaces the pending list wholesale.
func (q *Queue) SaveReports(reports []*OfflineReport) error {
	if reports == nil {
		reports = []*OfflineReport{}
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encoding queue: %w", err)
	}
	if err := q.kv.Set(reportsKey, data); err != nil {
		return fmt.Errorf("writing queue: %w", err)
	}
	return nil
}

// Mutate runs fn under the queue lock with the current pending list and
// persists whatever fn returns. fn returning an error aborts without saving.
func (q *Queue) Mutate(fn func(reports []*OfflineReport) ([]*OfflineReport, error)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	reports, err := q.LoadReports()
	if err != nil {
		return err
	}
	updated, err := fn(reports)
	if err != nil {
		return err
	}
	return q.SaveReports(updated)
}

// Lock acquires the queue mutex for a multi-step sequence that needs to
// read and write across other calls (the sync engine's per-pass critical
// section). The caller must invoke the returned function to release.
func (q *Queue) Lock() (unlock func()) {
	q.mu.Lock()
	return q.mu.Unlock
}

// LoadStatus returns the last sync status, or nil if none has been recorded.
func (q *Queue) LoadStatus() (*SyncStatus, error) {
	data, err := q.kv.Get(statusKey)
	if err != nil {
		return nil, fmt.Errorf("reading sync status: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decoding sync status: %w", err)
	}
	return &status, nil
}

// SaveStatus overwrites the last sync status.
func (q *Queue) SaveStatus(status *SyncStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encoding sync status: %w", err)
	}
	if err := q.kv.Set(statusKey, data); err != nil {
		return fmt.Errorf("writing sync status: %w", err)
	}
	return nil
}

// Clear removes the pending list entirely.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.kv.Delete(reportsKey); err != nil {
		return fmt.Errorf("clearing queue: %w", err)
	}
	return nil
}
