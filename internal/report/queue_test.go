package report_test

import (
	"errors"
	"testing"
	"time"

	"reportsync/internal/report"
	"reportsync/internal/testutil"
)

func TestQueue_Reports(t *testing.T) {
	t.Run("absent key is an empty queue", func(t *testing.T) {
		q := report.NewQueue(testutil.NewTestKVStore())

		reports, err := q.LoadReports()
		if err != nil {
			t.Fatalf("LoadReports() error = %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("LoadReports() = %d reports, want 0", len(reports))
		}
	})

	t.Run("round-trips reports through the store", func(t *testing.T) {
		q := report.NewQueue(testutil.NewTestKVStore())
		saved := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

		in := []*report.OfflineReport{
			{OfflineID: "offline_1", SavedAt: saved, Fields: map[string]any{"petName": "Rex"}},
			{OfflineID: "offline_2", Photo: "mem://offline_photos/report_1.jpg", SavedAt: saved},
		}
		if err := q.SaveReports(in); err != nil {
			t.Fatalf("SaveReports() error = %v", err)
		}

		out, err := q.LoadReports()
		if err != nil {
			t.Fatalf("LoadReports() error = %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("LoadReports() = %d reports, want 2", len(out))
		}
		if out[0].OfflineID != "offline_1" || out[1].OfflineID != "offline_2" {
			t.Errorf("order = %s, %s; want insertion order", out[0].OfflineID, out[1].OfflineID)
		}
		if !out[0].SavedAt.Equal(saved) {
			t.Errorf("SavedAt = %v, want %v", out[0].SavedAt, saved)
		}
		if out[0].Fields["petName"] != "Rex" {
			t.Errorf("Fields[petName] = %v, want Rex", out[0].Fields["petName"])
		}
		if out[1].Photo != "mem://offline_photos/report_1.jpg" {
			t.Errorf("Photo = %q did not survive the round trip", out[1].Photo)
		}
	})

	t.Run("saving nil stores an empty list, not null", func(t *testing.T) {
		kv := testutil.NewTestKVStore()
		q := report.NewQueue(kv)

		if err := q.SaveReports(nil); err != nil {
			t.Fatalf("SaveReports(nil) error = %v", err)
		}

		data, err := kv.Get("offline_reports")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("stored value = %q, want []", data)
		}
	})
}

func TestQueue_Mutate(t *testing.T) {
	t.Run("persists the returned list", func(t *testing.T) {
		q := report.NewQueue(testutil.NewTestKVStore())

		err := q.Mutate(func(reports []*report.OfflineReport) ([]*report.OfflineReport, error) {
			return append(reports, &report.OfflineReport{OfflineID: "offline_1"}), nil
		})
		if err != nil {
			t.Fatalf("Mutate() error = %v", err)
		}

		reports, _ := q.LoadReports()
		if len(reports) != 1 {
			t.Errorf("LoadReports() = %d reports, want 1", len(reports))
		}
	})

	t.Run("error from fn aborts without saving", func(t *testing.T) {
		q := report.NewQueue(testutil.NewTestKVStore())
		q.SaveReports([]*report.OfflineReport{{OfflineID: "offline_1"}})

		wantErr := errors.New("refused")
		err := q.Mutate(func(reports []*report.OfflineReport) ([]*report.OfflineReport, error) {
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("Mutate() error = %v, want %v", err, wantErr)
		}

		reports, _ := q.LoadReports()
		if len(reports) != 1 {
			t.Errorf("LoadReports() = %d reports, want the original 1", len(reports))
		}
	})
}

func TestQueue_Status(t *testing.T) {
	t.Run("nil before any run is recorded", func(t *testing.T) {
		q := report.NewQueue(testutil.NewTestKVStore())

		status, err := q.LoadStatus()
		if err != nil {
			t.Fatalf("LoadStatus() error = %v", err)
		}
		if status != nil {
			t.Errorf("LoadStatus() = %+v, want nil", status)
		}
	})

	t.Run("overwrites wholesale", func(t *testing.T) {
		q := report.NewQueue(testutil.NewTestKVStore())

		first := &report.SyncStatus{Synced: 1, SyncedReportIDs: []string{"offline_1"}}
		second := &report.SyncStatus{Synced: 0, Failed: 2, PhotosSkipped: 1}
		if err := q.SaveStatus(first); err != nil {
			t.Fatalf("SaveStatus() error = %v", err)
		}
		if err := q.SaveStatus(second); err != nil {
			t.Fatalf("SaveStatus() error = %v", err)
		}

		status, err := q.LoadStatus()
		if err != nil {
			t.Fatalf("LoadStatus() error = %v", err)
		}
		if status.Synced != 0 || status.Failed != 2 || status.PhotosSkipped != 1 {
			t.Errorf("LoadStatus() = %+v, want the second status only", status)
		}
		if len(status.SyncedReportIDs) != 0 {
			t.Errorf("SyncedReportIDs = %v, want empty", status.SyncedReportIDs)
		}
	})
}

func TestQueue_Clear(t *testing.T) {
	q := report.NewQueue(testutil.NewTestKVStore())
	q.SaveReports([]*report.OfflineReport{{OfflineID: "offline_1"}})

	if err := q.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	reports, err := q.LoadReports()
	if err != nil {
		t.Fatalf("LoadReports() error = %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("LoadReports() = %d reports, want 0 after Clear", len(reports))
	}
}
