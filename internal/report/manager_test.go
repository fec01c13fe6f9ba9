package report_test

import (
	"errors"
	"testing"

	"reportsync/internal/report"
	"reportsync/internal/testutil"
	"reportsync/internal/vault"
)

// newTestManager wires a Manager onto in-memory collaborators. The returned
// vault is the concrete MemoryVault so tests can register source photos.
func newTestManager(t *testing.T) (*report.Manager, *vault.MemoryVault) {
	t.Helper()
	v := vault.NewMemoryVault()
	m := report.NewManager(report.Deps{
		KV:       testutil.NewTestKVStore(),
		Vault:    v,
		Uploader: testutil.NewStubUploader(),
		Docs:     testutil.NewTestDocumentStore(),
		Network:  testutil.NewStubMonitor(true),
		Clock:    testutil.FixedClock(),
		IDGen:    testutil.NewStubIDGenerator(),
	}, report.Options{Platform: "test"})
	return m, v
}

func TestManager_SaveOfflineReport(t *testing.T) {
	t.Run("queues a report without a photo", func(t *testing.T) {
		m, _ := newTestManager(t)

		outcome, err := m.SaveOfflineReport(map[string]any{"petName": "Rex"}, "")
		if err != nil {
			t.Fatalf("SaveOfflineReport() error = %v", err)
		}
		if outcome.OfflineID != "offline_1" {
			t.Errorf("OfflineID = %q, want %q", outcome.OfflineID, "offline_1")
		}

		reports, err := m.GetPendingReports()
		if err != nil {
			t.Fatalf("GetPendingReports() error = %v", err)
		}
		if len(reports) != 1 {
			t.Fatalf("pending count = %d, want 1", len(reports))
		}
		if reports[0].Photo != "" {
			t.Errorf("Photo = %q, want empty", reports[0].Photo)
		}
		if reports[0].Fields["petName"] != "Rex" {
			t.Errorf("Fields[petName] = %v, want Rex", reports[0].Fields["petName"])
		}
		if reports[0].Platform != "test" {
			t.Errorf("Platform = %q, want test", reports[0].Platform)
		}
	})

	t.Run("persists the photo into the vault", func(t *testing.T) {
		m, v := newTestManager(t)
		v.AddSource("file:///tmp/picker/cat.jpg", []byte("jpegdata"))

		_, err := m.SaveOfflineReport(map[string]any{"petName": "Whiskers"}, "file:///tmp/picker/cat.jpg")
		if err != nil {
			t.Fatalf("SaveOfflineReport() error = %v", err)
		}

		reports, _ := m.GetPendingReports()
		if len(reports) != 1 {
			t.Fatalf("pending count = %d, want 1", len(reports))
		}
		if !v.Contains(reports[0].Photo) {
			t.Errorf("Photo = %q, want a vault-local path", reports[0].Photo)
		}
		if data, ok := v.Read(reports[0].Photo); !ok || string(data) != "jpegdata" {
			t.Errorf("vault content = %q, %v, want jpegdata", data, ok)
		}
	})

	t.Run("keeps the original URI when persistence fails", func(t *testing.T) {
		m, _ := newTestManager(t)

		// Source never registered, so Persist fails.
		outcome, err := m.SaveOfflineReport(map[string]any{"petName": "Rex"}, "file:///gone.jpg")
		if err != nil {
			t.Fatalf("SaveOfflineReport() error = %v", err)
		}
		if outcome.OfflineID == "" {
			t.Error("OfflineID is empty, report was lost")
		}

		reports, _ := m.GetPendingReports()
		if reports[0].Photo != "file:///gone.jpg" {
			t.Errorf("Photo = %q, want the original URI", reports[0].Photo)
		}
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		m, _ := newTestManager(t)

		for _, name := range []string{"a", "b", "c"} {
			if _, err := m.SaveOfflineReport(map[string]any{"petName": name}, ""); err != nil {
				t.Fatalf("SaveOfflineReport() error = %v", err)
			}
		}

		reports, _ := m.GetPendingReports()
		if len(reports) != 3 {
			t.Fatalf("pending count = %d, want 3", len(reports))
		}
		for i, want := range []string{"a", "b", "c"} {
			if got := reports[i].Fields["petName"]; got != want {
				t.Errorf("reports[%d] = %v, want %v", i, got, want)
			}
		}
	})
}

func TestManager_GetPendingCount(t *testing.T) {
	m, _ := newTestManager(t)

	count, err := m.GetPendingCount()
	if err != nil {
		t.Fatalf("GetPendingCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("GetPendingCount() = %d, want 0", count)
	}

	m.SaveOfflineReport(map[string]any{}, "")
	m.SaveOfflineReport(map[string]any{}, "")

	count, err = m.GetPendingCount()
	if err != nil {
		t.Fatalf("GetPendingCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("GetPendingCount() = %d, want 2", count)
	}
}

func TestManager_DeleteReport(t *testing.T) {
	t.Run("removes the report and its vault photo", func(t *testing.T) {
		m, v := newTestManager(t)
		v.AddSource("file:///a.jpg", []byte("aaa"))

		m.SaveOfflineReport(map[string]any{"petName": "a"}, "file:///a.jpg")
		m.SaveOfflineReport(map[string]any{"petName": "b"}, "")

		reports, _ := m.GetPendingReports()
		photo := reports[0].Photo

		if err := m.DeleteReport("offline_1"); err != nil {
			t.Fatalf("DeleteReport() error = %v", err)
		}

		reports, _ = m.GetPendingReports()
		if len(reports) != 1 {
			t.Fatalf("pending count = %d, want 1", len(reports))
		}
		if reports[0].OfflineID != "offline_2" {
			t.Errorf("remaining report = %s, want offline_2", reports[0].OfflineID)
		}
		if _, ok := v.Read(photo); ok {
			t.Errorf("vault photo %s still exists after delete", photo)
		}
	})

	t.Run("returns error for unknown ID", func(t *testing.T) {
		m, _ := newTestManager(t)

		err := m.DeleteReport("offline_999")
		if err == nil {
			t.Error("DeleteReport() expected error for unknown ID")
		}
	})
}

func TestManager_ClearAllOfflineReports(t *testing.T) {
	m, v := newTestManager(t)
	v.AddSource("file:///a.jpg", []byte("aaa"))

	m.SaveOfflineReport(map[string]any{}, "file:///a.jpg")
	m.SaveOfflineReport(map[string]any{}, "")

	if err := m.ClearAllOfflineReports(); err != nil {
		t.Fatalf("ClearAllOfflineReports() error = %v", err)
	}

	count, _ := m.GetPendingCount()
	if count != 0 {
		t.Errorf("GetPendingCount() = %d, want 0", count)
	}
}

func TestManager_GetStorageInfo(t *testing.T) {
	t.Run("sums photo sizes of pending reports", func(t *testing.T) {
		m, v := newTestManager(t)
		v.AddSource("file:///a.jpg", make([]byte, 1024))
		v.AddSource("file:///b.jpg", make([]byte, 2048))

		m.SaveOfflineReport(map[string]any{}, "file:///a.jpg")
		m.SaveOfflineReport(map[string]any{}, "file:///b.jpg")
		m.SaveOfflineReport(map[string]any{}, "")

		info, err := m.GetStorageInfo()
		if err != nil {
			t.Fatalf("GetStorageInfo() error = %v", err)
		}
		if info.ReportCount != 3 {
			t.Errorf("ReportCount = %d, want 3", info.ReportCount)
		}
		if info.TotalPhotoSize != 3072 {
			t.Errorf("TotalPhotoSize = %d, want 3072", info.TotalPhotoSize)
		}
		if info.TotalPhotoSizeMB != "0.00" {
			t.Errorf("TotalPhotoSizeMB = %q, want 0.00", info.TotalPhotoSizeMB)
		}
	})

	t.Run("empty queue reports zeroes", func(t *testing.T) {
		m, _ := newTestManager(t)

		info, err := m.GetStorageInfo()
		if err != nil {
			t.Fatalf("GetStorageInfo() error = %v", err)
		}
		if info.ReportCount != 0 || info.TotalPhotoSize != 0 {
			t.Errorf("GetStorageInfo() = %+v, want zeroes", info)
		}
	})
}

func TestOfflineIDGenerator(t *testing.T) {
	gen := report.OfflineIDGenerator{}
	clock := testutil.FixedClock()

	a := gen.New(clock.Now())
	b := gen.New(clock.Now())

	want := "offline_1705314600000_"
	if len(a) != len(want)+9 || a[:len(want)] != want {
		t.Errorf("New() = %q, want prefix %q plus 9-char token", a, want)
	}
	if a == b {
		t.Errorf("New() produced colliding IDs: %q", a)
	}
}

func TestManager_SaveOfflineReport_StoreError(t *testing.T) {
	m := report.NewManager(report.Deps{
		KV:       failingKVStore{},
		Vault:    testutil.NewTestVault(),
		Uploader: testutil.NewStubUploader(),
		Docs:     testutil.NewTestDocumentStore(),
		Network:  testutil.NewStubMonitor(true),
	}, report.Options{})

	if _, err := m.SaveOfflineReport(map[string]any{}, ""); err == nil {
		t.Error("SaveOfflineReport() expected error from failing store")
	}
}

// failingKVStore errors on every operation.
type failingKVStore struct{}

var errStore = errors.New("store unavailable")

func (failingKVStore) Get(string) ([]byte, error) { return nil, errStore }
func (failingKVStore) Set(string, []byte) error   { return errStore }
func (failingKVStore) Delete(string) error        { return errStore }
func (failingKVStore) Close() error               { return nil }
