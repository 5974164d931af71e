package reports

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "reports.sqlite"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppendRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	submitted, err := db.Append(ctx, "zz-9999", "looks counterfeit, blurry label", "+234-800-000-0000")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if submitted.ID == 0 {
		t.Fatal("Append did not assign an id")
	}
	if submitted.SubmittedAt == "" {
		t.Fatal("Append did not assign a timestamp")
	}

	got, err := db.Get(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != submitted {
		t.Fatalf("round trip mismatch:\n  wrote %+v\n  read  %+v", submitted, got)
	}
}

func TestAppendEmptyOptionalFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	submitted, err := db.Append(ctx, "A4-1234", "", "")
	if err != nil {
		t.Fatalf("Append with empty reason/contact failed: %v", err)
	}

	got, err := db.Get(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Reason != "" || got.Contact != "" {
		t.Fatalf("optional fields should read back empty, got %+v", got)
	}
}

func TestAppendIncreasingIDs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		r, err := db.Append(ctx, "A4-1234", "", "")
		if err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
		if r.ID <= last {
			t.Fatalf("id %d not strictly greater than previous %d", r.ID, last)
		}
		last = r.ID
	}
}

func TestConcurrentAppendUniqueIDs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	const n = 20
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := db.Append(ctx, "B9-0000", "concurrent", "")
			if err != nil {
				t.Errorf("Append failed: %v", err)
				return
			}
			ids <- r.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d under concurrent submission", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d reports, got %d", n, len(seen))
	}
}

func TestTimestampFormat(t *testing.T) {
	db := openTestDB(t)
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	db.now = func() time.Time { return fixed }

	r, err := db.Append(context.Background(), "A4-1234", "", "")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if r.SubmittedAt != "2026-03-14 09:26:53" {
		t.Fatalf("timestamp = %q, want sortable format", r.SubmittedAt)
	}
}

func TestOpenIdempotentSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.sqlite")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := db.Append(ctx, "A4-1234", "r", "c"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	db.Close()

	// Re-opening must keep the existing rows.
	db2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer db2.Close()

	list, err := db2.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 surviving report, got %d", len(list))
	}
}

func TestListNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, code := range []string{"A4-1234", "B9-0000", "C3-0001"} {
		if _, err := db.Append(ctx, code, "", ""); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	list, err := db.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("limit ignored, got %d reports", len(list))
	}
	if list[0].Code != "C3-0001" || list[1].Code != "B9-0000" {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, code := range []string{"A4-1234", "A4-1234", "B9-0000"} {
		if _, err := db.Append(ctx, code, "", ""); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalReports != 3 || stats.DistinctCodes != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestGetMissing(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Get(context.Background(), 12345)
	if err == nil {
		t.Fatal("expected an error for a missing id")
	}
	if errors.Is(err, ErrPersist) {
		t.Fatal("a read miss must not look like a persist failure")
	}
}
