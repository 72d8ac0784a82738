package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"immunizetrack/internal/seed"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if !empty.Empty() {
		t.Fatalf("expected empty database")
	}
	snap := seed.MustDefault()
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	got, err := reloaded.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(snap, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStoreUpsertsBuckets(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	snap := seed.MustDefault()
	for range 2 {
		if err := store.Save(ctx, snap); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	var rows int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM state").Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 6 {
		t.Fatalf("expected one row per bucket, got %d", rows)
	}
	snap.Patients = snap.Patients[:1]
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save trimmed: %v", err)
	}
	got, _ := store.Load(ctx)
	if len(got.Patients) != 1 {
		t.Fatalf("expected overwritten patients bucket, got %d", len(got.Patients))
	}
}
