package leveldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"immunizetrack/internal/seed"
)

func TestLevelDBStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.ldb")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	snap := seed.MustDefault()
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(snap, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLevelDBMemStoreEmptyAndCancelled(t *testing.T) {
	store, err := NewMemStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	snap, err := store.Load(context.Background())
	if err != nil || !snap.Empty() {
		t.Fatalf("expected empty snapshot, got %+v %v", snap, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Save(ctx, seed.MustDefault()); err == nil {
		t.Fatalf("expected cancelled save to fail")
	}
}
