package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
)

func TestLocal_PutGetRoundTrip(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()
	key := core.StorageKey{Path: "out.png"}
	payload := []byte("fake png bytes")

	if err := store.Put(ctx, key, bytes.NewReader(payload), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("stored bytes differ from payload")
	}
}

func TestLocal_BucketMapsToSubdirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()
	key := core.StorageKey{Bucket: "exports", Path: "a.jpg"}

	if err := store.Put(ctx, key, bytes.NewReader([]byte("x")), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "exports", "a.jpg")); err != nil {
		t.Errorf("expected file under bucket subdirectory: %v", err)
	}
}

func TestLocal_MetadataSideCar(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()
	key := core.StorageKey{Path: "img.png"}

	meta := map[string]string{"format": "png", "width": "640"}
	if err := store.Put(ctx, key, bytes.NewReader([]byte("data")), meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "img.png.meta.json"))
	if err != nil {
		t.Fatalf("side-car missing: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"format":"png"`)) {
		t.Errorf("side-car content: %s", raw)
	}
}

func TestLocal_ExistsAndDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()
	key := core.StorageKey{Path: "tmp.png"}

	ok, err := store.Exists(ctx, key)
	if err != nil || ok {
		t.Errorf("Exists before put = (%v, %v)", ok, err)
	}

	if err := store.Put(ctx, key, bytes.NewReader([]byte("d")), map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err = store.Exists(ctx, key)
	if err != nil || !ok {
		t.Errorf("Exists after put = (%v, %v)", ok, err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, _ = store.Exists(ctx, key)
	if ok {
		t.Error("key still exists after delete")
	}

	// Deleting an absent key is not an error.
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("double delete: %v", err)
	}
}

func TestLocal_GetMissingKey(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	_, err = store.Get(context.Background(), core.StorageKey{Path: "nope.png"})
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryStorage) {
		t.Errorf("got %v, want storage-category error", err)
	}
}

func TestLocal_CancelledContext(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key := core.StorageKey{Path: "x"}
	if err := store.Put(ctx, key, bytes.NewReader(nil), nil); err == nil {
		t.Error("Put ignored cancelled context")
	}
	if _, err := store.Get(ctx, key); err == nil {
		t.Error("Get ignored cancelled context")
	}
}
