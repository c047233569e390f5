package blob

import (
	"context"
	"io"
	"testing"

	"catalogcore/internal/infra/blob/core"
	"catalogcore/internal/infra/blob/memory"
)

func TestArchiveReplacesExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	archiver := NewArchiver(memory.New())

	if err := archiver.Archive(ctx, "cat/service/svc.json", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	// Backends are create-only; a second archive under the same key must still
	// succeed and replace the first snapshot.
	if err := archiver.Archive(ctx, "cat/service/svc.json", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("re-archive: %v", err)
	}

	info, rc, err := archiver.Store().Get(ctx, "cat/service/svc.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(data) != `{"v":2}` {
		t.Fatalf("expected replaced snapshot, got %q", data)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", info.ContentType)
	}
}

func TestRemoveMissingSnapshotIsNotAnError(t *testing.T) {
	archiver := NewArchiver(memory.New())
	if err := archiver.Remove(context.Background(), "cat/service/ghost.json"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestRemoveDeletesSnapshot(t *testing.T) {
	ctx := context.Background()
	archiver := NewArchiver(memory.New())
	if err := archiver.Archive(ctx, "cat/provider/prov.json", []byte(`{}`)); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if err := archiver.Remove(ctx, "cat/provider/prov.json"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := archiver.Store().Head(ctx, "cat/provider/prov.json"); err == nil {
		t.Fatalf("expected snapshot gone")
	}
}

func TestOpenFromEnvSelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Setenv("CATALOGCORE_BLOB_DRIVER", "memory")
	store, err := OpenFromEnv(ctx)
	if err != nil {
		t.Fatalf("OpenFromEnv memory: %v", err)
	}
	if store.Driver() != core.DriverMemory {
		t.Fatalf("expected memory driver, got %s", store.Driver())
	}

	t.Setenv("CATALOGCORE_BLOB_DRIVER", "fs")
	t.Setenv("CATALOGCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = OpenFromEnv(ctx)
	if err != nil {
		t.Fatalf("OpenFromEnv fs: %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}

	t.Setenv("CATALOGCORE_BLOB_DRIVER", "tape")
	if _, err := OpenFromEnv(ctx); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
