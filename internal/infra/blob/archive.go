// Package blob adapts the blob store backends to the snapshot archiver used
// by the registry service, and selects a backend from process environment.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"catalogcore/internal/infra/blob/core"
	"catalogcore/internal/infra/blob/fs"
	"catalogcore/internal/infra/blob/memory"
	"catalogcore/internal/infra/blob/s3"
)

// Archiver stores published-record snapshots in a blob store. It satisfies
// the service's SnapshotArchiver interface; Archive replaces any previous
// snapshot under the same key since the backends are create-only.
type Archiver struct {
	store core.Store
}

// NewArchiver wraps a blob store as a snapshot archiver.
func NewArchiver(store core.Store) *Archiver { return &Archiver{store: store} }

// Store exposes the underlying blob store.
func (a *Archiver) Store() core.Store { return a.store }

// Archive writes the snapshot, replacing any existing one under the key.
func (a *Archiver) Archive(ctx context.Context, key string, data []byte) error {
	if _, err := a.store.Delete(ctx, key); err != nil {
		return err
	}
	_, err := a.store.Put(ctx, key, bytes.NewReader(data), core.PutOptions{ContentType: "application/json"})
	return err
}

// Remove deletes the snapshot under the key. Missing snapshots are not an
// error.
func (a *Archiver) Remove(ctx context.Context, key string) error {
	_, err := a.store.Delete(ctx, key)
	return err
}

// OpenFromEnv selects and opens a blob store from process environment.
//
//	CATALOGCORE_BLOB_DRIVER=fs|s3|memory (default fs)
//	CATALOGCORE_BLOB_FS_ROOT=<dir> (fs driver, default ./archivedata)
func OpenFromEnv(ctx context.Context) (core.Store, error) {
	driver := core.Driver(os.Getenv("CATALOGCORE_BLOB_DRIVER"))
	switch driver {
	case "", core.DriverFilesystem:
		return fs.New(os.Getenv("CATALOGCORE_BLOB_FS_ROOT"))
	case core.DriverS3:
		return s3.OpenFromEnv(ctx)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
