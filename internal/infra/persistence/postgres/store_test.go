package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"catalogcore/internal/infra/persistence/memory"
	"catalogcore/pkg/domain"
)

func providerBundle(id string) domain.AnyBundle {
	bundle := domain.Wrap(&domain.Provider{ID: id, Name: id, CatalogueID: "cat"})
	bundle.Base().LoggingInfo = []domain.LoggingInfo{{
		Date: time.Now().UTC(), Type: domain.TypeOnboard, ActionType: domain.ActionRegistered,
	}}
	return bundle
}

func seededBucket(t *testing.T) []byte {
	t.Helper()
	mem := memory.NewStore(nil)
	if _, err := mem.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, providerBundle("prov"))
		return err
	}); err != nil {
		t.Fatalf("seed memory store: %v", err)
	}
	snapshot := mem.ExportState()
	data, err := json.Marshal(snapshot.Providers)
	if err != nil {
		t.Fatalf("marshal providers bucket: %v", err)
	}
	return data
}

func TestNewStoreAppliesDDLAndHydrates(t *testing.T) {
	db, conn := newStubDB()
	conn.buckets["providers"] = seededBucket(t)

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := store.Get(domain.KindProvider, domain.PartitionDraft, "prov"); !ok {
		t.Fatalf("expected provider hydrated from snapshot")
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL to be applied, got execs: %v", conn.execs)
	}
}

func TestRunInTransactionPersistsState(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, providerBundle("prov"))
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	for _, bucket := range postgresBuckets {
		if _, ok := conn.buckets[bucket]; !ok {
			t.Fatalf("bucket %q not persisted, got %v", bucket, bucketNames(conn))
		}
	}
	var providers memory.Partitioned[*domain.Provider]
	if err := json.Unmarshal(conn.buckets["providers"], &providers); err != nil {
		t.Fatalf("decode providers bucket: %v", err)
	}
	if _, ok := providers.Draft["prov"]; !ok {
		t.Fatalf("expected provider in persisted bucket, got %v", providers.Draft)
	}
}

func TestRunInTransactionStopsOnUserError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	userErr := fmt.Errorf("user fail")
	if _, err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return userErr }); err == nil || !strings.Contains(err.Error(), "user fail") {
		t.Fatalf("expected user error to propagate, got %v", err)
	}
	if len(conn.buckets) != 0 {
		t.Fatalf("expected no persistence when user fn errors, got %v", bucketNames(conn))
	}
}

func TestRunInTransactionPersistErrorWhenExecFails(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec = true
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, providerBundle("prov"))
		return err
	}); err == nil {
		t.Fatalf("expected persistence error when exec fails")
	}
}

func TestRunInTransactionCommitError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failCommit = true
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, providerBundle("prov"))
		return err
	}); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStorePingError(t *testing.T) {
	db, conn := newStubDB()
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestNewStoreRowsError(t *testing.T) {
	db, conn := newStubDB()
	conn.rowsErr = fmt.Errorf("row err")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil {
		t.Fatalf("expected rows error")
	}
}

func TestNewStoreDecodeError(t *testing.T) {
	db, conn := newStubDB()
	conn.buckets["providers"] = []byte("not-json")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "decode providers") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func bucketNames(conn *stubConn) []string {
	names := make([]string, 0, len(conn.buckets))
	for name := range conn.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- stub driver helpers ---

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

type stubConn struct {
	execs      []string
	buckets    map[string][]byte
	failExec   bool
	failPing   bool
	failBegin  bool
	failCommit bool
	rowsErr    error
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{buckets: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) Ping(_ context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.failBegin {
		return nil, fmt.Errorf("begin fail")
	}
	return &stubTx{conn: c}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("unexpected upsert args: %v", args)
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg is %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg is %T", args[1].Value)
		}
		c.buckets[bucket] = append([]byte(nil), payload...)
		return driver.RowsAffected(1), nil
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToUpper(query), "FROM STATE") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	names := make([]string, 0, len(c.buckets))
	for name := range c.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]driver.Value, 0, len(names))
	for _, name := range names {
		rows = append(rows, []driver.Value{name, append([]byte(nil), c.buckets[name]...)})
	}
	return &stubRows{
		cols: []string{"bucket", "payload"},
		rows: rows,
		err:  c.rowsErr,
	}, nil
}

type stubTx struct {
	conn *stubConn
}

func (t *stubTx) Commit() error {
	if t.conn.failCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}
func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
