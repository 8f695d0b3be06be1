package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/opd-ai/toxfer/interfaces"
	"github.com/sirupsen/logrus"
)

// DefaultDBFileName is the SQLite filename under the data directory.
const DefaultDBFileName = "toxfer.db"

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// ErrClosed is returned by Run after the store has been closed.
var ErrClosed = errors.New("storage: store is closed")

// ErrSchemaTooNew indicates a database written by a newer release.
var ErrSchemaTooNew = errors.New("storage: database schema is newer than supported")

// schema holds every transfer record. Statuses and paused-by values mirror
// interfaces.RecordStatus and interfaces.PausedBy.
const schema = `
CREATE TABLE IF NOT EXISTS transfer_records (
  transfer_id     TEXT PRIMARY KEY,
  message_id      INTEGER NOT NULL,
  chat_id         TEXT NOT NULL DEFAULT '',
  peer_public_key TEXT NOT NULL DEFAULT '',
  group_id        INTEGER NOT NULL DEFAULT 0,
  is_group        INTEGER NOT NULL DEFAULT 0,
  handle          INTEGER NOT NULL DEFAULT -1,
  kind            INTEGER NOT NULL DEFAULT 0,
  outgoing        INTEGER NOT NULL DEFAULT 0,
  status          TEXT NOT NULL CHECK(status IN ('waiting_confirmation','loading','paused','canceled','ready','expired')),
  size            INTEGER NOT NULL DEFAULT 0,
  file_name       TEXT NOT NULL DEFAULT '',
  file_path       TEXT NOT NULL DEFAULT '',
  paused_by       TEXT NOT NULL CHECK(paused_by IN ('none','self','peer')) DEFAULT 'none',
  opened          INTEGER NOT NULL DEFAULT 0,
  offline         INTEGER NOT NULL DEFAULT 0,
  expired         INTEGER NOT NULL DEFAULT 0,
  duration        TEXT NOT NULL DEFAULT '',
  created_at      INTEGER NOT NULL,
  updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transfer_records_status
  ON transfer_records (status);
CREATE INDEX IF NOT EXISTS idx_transfer_records_chat_time
  ON transfer_records (chat_id, created_at DESC, transfer_id);
`

// Store persists transfer records in SQLite. It implements
// interfaces.IRecordRepository and interfaces.IRepositoryContext; Run
// executes on a single dedicated goroutine.
type Store struct {
	db *sql.DB

	jobs      chan func()
	stop      chan struct{}
	workerWG  sync.WaitGroup
	closeOnce sync.Once
}

var (
	_ interfaces.IRecordRepository  = (*Store)(nil)
	_ interfaces.IRepositoryContext = (*Store)(nil)
)

// Open opens (or creates) toxfer.db under dataDir.
func Open(dataDir string) (*Store, string, error) {
	dbPath := filepath.Join(dataDir, DefaultDBFileName)
	store, err := OpenPath(dbPath)
	if err != nil {
		return nil, "", err
	}
	return store, dbPath, nil
}

// OpenPath opens the record database at dbPath, creating its directory and
// schema as needed. Every connection runs in WAL mode and takes the write
// lock when a transaction begins, so record updates never deadlock on
// lock upgrade.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate",
		filepath.ToSlash(dbPath))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{
		db:   db,
		jobs: make(chan func()),
		stop: make(chan struct{}),
	}
	store.startWorker()

	logrus.WithFields(logrus.Fields{
		"function": "OpenPath",
		"path":     dbPath,
	}).Info("Opened record store")
	return store, nil
}

// Close stops the worker goroutine and closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	var closeErr error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.workerWG.Wait()
		closeErr = s.db.Close()
	})
	return closeErr
}

// Run executes fn on the store's worker goroutine and returns its error.
func (s *Store) Run(fn func() error) error {
	done := make(chan error, 1)
	select {
	case s.jobs <- func() { done <- fn() }:
	case <-s.stop:
		return ErrClosed
	}
	return <-done
}

func (s *Store) startWorker() {
	s.workerWG.Add(1)
	go func() {
		defer s.workerWG.Done()
		for {
			select {
			case job := <-s.jobs:
				job()
			case <-s.stop:
				return
			}
		}
	}()
}

// ensureSchema creates the schema in a fresh database and refuses one
// written by a newer release.
func ensureSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case version == schemaVersion:
		return nil
	case version > schemaVersion:
		return fmt.Errorf("%w: version %d, supported %d", ErrSchemaTooNew, version, schemaVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "ensureSchema",
		"from":     version,
		"to":       schemaVersion,
	}).Debug("Created record schema")
	return nil
}
