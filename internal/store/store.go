package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"resource-cards/internal/logger"
)

const sqliteFileName = "cards.sqlite"

// Store is the sqlite-backed persistence service for cards, datatypes,
// resources, relationships and graphs.
type Store struct {
	Dir string

	db  *sql.DB
	log *logger.Logger
	now func() time.Time
}

// Open opens (creating if needed) the store in dir and applies the schema.
func Open(ctx context.Context, dir string, log *logger.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: missing dir")
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{Dir: dir, log: log, now: time.Now}
	if err := s.ensure(); err != nil {
		return nil, err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db
	log.Debug("store opened", "path", s.sqlitePath())
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s *Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), sqliteFileName)
}

func (s *Store) nowMs() int64 {
	return s.now().UTC().UnixMilli()
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
