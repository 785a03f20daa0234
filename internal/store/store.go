package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in PRAGMA user_version.
//
//	1: findings are indexed by type name
const schemaVersion = 1

var (
	// ErrNotHistory is returned when a read-only open finds no lint history.
	ErrNotHistory = errors.New("not a lint history database")

	// ErrSchemaTooNew is returned for history written by a newer release.
	ErrSchemaTooNew = errors.New("lint history schema is newer than this release")
)

// Store keeps lint history: runs, the pattern of every type at each run
// and the ambiguities found.
type Store struct {
	db *sql.DB
}

type config struct {
	readOnly    bool
	busyTimeout time.Duration
}

// Option configures Open.
type Option func(*config)

// ReadOnly opens existing history for reading. The schema is checked but
// never created or migrated, and writes through the store fail.
func ReadOnly() Option {
	return func(c *config) { c.readOnly = true }
}

// WithBusyTimeout sets how long a connection waits on a lock held by
// another lint process. The default is 5s.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *config) { c.busyTimeout = d }
}

// Open opens the lint history at path. A writable open creates the file
// and its tables when missing and upgrades older schemas; several lint
// runs may share one file through WAL.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open lint history: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open lint history %s: %w", path, err)
	}

	// Runs are recorded in one transaction; a single connection keeps
	// seq assignment serial.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("open lint history %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func setup(db *sql.DB, cfg config) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	if !cfg.readOnly {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}

	version, err := userVersion(db)
	if err != nil {
		return err
	}
	switch {
	case version > schemaVersion:
		return fmt.Errorf("%w (version %d, supported %d)", ErrSchemaTooNew, version, schemaVersion)
	case cfg.readOnly && version == 0:
		return ErrNotHistory
	case cfg.readOnly:
		_, err := db.Exec("PRAGMA query_only = ON")
		return err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return migrate(db, version)
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// migrate brings history written by older releases up to schemaVersion.
// Version 0 files either predate versioning or were just created.
func migrate(db *sql.DB, from int) error {
	if from < 1 {
		// Files from before the index was part of schema.sql.
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_findings_type ON findings(type_name)`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// pragma reads a pragma's current value as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
