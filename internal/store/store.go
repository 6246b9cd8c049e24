package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	currentSchemaVersion = 2
)

// DateLayout is the persisted form of revenue and release dates.
// Lexicographic order matches chronological order, so range scans
// work directly on the stored text.
const DateLayout = "2006-01-02"

// Store represents the application's persistent state
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*Store, error) {
	// WAL for concurrent readers, busy timeout for the single writer,
	// foreign keys on so referential deletes are restricted by the engine
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity() error {
	var result string
	err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// migrate applies database migrations
func (s *Store) migrate() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version >= currentSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Apply schema v1 - tables and revenue source seed
	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
		if err := s.setSchemaVersion(tx, 1); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	// Apply schema v2 - performance indexes
	if version < 2 {
		if _, err := tx.Exec(schemaV2); err != nil {
			return fmt.Errorf("failed to apply schema v2: %w", err)
		}
		if err := s.setSchemaVersion(tx, 2); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Store) getSchemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}

	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion records a schema version in a transaction
func (s *Store) setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Artist is the root of ownership; every other entity attributes to one
type Artist struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Album belongs to an artist
type Album struct {
	ID          int64
	ArtistID    int64
	Title       string
	ReleaseDate string // DateLayout, empty when unknown
	ReleaseType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Track belongs to an artist and optionally to an album
type Track struct {
	ID          int64
	ArtistID    int64
	AlbumID     int64 // 0 means no album (single)
	Title       string
	DurationSec int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Campaign is a bounded promotional effort revenue can attribute to
type Campaign struct {
	ID        int64
	ArtistID  int64
	Name      string
	StartDate string // DateLayout, empty when open
	EndDate   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RevenueSource is one row of the closed, seeded source taxonomy
type RevenueSource struct {
	ID          int64
	Description string
}

// RevenueEntry is one ledger line. Amount carries exactly two
// fractional digits and may be negative (refunds, chargebacks).
type RevenueEntry struct {
	ID               int64
	ArtistID         int64
	SourceID         int64
	Amount           decimal.Decimal
	RevenueDate      time.Time
	Description      string
	Integration      string
	TrackID          int64 // 0 means unset
	AlbumID          int64
	CampaignID       int64
	ImportTemplateID int64
	RowJSON          string // original-row snapshot for audit
	ColumnMapping    string // snapshot of the resolved mapping
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ImportRun is the audit record written alongside each import batch
type ImportRun struct {
	ID         int64
	RunKey     string // uuid
	TemplateID int64
	Accepted   int
	RowErrors  int
	Duplicates int
	StartedAt  time.Time
	FinishedAt time.Time
}
