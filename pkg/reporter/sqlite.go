package reporter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/amosWeiskopf/crawlgate/internal/models"
)

// DatabaseFile is the SQLite file created inside the storage directory
const DatabaseFile = "crawlgate.db"

// ErrNoSnapshot is returned when a snapshot kind was never written for a run
var ErrNoSnapshot = errors.New("snapshot not found")

// SQLiteSink keeps the latest snapshot of every kind in a SQLite table, one
// row per (run, kind). Each run gets its own id so earlier runs stay readable.
type SQLiteSink struct {
	db     *sql.DB
	runID  string
	dbPath string
}

// NewSQLiteSink opens or creates the database under dir and starts a new run
func NewSQLiteSink(dir string) (*SQLiteSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dbPath := filepath.Join(dir, DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteSink{
		db:     db,
		runID:  uuid.NewString(),
		dbPath: dbPath,
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// RunID identifies the rows written by this sink
func (s *SQLiteSink) RunID() string {
	return s.runID
}

// Path returns the database file path
func (s *SQLiteSink) Path() string {
	return s.dbPath
}

func (s *SQLiteSink) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		content TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (run_id, kind)
	);`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

func (s *SQLiteSink) WritePageCount(n int) error {
	return s.upsert(KindPageCount, FormatPageCount(n))
}

func (s *SQLiteSink) WriteTopWords(words []models.WordCount) error {
	return s.upsert(KindTopWords, FormatTopWords(words))
}

func (s *SQLiteSink) WriteLongestPage(page models.LongestPage) error {
	return s.upsert(KindLongest, FormatLongestPage(page))
}

func (s *SQLiteSink) WriteSubdomains(rows []models.SubdomainCount) error {
	return s.upsert(KindSubdomains, FormatSubdomains(rows))
}

// Snapshot returns the latest content of kind written by this run
func (s *SQLiteSink) Snapshot(ctx context.Context, kind Kind) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM snapshots WHERE run_id = ? AND kind = ?`,
		s.runID, string(kind),
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", kind, ErrNoSnapshot)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s snapshot: %w", kind, err)
	}
	return content, nil
}

// Close closes the database connection
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteSink) upsert(kind Kind, content string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO snapshots (run_id, kind, content, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (run_id, kind) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`,
		s.runID, string(kind), content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s snapshot: %w", kind, err)
	}
	return nil
}
