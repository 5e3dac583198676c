// Package history records retrieval runs in a local SQLite database.
//
// The store is an audit log: it answers "what did we ask for last week and
// what was missing", it is never consulted during resolution. Resolution
// stays a forward scan of the NAS on every invocation.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is a single retrieval run record.
type Run struct {
	ID         string
	StartedAt  time.Time
	Category   string
	Mode       string // "copy" or "link"
	Requested  int
	Found      int
	Missing    int
	Delivered  int
	MissingIDs []string
	OutDir     string
}

// Store manages the SQLite run-history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the history database at dbPath and
// initializes the schema. The parent directory is created for file-based
// databases; ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks held by a
	// concurrent run instead of failing immediately
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run record, assigning it a fresh ID when empty, and
// returns the stored run.
func (s *Store) RecordRun(run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, category, mode, requested, found, missing, delivered, missing_ids, outdir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Category, run.Mode,
		run.Requested, run.Found, run.Missing, run.Delivered,
		strings.Join(run.MissingIDs, ","), run.OutDir,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the most recent runs, newest first, up to limit.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, category, mode, requested, found, missing, delivered, missing_ids, outdir
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var missingIDs string
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.Category, &run.Mode,
			&run.Requested, &run.Found, &run.Missing, &run.Delivered,
			&missingIDs, &run.OutDir); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if missingIDs != "" {
			run.MissingIDs = strings.Split(missingIDs, ",")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
