// Package storage keeps an activity journal of train and process attempts.
// Only operation metadata is recorded; audio and video payloads never
// touch disk.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is one journaled operation attempt.
type Entry struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"filename"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "voice-remove.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	journal := &SQLiteJournal{db: db}
	if err := journal.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return journal, nil
}

func (j *SQLiteJournal) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := j.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			operation TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create operations table: %w", err)
	}

	if _, err := j.db.Exec("CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at)"); err != nil {
		return fmt.Errorf("create operations index: %w", err)
	}

	return nil
}

func (j *SQLiteJournal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends an entry. A zero CreatedAt is stamped with the current
// time.
func (j *SQLiteJournal) Record(e Entry) error {
	if strings.TrimSpace(e.Operation) == "" {
		return errors.New("operation is required")
	}
	if e.Outcome != OutcomeSuccess && e.Outcome != OutcomeFailure {
		return fmt.Errorf("unknown outcome %q", e.Outcome)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.Exec(
		"INSERT INTO operations (operation, user_id, filename, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.Operation, e.UserID, e.Filename, e.Outcome, e.Detail, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *SQLiteJournal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.Query(
		"SELECT id, operation, user_id, filename, outcome, detail, created_at FROM operations ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Operation, &e.UserID, &e.Filename, &e.Outcome, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	return entries, nil
}
