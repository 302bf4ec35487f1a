// Package ledger records pipeline runs in SQLite: which corpus formats are
// known and, for every stage run, its inputs, line counts and tallies.
// Word lists and isogram outputs themselves stay flat text files.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/isograms/pkg/corpus"
	_ "modernc.org/sqlite"
)

// Format represents a row from the corpus_formats table.
type Format struct {
	ID          string
	Description string
	UpdatedAt   int64
}

// Result is what a finished run reports.
type Result struct {
	Lines        int64
	Malformed    int64
	BadNumber    int64
	Filtered     int64
	Records      int64 // rows written
	TotalTokens  int64
	TotalVolumes int64
	Isograms     int64
	Palindromes  int64
	Tautonyms    int64
}

// Run represents a row from the runs table.
type Run struct {
	ID         int64
	Stage      string
	Format     string
	Input      string
	Output     string
	StartedAt  int64
	FinishedAt *int64
	Status     string
	Error      *string
	Result
}

// Ledger manages the run ledger database.
type Ledger struct {
	db *sql.DB
}

var ddl = []string{`CREATE TABLE IF NOT EXISTS corpus_formats (
	format_id    TEXT PRIMARY KEY,
	description  TEXT NOT NULL,
	updated_at   INTEGER NOT NULL
)`, `CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	stage          TEXT NOT NULL,
	format_id      TEXT NOT NULL DEFAULT '',
	input          TEXT NOT NULL,
	output         TEXT NOT NULL,
	started_at     INTEGER NOT NULL,
	finished_at    INTEGER,
	status         TEXT NOT NULL DEFAULT 'running',
	error          TEXT,
	lines          INTEGER NOT NULL DEFAULT 0,
	malformed      INTEGER NOT NULL DEFAULT 0,
	bad_number     INTEGER NOT NULL DEFAULT 0,
	filtered       INTEGER NOT NULL DEFAULT 0,
	records        INTEGER NOT NULL DEFAULT 0,
	total_tokens   INTEGER NOT NULL DEFAULT 0,
	total_volumes  INTEGER NOT NULL DEFAULT 0,
	isograms       INTEGER NOT NULL DEFAULT 0,
	palindromes    INTEGER NOT NULL DEFAULT 0,
	tautonyms      INTEGER NOT NULL DEFAULT 0
)`}

// Open opens (or creates) the SQLite database at path and ensures the
// tables exist.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create ledger tables: %w", err)
		}
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Seed inserts a row for each format (INSERT OR IGNORE, existing rows are
// left untouched).
func (l *Ledger) Seed(formats []corpus.Format) error {
	const q = `INSERT OR IGNORE INTO corpus_formats (format_id, description, updated_at) VALUES (?, ?, ?)`

	now := time.Now().Unix()
	for _, f := range formats {
		if _, err := l.db.Exec(q, f.ID(), f.Description(), now); err != nil {
			return fmt.Errorf("seed %s: %w", f.ID(), err)
		}
	}
	return nil
}

// ListFormats returns all rows from corpus_formats ordered by format_id.
func (l *Ledger) ListFormats() ([]Format, error) {
	rows, err := l.db.Query(`SELECT format_id, description, updated_at FROM corpus_formats ORDER BY format_id`)
	if err != nil {
		return nil, fmt.Errorf("list formats: %w", err)
	}
	defer rows.Close()

	var formats []Format
	for rows.Next() {
		var f Format
		if err := rows.Scan(&f.ID, &f.Description, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan format: %w", err)
		}
		formats = append(formats, f)
	}
	return formats, rows.Err()
}

// Begin records the start of a stage run and returns its ID.
func (l *Ledger) Begin(stage, format, input, output string) (int64, error) {
	res, err := l.db.Exec(
		`INSERT INTO runs (stage, format_id, input, output, started_at) VALUES (?, ?, ?, ?, ?)`,
		stage, format, input, output, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// Finish persists the outcome of run id. A non-nil runErr marks it failed.
func (l *Ledger) Finish(id int64, r Result, runErr error) error {
	status := "ok"
	var errPtr *string
	if runErr != nil {
		status = "failed"
		msg := runErr.Error()
		errPtr = &msg
	}
	res, err := l.db.Exec(`UPDATE runs SET
		finished_at = ?, status = ?, error = ?,
		lines = ?, malformed = ?, bad_number = ?, filtered = ?, records = ?,
		total_tokens = ?, total_volumes = ?, isograms = ?, palindromes = ?, tautonyms = ?
		WHERE id = ?`,
		time.Now().Unix(), status, errPtr,
		r.Lines, r.Malformed, r.BadNumber, r.Filtered, r.Records,
		r.TotalTokens, r.TotalVolumes, r.Isograms, r.Palindromes, r.Tautonyms,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %d not found", id)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (l *Ledger) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.Query(`SELECT id, stage, format_id, input, output, started_at, finished_at,
		status, error, lines, malformed, bad_number, filtered, records,
		total_tokens, total_volumes, isograms, palindromes, tautonyms
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Stage, &r.Format, &r.Input, &r.Output, &r.StartedAt, &r.FinishedAt,
			&r.Status, &r.Error, &r.Lines, &r.Malformed, &r.BadNumber, &r.Filtered, &r.Records,
			&r.TotalTokens, &r.TotalVolumes, &r.Isograms, &r.Palindromes, &r.Tautonyms); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
