// Package runlog keeps the cumulative batch audit log: one row per pipeline
// run with its unmatched counts and error ratio. It is an append-only audit
// artifact, not pipeline state; the pipeline itself stays stateless.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/savegress/outcomesync/pkg/models"
)

// Log is the SQLite-backed run summary log.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the run log under dataPath.
func Open(dataPath string) (*Log, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "runlog.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l := &Log{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return l, nil
}

func (l *Log) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_summaries (
		batch_id TEXT PRIMARY KEY,
		batch_date INTEGER NOT NULL,
		error_records INTEGER NOT NULL,
		total_records INTEGER NOT NULL,
		error_ratio REAL NOT NULL,
		created_at INTEGER DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_run_summaries_date ON run_summaries(batch_date);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Append records one run summary.
func (l *Log) Append(ctx context.Context, s models.RunSummary) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO run_summaries (batch_id, batch_date, error_records, total_records, error_ratio)
		 VALUES (?, ?, ?, ?, ?)`,
		s.BatchID, s.BatchDate.Unix(), s.ErrorRecords, s.TotalRecords, s.ErrorRatio)
	if err != nil {
		return fmt.Errorf("failed to append run summary: %w", err)
	}
	return nil
}

// Recent returns the latest n run summaries, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]models.RunSummary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT batch_id, batch_date, error_records, total_records, error_ratio
		 FROM run_summaries ORDER BY batch_date DESC, created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.RunSummary
	for rows.Next() {
		var s models.RunSummary
		var ts int64
		if err := rows.Scan(&s.BatchID, &ts, &s.ErrorRecords, &s.TotalRecords, &s.ErrorRatio); err != nil {
			return nil, err
		}
		s.BatchDate = time.Unix(ts, 0).UTC()
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}
