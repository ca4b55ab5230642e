// Package history records answered requests in SQLite. The log feeds the
// stats command and the outbound call budget.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeeves-ai/jeeves/pkg/models"
)

// Store is a SQLite-backed request history.
type Store struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS history_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	prompt_hash TEXT NOT NULL,
	model TEXT NOT NULL,
	source TEXT NOT NULL,
	attempts INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_history_time ON history_records(created_at);
CREATE INDEX IF NOT EXISTS idx_history_source_time ON history_records(source, created_at);
`

// New creates a Store and runs auto-migration.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Store{db: db}, nil
}

// Record stores one answered request.
func (s *Store) Record(ctx context.Context, rec models.HistoryRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history_records (request_id, prompt_hash, model, source, attempts, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.PromptHash, rec.Model, string(rec.Source), rec.Attempts, rec.LatencyMs, createdAt,
	)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// CountCallsSince returns how many records since the given time issued at
// least one outbound call. Cache hits and fallbacks that never reached the
// backend are excluded, so the count tracks actual backend usage.
func (s *Store) CountCallsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history_records WHERE attempts > 0 AND created_at >= ?`,
		since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

// Summary aggregates requests and attempts per answer source.
func (s *Store) Summary(ctx context.Context) ([]models.HistorySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COUNT(*), COALESCE(SUM(attempts), 0)
		 FROM history_records GROUP BY source ORDER BY source`,
	)
	if err != nil {
		return nil, fmt.Errorf("history summary: %w", err)
	}
	defer rows.Close()

	var out []models.HistorySummary
	for rows.Next() {
		var sum models.HistorySummary
		var source string
		if err := rows.Scan(&source, &sum.Requests, &sum.Attempts); err != nil {
			return nil, fmt.Errorf("history summary: %w", err)
		}
		sum.Source = models.Source(source)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history summary: %w", err)
	}
	return out, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
