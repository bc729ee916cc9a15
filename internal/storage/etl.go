package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// DefaultRunLogLimit caps ListRunLogs when no limit is given.
const DefaultRunLogLimit = 20

// RunLogStore persists pipeline run history.
type RunLogStore struct {
	db *DB
}

// NewRunLogStore creates a new RunLogStore.
func NewRunLogStore(db *DB) *RunLogStore {
	return &RunLogStore{db: db}
}

// ── Run Logs ───────────────────────────────────────────────

// CreateRunLog inserts log, assigning an ID when it has none.
func (s *RunLogStore) CreateRunLog(ctx context.Context, log *etl.SyncRunLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO etl_run_logs (id, started_at, finished_at, status, stage, table_name, rows_read, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.StartedAt, log.FinishedAt, log.Status, string(log.Stage), log.Table,
		log.RowsRead, log.RowsWritten, log.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}
	return nil
}

// ListRunLogs returns the most recent runs first.
func (s *RunLogStore) ListRunLogs(ctx context.Context, limit int) ([]etl.SyncRunLog, error) {
	if limit <= 0 {
		limit = DefaultRunLogLimit
	}
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, stage, table_name, rows_read, rows_written, error
		 FROM etl_run_logs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list run logs: %w", err)
	}
	defer rows.Close()

	var logs []etl.SyncRunLog
	for rows.Next() {
		var l etl.SyncRunLog
		var stage string
		if err := rows.Scan(&l.ID, &l.StartedAt, &l.FinishedAt, &l.Status, &stage, &l.Table,
			&l.RowsRead, &l.RowsWritten, &l.Error); err != nil {
			return nil, err
		}
		l.Stage = etl.Stage(stage)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
