package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// sqlStore is the shared implementation for SQLite, Postgres, MySQL and DuckDB.
type sqlStore struct {
	dialect dialect
	db      *sql.DB
}

// newSQLStore opens a pool for the dialect. sql.Open does not connect.
func newSQLStore(d dialect, dsn string) (*sqlStore, error) {
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driverName, err)
	}
	// One writer at a time keeps embedded engines from contending.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlStore{dialect: d, db: db}, nil
}

func (s *sqlStore) Driver() domain.StoreDriver { return s.dialect.driver }

// DB exposes the pool, mainly for inspecting written tables.
func (s *sqlStore) DB() *sql.DB { return s.db }

func (s *sqlStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Write persists t in one transaction. In replace mode the table is
// dropped and recreated from t's schema; in append mode it is created
// only when missing. A failure rolls everything back.
func (s *sqlStore) Write(ctx context.Context, name string, t *etl.Table, mode etl.SyncMode) (int, error) {
	if name == "" {
		return 0, storeErr("write", fmt.Errorf("table name is required"))
	}
	if len(t.Schema.Fields) == 0 {
		return 0, storeErr("write", fmt.Errorf("table %s has no columns", name))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin", err)
	}
	defer tx.Rollback()

	switch mode {
	case etl.SyncAppend:
		if _, err := tx.ExecContext(ctx, s.dialect.createTable(name, t.Schema, true)); err != nil {
			return 0, storeErr("create table", err)
		}
	default:
		if _, err := tx.ExecContext(ctx, s.dialect.dropTable(name)); err != nil {
			return 0, storeErr("drop table", err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.createTable(name, t.Schema, false)); err != nil {
			return 0, storeErr("create table", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert(name, t.Schema))
	if err != nil {
		return 0, storeErr("prepare insert", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Schema.Fields))
	for i, row := range t.Rows {
		for j, v := range row {
			args[j] = s.dialect.bind(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, storeErr(fmt.Sprintf("insert row %d", i+1), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit", err)
	}
	return len(t.Rows), nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", etl.ErrStore, op, err)
}
