package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/JonMunkholm/SheetUpload/internal/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sheet_records (
	id         TEXT PRIMARY KEY,
	batch_id   TEXT NOT NULL,
	sheet_name TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sheet_records_batch ON sheet_records (batch_id);
`

// SQLite stores records in a local SQLite file. Intended for single-instance
// deployments and development.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s: %w", Table, err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// InsertBatch writes records inside one transaction.
func (s *SQLite) InsertBatch(ctx context.Context, sheetName string, records []*core.Record) ([]core.PersistedRecord, error) {
	out, err := newBatch(sheetName, records, s.now())
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sheet_records (id, batch_id, sheet_name, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range out {
		data, err := json.Marshal(p.Data)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.BatchID, p.SheetName, string(data), p.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			return nil, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return out, nil
}

// Ping checks database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
