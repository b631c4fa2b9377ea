package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/SheetUpload/internal/core"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sheet_records (
	id         UUID PRIMARY KEY,
	batch_id   UUID NOT NULL,
	sheet_name TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sheet_records_batch ON sheet_records (batch_id);
`

var recordColumns = []string{"id", "batch_id", "sheet_name", "data", "created_at"}

// PostgresOptions tunes the connection pool. Zero values keep pgx defaults.
type PostgresOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Postgres stores records in PostgreSQL using COPY.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres creates a pool for url, verifies connectivity and applies
// the schema.
func OpenPostgres(ctx context.Context, url string, opts PostgresOptions) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewPostgres(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing pool. The caller owns schema setup.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

// Migrate creates the records table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create %s: %w", Table, err)
	}
	return nil
}

// InsertBatch copies records into the table inside one transaction.
func (s *Postgres) InsertBatch(ctx context.Context, sheetName string, records []*core.Record) ([]core.PersistedRecord, error) {
	out, err := newBatch(sheetName, records, s.now())
	if err != nil {
		return nil, err
	}

	rows := make([][]any, len(out))
	for i, p := range out {
		data, err := json.Marshal(p.Data)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		rows[i] = []any{
			pgUUID(p.ID),
			pgUUID(p.BatchID),
			pgtype.Text{String: p.SheetName, Valid: true},
			data,
			pgtype.Timestamptz{Time: p.CreatedAt, Valid: true},
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	n, err := tx.CopyFrom(ctx, pgx.Identifier{Table}, recordColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return nil, fmt.Errorf("copy records: %w", err)
	}
	if int(n) != len(rows) {
		return nil, fmt.Errorf("copy records: wrote %d of %d", n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return out, nil
}

// Ping checks database connectivity.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func pgUUID(s string) pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.MustParse(s), Valid: true}
}

// newBatch assigns IDs and a shared batch ID to records.
func newBatch(sheetName string, records []*core.Record, now time.Time) ([]core.PersistedRecord, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q: no records to insert", sheetName)
	}

	batchID := uuid.NewString()
	createdAt := now.UTC().Truncate(time.Microsecond)

	out := make([]core.PersistedRecord, len(records))
	for i, rec := range records {
		out[i] = core.PersistedRecord{
			ID:        uuid.NewString(),
			BatchID:   batchID,
			SheetName: sheetName,
			CreatedAt: createdAt,
			Data:      rec,
		}
	}
	return out, nil
}
