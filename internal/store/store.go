// Package store persists validated sheet records.
//
// Each call to InsertBatch writes one sheet's records as a single
// transaction under a fresh batch ID: the whole batch is stored or none of
// it. Records are stored as JSON documents keyed by their output keys, so
// any configured schema can be persisted without migrations.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/SheetUpload/internal/core"
)

// Store is a record sink with a health check.
type Store interface {
	core.Inserter
	Ping(ctx context.Context) error
	Close() error
}

// ErrUnsupportedURL is returned for database URLs with an unknown scheme.
var ErrUnsupportedURL = errors.New("unsupported database URL")

// Open connects to the database named by url and ensures the records table
// exists. Supported schemes: postgres://, postgresql:// and sqlite://path.
func Open(ctx context.Context, url string, pg PostgresOptions) (Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, url, pg)
	case strings.HasPrefix(url, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
	default:
		return nil, fmt.Errorf("%w: expected postgres:// or sqlite://", ErrUnsupportedURL)
	}
}

// Table is the name of the records table.
const Table = "sheet_records"
