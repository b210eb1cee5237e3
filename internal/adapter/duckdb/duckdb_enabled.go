//go:build duckdb

package duckdb

import (
	"context"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

func init() {
	adapter.Register(&duckdbAdapter{})
}

type duckdbAdapter struct{}

func (a *duckdbAdapter) Name() string                { return "duckdb" }
func (a *duckdbAdapter) DefaultPort() int            { return 0 }
func (a *duckdbAdapter) Provider() metadata.Provider { return metadata.DuckDB }

func (a *duckdbAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	// Strip the "duckdb://" prefix if present.
	dsn = strings.TrimPrefix(dsn, "duckdb://")

	db, err := adapter.Open(ctx, "duckdb", "duckdb", dsn)
	if err != nil {
		return nil, err
	}
	return adapter.NewSQLConn(db, "duckdb", metadata.DuckDB, dsn, databaseName(dsn)), nil
}

// databaseName mirrors DuckDB's catalog naming: the file stem, or "memory"
// for an in-memory database.
func databaseName(dsn string) string {
	if i := strings.Index(dsn, "?"); i >= 0 {
		dsn = dsn[:i]
	}
	if dsn == "" || dsn == ":memory:" {
		return "memory"
	}
	base := filepath.Base(dsn)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
