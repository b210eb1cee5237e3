package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/metadata"

	_ "modernc.org/sqlite"
)

func init() {
	adapter.Register(&sqliteAdapter{})
}

// sqliteAdapter implements adapter.Adapter for SQLite databases.
type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string                { return "sqlite" }
func (a *sqliteAdapter) DefaultPort() int            { return 0 }
func (a *sqliteAdapter) Provider() metadata.Provider { return metadata.SQLite }

func (a *sqliteAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	dsn = normalizeDSN(dsn)

	db, err := adapter.Open(ctx, "sqlite", "sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every pooled connection to :memory: is a separate database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite enable foreign keys: %w", err)
	}

	return adapter.NewSQLConn(db, "sqlite", metadata.SQLite, dsn, databaseName(dsn)), nil
}

// normalizeDSN strips common SQLite URI prefixes.
func normalizeDSN(dsn string) string {
	if strings.HasPrefix(dsn, "sqlite://") {
		return strings.TrimPrefix(dsn, "sqlite://")
	}
	if strings.HasPrefix(dsn, "file:") {
		return strings.TrimPrefix(dsn, "file:")
	}
	return dsn
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, ":memory:?")
}

// databaseName is the file's base name without query parameters.
func databaseName(dsn string) string {
	if isMemory(dsn) {
		return ":memory:"
	}
	if i := strings.Index(dsn, "?"); i >= 0 {
		dsn = dsn[:i]
	}
	if dsn == "" {
		return ""
	}
	return filepath.Base(dsn)
}
