package mssql

import (
	"context"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

func init() {
	adapter.Register(&mssqlAdapter{})
}

// mssqlAdapter implements adapter.Adapter for SQL Server. Both
// sqlserver:// URLs and ADO-style "server=...;database=..." strings are
// accepted; the driver parses either.
type mssqlAdapter struct{}

func (a *mssqlAdapter) Name() string                { return "mssql" }
func (a *mssqlAdapter) DefaultPort() int            { return 1433 }
func (a *mssqlAdapter) Provider() metadata.Provider { return metadata.MSSQL }

func (a *mssqlAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	dbName, err := databaseName(dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql: invalid dsn: %w", err)
	}

	db, err := adapter.Open(ctx, "mssql", "sqlserver", dsn)
	if err != nil {
		return nil, err
	}
	return adapter.NewSQLConn(db, "mssql", metadata.MSSQL, dsn, dbName), nil
}

func databaseName(dsn string) (string, error) {
	cfg, err := msdsn.Parse(dsn)
	if err != nil {
		return "", err
	}
	return cfg.Database, nil
}
