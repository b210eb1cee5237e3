//go:build db2

package db2

import (
	"context"
	"fmt"

	_ "github.com/ibmdb/go_ibm_db"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

func init() {
	adapter.Register(&db2Adapter{})
}

type db2Adapter struct{}

func (a *db2Adapter) Name() string                { return "db2" }
func (a *db2Adapter) DefaultPort() int            { return defaultPort }
func (a *db2Adapter) Provider() metadata.Provider { return metadata.DB2 }

func (a *db2Adapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	connStr, dbName, err := normalizeDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("db2: invalid dsn: %w", err)
	}

	db, err := adapter.Open(ctx, "db2", "go_ibm_db", connStr)
	if err != nil {
		return nil, err
	}
	return adapter.NewSQLConn(db, "db2", metadata.DB2, connStr, dbName), nil
}
