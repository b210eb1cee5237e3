//go:build !duckdb

package duckdb

import (
	"context"
	"errors"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

var errDisabled = errors.New("DuckDB support not compiled in. Rebuild with -tags duckdb")

func init() {
	adapter.Register(&disabledAdapter{})
}

// disabledAdapter keeps "duckdb" resolvable so users get a clear error
// instead of "unknown adapter".
type disabledAdapter struct{}

func (d *disabledAdapter) Name() string                { return "duckdb" }
func (d *disabledAdapter) DefaultPort() int            { return 0 }
func (d *disabledAdapter) Provider() metadata.Provider { return metadata.DuckDB }

func (d *disabledAdapter) Connect(_ context.Context, _ string) (adapter.Connection, error) {
	return nil, errDisabled
}
