//go:build !db2

package db2

import (
	"context"
	"errors"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

var errDisabled = errors.New("DB2 support not compiled in. Install the IBM CLI driver and rebuild with -tags db2")

func init() {
	adapter.Register(&disabledAdapter{})
}

type disabledAdapter struct{}

func (d *disabledAdapter) Name() string                { return "db2" }
func (d *disabledAdapter) DefaultPort() int            { return defaultPort }
func (d *disabledAdapter) Provider() metadata.Provider { return metadata.DB2 }

func (d *disabledAdapter) Connect(_ context.Context, _ string) (adapter.Connection, error) {
	return nil, errDisabled
}
