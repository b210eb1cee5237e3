package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/sadopc/sqlmeta/internal/metadata"
)

var (
	ErrNotConnected   = errors.New("not connected to database")
	ErrUnknownAdapter = errors.New("unknown adapter")
)

// Adapter creates database connections.
type Adapter interface {
	Connect(ctx context.Context, dsn string) (Connection, error)
	Name() string
	DefaultPort() int
	Provider() metadata.Provider
}

// Connection represents an active database connection. It satisfies
// metadata.Source.
type Connection interface {
	// Querier returns the handle catalog queries run on.
	Querier() metadata.Querier
	Provider() metadata.Provider

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Info
	DatabaseName() string
	AdapterName() string
	DSN() string
}

// Registry holds registered adapters by name.
var Registry = map[string]Adapter{}

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	Registry[a.Name()] = a
}

// Get looks up a registered adapter.
func Get(name string) (Adapter, error) {
	a, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, name)
	}
	return a, nil
}

// Names returns the registered adapter names, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// database/sql backed connection
// ---------------------------------------------------------------------------

// SQLConn is a Connection over a *sql.DB. Adapters whose driver plugs into
// database/sql return one from Connect.
type SQLConn struct {
	db       *sql.DB
	name     string
	provider metadata.Provider
	dsn      string
	dbName   string
	closers  []func()
}

// NewSQLConn wraps db. Extra closers run after db is closed.
func NewSQLConn(db *sql.DB, name string, p metadata.Provider, dsn, dbName string, closers ...func()) *SQLConn {
	return &SQLConn{
		db:       db,
		name:     name,
		provider: p,
		dsn:      dsn,
		dbName:   dbName,
		closers:  closers,
	}
}

func (c *SQLConn) Querier() metadata.Querier   { return c.db }
func (c *SQLConn) Provider() metadata.Provider { return c.provider }
func (c *SQLConn) AdapterName() string         { return c.name }
func (c *SQLConn) DatabaseName() string        { return c.dbName }
func (c *SQLConn) DSN() string                 { return c.dsn }

// DB returns the underlying pool.
func (c *SQLConn) DB() *sql.DB { return c.db }

func (c *SQLConn) Ping(ctx context.Context) error {
	if c.db == nil {
		return ErrNotConnected
	}
	return c.db.PingContext(ctx)
}

func (c *SQLConn) Close() error {
	if c.db == nil {
		return ErrNotConnected
	}
	err := c.db.Close()
	for _, fn := range c.closers {
		fn()
	}
	return err
}

// Open opens a database/sql pool for driverName and verifies it with a
// ping. The pool is closed if the ping fails.
func Open(ctx context.Context, name, driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", name, err)
	}
	return db, nil
}
