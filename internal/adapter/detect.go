package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/sqlmeta/internal/metadata"
)

// Detect guesses the adapter name from the shape of dsn. It returns "" when
// nothing matches.
func Detect(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "mysql://"):
		return "mysql"
	case strings.HasPrefix(lower, "mariadb://"):
		return "mariadb"
	case strings.HasPrefix(lower, "sqlserver://") || strings.HasPrefix(lower, "mssql://"):
		return "mssql"
	case strings.HasPrefix(lower, "oracle://"):
		return "oracle"
	case strings.HasPrefix(lower, "db2://") || strings.Contains(lower, "protocol=tcpip"):
		return "db2"
	case strings.HasPrefix(lower, "sqlite://") || strings.HasPrefix(lower, "file:"):
		return "sqlite"
	case strings.HasPrefix(lower, "duckdb://"):
		return "duckdb"
	case lower == ":memory:":
		return "sqlite"
	case strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite"
	case strings.HasSuffix(lower, ".duckdb"):
		return "duckdb"
	case strings.Contains(lower, "@tcp("):
		return "mysql"
	case strings.HasPrefix(lower, "server=") || strings.Contains(lower, ";server="):
		return "mssql"
	}
	// Default: try as PostgreSQL DSN
	if strings.Contains(dsn, "@") {
		return "postgres"
	}
	return ""
}

// Resolve maps a user-supplied adapter name, including provider aliases
// such as "pg" or "sqlserver", to a registered adapter.
func Resolve(name string) (Adapter, error) {
	if a, ok := Registry[strings.ToLower(name)]; ok {
		return a, nil
	}
	if p, err := metadata.ParseProvider(name); err == nil {
		return Get(string(p))
	}
	return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownAdapter, name, strings.Join(Names(), ", "))
}

// ProviderFor returns the provider behind an adapter name, or behind dsn
// when name is empty. It needs no registered adapter.
func ProviderFor(name, dsn string) (metadata.Provider, bool) {
	if name == "" {
		name = Detect(dsn)
	}
	p, err := metadata.ParseProvider(name)
	if err != nil {
		return "", false
	}
	return p, true
}

// CheckSchema reports ErrMissingSchema and similar schema errors for the
// target before any connection is attempted. Unknown adapters pass; Dial
// reports them.
func CheckSchema(name, dsn, schema string) error {
	p, ok := ProviderFor(name, dsn)
	if !ok {
		return nil
	}
	_, err := metadata.ResolveSchema(p, schema)
	return err
}

// Dial connects to dsn with the named adapter. An empty name is detected
// from dsn.
func Dial(ctx context.Context, name, dsn string) (Connection, error) {
	if name == "" {
		name = Detect(dsn)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: cannot detect adapter from dsn", ErrUnknownAdapter)
	}
	a, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	return a.Connect(ctx, dsn)
}
