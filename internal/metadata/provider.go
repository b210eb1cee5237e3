package metadata

import (
	"fmt"
	"strings"
)

// Provider identifies a database dialect. It selects the catalog query and
// the default schema.
type Provider string

const (
	MySQL    Provider = "mysql"
	MariaDB  Provider = "mariadb"
	Postgres Provider = "postgres"
	MSSQL    Provider = "mssql"
	DB2      Provider = "db2"
	SQLite   Provider = "sqlite"
	Oracle   Provider = "oracle"
	DuckDB   Provider = "duckdb"
)

// Providers returns every supported provider.
func Providers() []Provider {
	return []Provider{MySQL, MariaDB, Postgres, MSSQL, DB2, SQLite, Oracle, DuckDB}
}

var providerAliases = map[string]Provider{
	"postgresql": Postgres,
	"pg":         Postgres,
	"sqlserver":  MSSQL,
	"sqlite3":    SQLite,
}

// ParseProvider converts a user-supplied name into a Provider. Matching is
// case-insensitive and accepts a few common aliases.
func ParseProvider(s string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if p, ok := providerAliases[name]; ok {
		return p, nil
	}
	p := Provider(name)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
	return p, nil
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	for _, known := range Providers() {
		if p == known {
			return true
		}
	}
	return false
}

func (p Provider) String() string { return string(p) }

// DefaultSchema returns the schema used when the caller does not name one.
// db2 and oracle have no usable default.
func DefaultSchema(p Provider) (string, error) {
	switch p {
	case Postgres:
		return "public", nil
	case MSSQL:
		return "dbo", nil
	case DuckDB:
		return "main", nil
	case DB2, Oracle:
		return "", fmt.Errorf("%w for %s", ErrMissingSchema, p)
	case MySQL, MariaDB, SQLite:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, string(p))
	}
}

// ResolveSchema returns schema when set, otherwise the provider default.
func ResolveSchema(p Provider, schema string) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, string(p))
	}
	if schema != "" {
		return schema, nil
	}
	return DefaultSchema(p)
}
