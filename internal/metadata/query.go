package metadata

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// CatalogQuery is a dialect-specific query returning (table, column, type)
// rows, with the schema name carried in Args.
type CatalogQuery struct {
	SQL  string
	Args []any
}

// BuildQuery returns the catalog query for p.
//
// Every dialect orders by table name and then column position. Catalog
// views carry no stable natural order, so the ORDER BY is what keeps two
// runs against the same database identical. The schema must already be
// resolved (see ResolveSchema); it is always passed as a bound argument.
func BuildQuery(p Provider, schema string) (CatalogQuery, error) {
	var b sq.SelectBuilder
	switch p {
	case MySQL, MariaDB:
		b = mysqlQuery(schema)
	case Postgres:
		b = postgresQuery(schema)
	case MSSQL:
		b = mssqlQuery(schema)
	case DB2:
		b = db2Query(schema)
	case SQLite:
		b = sqliteQuery()
	case Oracle:
		b = oracleQuery(schema)
	case DuckDB:
		b = duckdbQuery(schema)
	default:
		return CatalogQuery{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, string(p))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return CatalogQuery{}, fmt.Errorf("build %s metadata query: %w", p, err)
	}
	return CatalogQuery{SQL: query, Args: args}, nil
}

// MySQL and MariaDB scope to the connection's current database unless a
// schema is given explicitly.
func mysqlQuery(schema string) sq.SelectBuilder {
	b := sq.Select("t.table_name", "c.column_name", "c.data_type").
		From("information_schema.tables t").
		Join("information_schema.columns c ON c.table_schema = t.table_schema AND c.table_name = t.table_name")
	if schema == "" {
		b = b.Where("t.table_schema = DATABASE()")
	} else {
		b = b.Where("t.table_schema = ?", schema)
	}
	return b.OrderBy("t.table_name", "c.ordinal_position").
		PlaceholderFormat(sq.Question)
}

func postgresQuery(schema string) sq.SelectBuilder {
	return sq.Select("t.table_name", "c.column_name", "c.data_type").
		From("information_schema.tables t").
		Join("information_schema.columns c ON c.table_schema = t.table_schema AND c.table_name = t.table_name").
		Where("t.table_schema = lower(?)", schema).
		OrderBy("t.table_name", "c.ordinal_position").
		PlaceholderFormat(sq.Dollar)
}

func mssqlQuery(schema string) sq.SelectBuilder {
	return sq.Select("t.name AS table_name", "c.name AS column_name", "ty.name AS data_type").
		From("sys.tables t").
		Join("sys.columns c ON t.object_id = c.object_id").
		Join("sys.types ty ON c.user_type_id = ty.user_type_id").
		Join("sys.schemas s ON t.schema_id = s.schema_id").
		Where("t.is_ms_shipped = 0").
		Where("t.type = 'U'").
		Where("s.name = lower(?)", schema).
		OrderBy("t.name", "c.column_id").
		PlaceholderFormat(sq.AtP)
}

func db2Query(schema string) sq.SelectBuilder {
	return sq.Select("t.tabname AS table_name", "c.colname AS column_name", "c.typename AS data_type").
		From("SYSCAT.TABLES t").
		Join("SYSCAT.COLUMNS c ON c.tabschema = t.tabschema AND c.tabname = t.tabname").
		Where("t.tabschema = upper(?)", schema).
		OrderBy("t.tabname", "c.colno").
		PlaceholderFormat(sq.Question)
}

// SQLite has a single schema per attached file, so the schema is ignored.
func sqliteQuery() sq.SelectBuilder {
	tables := sq.Select("name AS tbl_name").
		From("sqlite_master").
		Where("type = 'table'").
		// Only the reserved sqlite_ prefix; "_" alone would match any character.
		Where(`name NOT LIKE 'sqlite\_%' ESCAPE '\'`)

	return sq.Select("m.tbl_name AS table_name", "p.name AS column_name", "p.type AS data_type").
		FromSelect(tables, "m").
		Join("pragma_table_xinfo(m.tbl_name) p").
		OrderBy("m.tbl_name", "p.cid").
		PlaceholderFormat(sq.Question)
}

func oracleQuery(schema string) sq.SelectBuilder {
	return sq.Select("t.table_name", "c.column_name", "c.data_type").
		From("all_tables t").
		Join("all_tab_columns c ON c.owner = t.owner AND c.table_name = t.table_name").
		Where("t.owner = upper(?)", schema).
		OrderBy("t.table_name", "c.column_id").
		PlaceholderFormat(sq.Colon)
}

func duckdbQuery(schema string) sq.SelectBuilder {
	return sq.Select("t.table_name", "c.column_name", "c.data_type").
		From("information_schema.tables t").
		Join("information_schema.columns c ON c.table_schema = t.table_schema AND c.table_name = t.table_name").
		Where("t.table_schema = ?", schema).
		OrderBy("t.table_name", "c.ordinal_position").
		PlaceholderFormat(sq.Question)
}
