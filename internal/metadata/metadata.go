// Package metadata summarizes the tables and columns of a database by
// running a dialect-specific system-catalog query.
package metadata

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sadopc/sqlmeta/internal/schema"
)

// Querier runs a read-only query. *sql.DB, *sql.Conn and *sql.Tx all
// satisfy it. Serializing concurrent use is the implementation's concern.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// GetMetadata returns a summary of every table and its columns, e.g.
//
//	Table 'users' with columns: id (int), name (text); Table 'orders' with columns: id (int)
//
// An empty schema selects the provider default. db2 and oracle require an
// explicit schema.
func GetMetadata(ctx context.Context, q Querier, p Provider, schemaName string) (string, error) {
	rows, err := Fetch(ctx, q, p, schemaName)
	if err != nil {
		return "", err
	}
	return Format(Fold(rows)), nil
}

// Fetch resolves the schema, runs the catalog query and returns its rows in
// catalog order. Provider and schema errors are reported before any query
// executes.
func Fetch(ctx context.Context, q Querier, p Provider, schemaName string) ([]schema.ColumnDescriptor, error) {
	resolved, err := ResolveSchema(p, schemaName)
	if err != nil {
		return nil, err
	}
	cq, err := BuildQuery(p, resolved)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, cq.SQL, cq.Args...)
	if err != nil {
		return nil, &QueryError{Provider: p, Cause: err}
	}
	defer rows.Close()

	var out []schema.ColumnDescriptor
	for rows.Next() {
		var table, column, dataType sql.NullString
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return nil, &QueryError{Provider: p, Cause: err}
		}
		out = append(out, schema.ColumnDescriptor{
			TableName:  table.String,
			ColumnName: column.String,
			DataType:   dataType.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Provider: p, Cause: err}
	}
	return out, nil
}

// Fold groups rows by table name. Tables keep first-seen order and columns
// keep row order.
func Fold(rows []schema.ColumnDescriptor) []schema.Table {
	index := make(map[string]int)
	var tables []schema.Table

	for _, r := range rows {
		i, ok := index[r.TableName]
		if !ok {
			i = len(tables)
			index[r.TableName] = i
			tables = append(tables, schema.Table{Name: r.TableName})
		}
		tables[i].Columns = append(tables[i].Columns, schema.Column{Name: r.ColumnName, Type: r.DataType})
	}
	return tables
}

// Format renders tables as "Table '<name>' with columns: a (t), b (t)",
// joined with "; ". Tables without columns are skipped.
func Format(tables []schema.Table) string {
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		if len(t.Columns) == 0 {
			continue
		}
		entries := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			entries[i] = c.Name + " (" + c.Type + ")"
		}
		entries[0] = "Table '" + t.Name + "' with columns: " + entries[0]
		parts = append(parts, strings.Join(entries, ", "))
	}
	return strings.Join(parts, "; ")
}
