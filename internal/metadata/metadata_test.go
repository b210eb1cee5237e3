package metadata

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/sqlmeta/internal/schema"
)

const (
	// testDBError is the error message used for simulated connection failures.
	testDBError = "connection refused"
)

var catalogColumns = []string{"table_name", "column_name", "data_type"}

// countingQuerier records whether a query was attempted.
type countingQuerier struct {
	calls int
}

func (c *countingQuerier) QueryContext(_ context.Context, _ string, _ ...any) (*sql.Rows, error) {
	c.calls++
	return nil, errors.New("unexpected query")
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestGetMetadata_SummaryFormat(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables t")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(catalogColumns).
			AddRow("users", "id", "int").
			AddRow("users", "name", "text").
			AddRow("orders", "id", "int"))

	got, err := GetMetadata(context.Background(), db, Postgres, "")
	require.NoError(t, err)
	assert.Equal(t, "Table 'users' with columns: id (int), name (text); Table 'orders' with columns: id (int)", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMetadata_ZeroRows(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("sqlite_master").
		WillReturnRows(sqlmock.NewRows(catalogColumns))

	got, err := GetMetadata(context.Background(), db, SQLite, "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMetadata_PreservesRowOrder(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("information_schema.columns").
		WillReturnRows(sqlmock.NewRows(catalogColumns).
			AddRow("zebra", "z2", "varchar").
			AddRow("alpha", "a1", "int").
			AddRow("zebra", "z1", "int").
			AddRow("mid", "m", "date").
			AddRow("alpha", "a0", "bigint"))

	got, err := GetMetadata(context.Background(), db, MySQL, "")
	require.NoError(t, err)
	assert.Equal(t,
		"Table 'zebra' with columns: z2 (varchar), z1 (int); "+
			"Table 'alpha' with columns: a1 (int), a0 (bigint); "+
			"Table 'mid' with columns: m (date)",
		got)
}

func TestGetMetadata_QueryFailure(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("sys.tables").
		WithArgs("dbo").
		WillReturnError(errors.New(testDBError))

	got, err := GetMetadata(context.Background(), db, MSSQL, "")
	require.Error(t, err)
	assert.Empty(t, got)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, MSSQL, qe.Provider)
	assert.Contains(t, err.Error(), testDBError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMetadata_RowErrorReturnsNoPartialResult(t *testing.T) {
	db, mock := newMock(t)

	rows := sqlmock.NewRows(catalogColumns).
		AddRow("users", "id", "int").
		AddRow("users", "name", "text").
		RowError(1, errors.New(testDBError))
	mock.ExpectQuery("all_tab_columns").
		WithArgs("HR").
		WillReturnRows(rows)

	got, err := GetMetadata(context.Background(), db, Oracle, "HR")
	require.Error(t, err)
	assert.Empty(t, got)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, qe.Error(), testDBError)
}

func TestGetMetadata_MissingSchema(t *testing.T) {
	for _, p := range []Provider{DB2, Oracle} {
		t.Run(string(p), func(t *testing.T) {
			q := &countingQuerier{}
			_, err := GetMetadata(context.Background(), q, p, "")
			require.ErrorIs(t, err, ErrMissingSchema)
			assert.Zero(t, q.calls, "no query may run before the schema check")
		})
	}
}

func TestGetMetadata_DefaultSchemaApplies(t *testing.T) {
	for _, p := range Providers() {
		if p == DB2 || p == Oracle {
			continue
		}
		t.Run(string(p), func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(catalogColumns))

			_, err := GetMetadata(context.Background(), db, p, "")
			assert.NotErrorIs(t, err, ErrMissingSchema)
			assert.NoError(t, err)
		})
	}
}

func TestGetMetadata_UnsupportedProvider(t *testing.T) {
	q := &countingQuerier{}
	_, err := GetMetadata(context.Background(), q, Provider("informix"), "")
	require.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Zero(t, q.calls)
}

func TestGetMetadata_ExplicitSchemaIsBound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("t.tabschema = upper(?)")).
		WithArgs("sales'; DROP TABLE x; --").
		WillReturnRows(sqlmock.NewRows(catalogColumns).AddRow("ORDERS", "ID", "INTEGER"))

	got, err := GetMetadata(context.Background(), db, DB2, "sales'; DROP TABLE x; --")
	require.NoError(t, err)
	assert.Equal(t, "Table 'ORDERS' with columns: ID (INTEGER)", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMetadata_ContextCancelled(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT").WillReturnError(context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GetMetadata(ctx, db, SQLite, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFold(t *testing.T) {
	rows := []schema.ColumnDescriptor{
		{TableName: "b", ColumnName: "x", DataType: "int"},
		{TableName: "a", ColumnName: "y", DataType: "text"},
		{TableName: "b", ColumnName: "z", DataType: "bool"},
		{TableName: "B", ColumnName: "w", DataType: "int"},
	}

	got := Fold(rows)
	want := []schema.Table{
		{Name: "b", Columns: []schema.Column{{Name: "x", Type: "int"}, {Name: "z", Type: "bool"}}},
		{Name: "a", Columns: []schema.Column{{Name: "y", Type: "text"}}},
		{Name: "B", Columns: []schema.Column{{Name: "w", Type: "int"}}},
	}
	assert.Equal(t, want, got)
	assert.Nil(t, Fold(nil))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		tables []schema.Table
		want   string
	}{
		{"nil", nil, ""},
		{
			name:   "single column",
			tables: []schema.Table{{Name: "t", Columns: []schema.Column{{Name: "c", Type: "int"}}}},
			want:   "Table 't' with columns: c (int)",
		},
		{
			name: "empty type",
			tables: []schema.Table{
				{Name: "loose", Columns: []schema.Column{{Name: "anything", Type: ""}}},
			},
			want: "Table 'loose' with columns: anything ()",
		},
		{
			name: "table without columns skipped",
			tables: []schema.Table{
				{Name: "empty"},
				{Name: "t", Columns: []schema.Column{{Name: "c", Type: "int"}}},
			},
			want: "Table 't' with columns: c (int)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.tables))
		})
	}
}
