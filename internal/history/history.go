package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sadopc/sqlmeta/internal/config"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	provider      TEXT NOT NULL,
	database_name TEXT,
	schema_name   TEXT,
	executed_at   DATETIME NOT NULL,
	duration_ms   INTEGER,
	table_count   INTEGER,
	column_count  INTEGER,
	error         TEXT
)`

const selectColumns = `id, provider, database_name, schema_name, executed_at,
	duration_ms, table_count, column_count, error`

// Entry is one recorded introspection run.
type Entry struct {
	ID           string
	Provider     string
	DatabaseName string
	Schema       string
	ExecutedAt   time.Time
	DurationMS   int64
	TableCount   int64
	ColumnCount  int64
	Error        string
}

// Failed reports whether the run ended in an error.
func (e Entry) Failed() bool { return e.Error != "" }

// History provides SQLite-backed run history storage. It implements
// metadata.Recorder.
type History struct {
	db *sql.DB
}

var _ metadata.Recorder = (*History)(nil)

// New opens (or creates) the history database at ConfigDir()/history.db.
func New() (*History, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("history: config dir: %w", err)
	}
	return Open(filepath.Join(dir, "history.db"))
}

// Open opens (or creates) the history database at path and ensures the
// schema exists.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	return &History{db: db}, nil
}

// Record stores run. Calling Record on a nil History is a no-op.
func (h *History) Record(ctx context.Context, run metadata.Run) error {
	if h == nil {
		return nil
	}
	e := Entry{
		ID:           run.ID,
		Provider:     string(run.Provider),
		DatabaseName: run.Database,
		Schema:       run.Schema,
		ExecutedAt:   run.StartedAt.UTC(),
		DurationMS:   run.Duration.Milliseconds(),
		TableCount:   int64(run.Tables),
		ColumnCount:  int64(run.Columns),
	}
	if run.Err != nil {
		e.Error = run.Err.Error()
	}
	return h.Add(ctx, e)
}

// Add inserts a new history entry.
func (h *History) Add(ctx context.Context, e Entry) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (id, provider, database_name, schema_name, executed_at,
			duration_ms, table_count, column_count, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Provider,
		e.DatabaseName,
		e.Schema,
		e.ExecutedAt,
		e.DurationMS,
		e.TableCount,
		e.ColumnCount,
		sql.NullString{String: e.Error, Valid: e.Error != ""},
	)
	if err != nil {
		return fmt.Errorf("history add: %w", err)
	}
	return nil
}

// Search returns entries whose provider, database or schema matches the
// given pattern using SQL LIKE. Results are ordered by most recent first,
// limited to limit rows.
func (h *History) Search(pattern string, limit int) ([]Entry, error) {
	rows, err := h.db.Query(
		`SELECT `+selectColumns+`
		 FROM runs
		 WHERE provider LIKE ? OR database_name LIKE ? OR schema_name LIKE ?
		 ORDER BY executed_at DESC
		 LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history search: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Recent returns the most recent entries, limited to limit rows.
func (h *History) Recent(limit int) ([]Entry, error) {
	rows, err := h.db.Query(
		`SELECT `+selectColumns+`
		 FROM runs
		 ORDER BY executed_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Clear deletes all history entries.
func (h *History) Clear() error {
	if _, err := h.db.Exec(`DELETE FROM runs`); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

// Close closes the underlying database connection. Calling Close on a nil
// History is a no-op.
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	return h.db.Close()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e                    Entry
			dbName, schema, errS sql.NullString
		)
		if err := rows.Scan(
			&e.ID,
			&e.Provider,
			&dbName,
			&schema,
			&e.ExecutedAt,
			&e.DurationMS,
			&e.TableCount,
			&e.ColumnCount,
			&errS,
		); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		e.DatabaseName = dbName.String
		e.Schema = schema.String
		e.Error = errS.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return entries, nil
}
