// Package render writes introspection results in the output formats the
// CLI supports, and narrows them with fuzzy table-name filters.
package render

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/sqlmeta/internal/metadata"
	"github.com/sadopc/sqlmeta/internal/schema"
	"github.com/sadopc/sqlmeta/internal/theme"
)

// Format selects an output encoding.
type Format string

const (
	Text  Format = "text"
	JSON  Format = "json"
	CSV   Format = "csv"
	Table Format = "table"
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates s. An empty string selects Text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Text, nil
	case Text, JSON, CSV, Table:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Document is what gets rendered: one provider/schema and its tables.
type Document struct {
	Provider metadata.Provider `json:"provider"`
	Schema   string            `json:"schema"`
	Tables   []schema.Table    `json:"tables"`
}

// FromResult builds a Document from an introspection result.
func FromResult(res *metadata.Result) Document {
	return Document{Provider: res.Provider, Schema: res.Schema, Tables: res.Tables}
}

// Write renders doc to w in format f. th is only used by Table and may be nil.
func Write(w io.Writer, f Format, doc Document, th *theme.Theme) error {
	switch f {
	case Text, "":
		_, err := fmt.Fprintln(w, metadata.Format(doc.Tables))
		return err
	case JSON:
		return writeJSON(w, doc)
	case CSV:
		return writeCSV(w, doc.Tables)
	case Table:
		return writeTable(w, doc.Tables, th)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func writeJSON(w io.Writer, doc Document) error {
	if doc.Tables == nil {
		doc.Tables = []schema.Table{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeCSV(w io.Writer, tables []schema.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"table", "column", "type"}); err != nil {
		return err
	}
	for _, t := range tables {
		for _, c := range t.Columns {
			if err := cw.Write([]string{t.Name, c.Name, c.Type}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(w io.Writer, tables []schema.Table, th *theme.Theme) error {
	if th == nil {
		th = theme.Default()
	}

	var rows [][]string
	for _, t := range tables {
		for _, c := range t.Columns {
			rows = append(rows, []string{t.Name, c.Name, c.Type})
		}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.TableBorder)).
		Headers("TABLE", "COLUMN", "TYPE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return th.TableHeader
			case col == 0:
				return th.TableName.Padding(0, 1)
			case col == 2:
				return th.ColumnType.Padding(0, 1)
			default:
				return th.TableCell
			}
		})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

// tableNames implements fuzzy.Source over lowercased table names.
type tableNames []string

func (n tableNames) String(i int) string { return n[i] }
func (n tableNames) Len() int            { return len(n) }

// Filter keeps the tables whose name fuzzy-matches pattern, best match
// first. Matching is case-insensitive. An empty pattern returns tables
// unchanged. limit > 0 caps the result.
func Filter(tables []schema.Table, pattern string, limit int) []schema.Table {
	if pattern == "" {
		return tables
	}
	matches := Match(schema.Names(tables), pattern)

	out := make([]schema.Table, 0, len(matches))
	for _, m := range matches {
		out = append(out, tables[m.Index])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Match ranks names against pattern by fuzzy score, highest first. Equal
// scores keep their input order.
func Match(names []string, pattern string) fuzzy.Matches {
	lower := make(tableNames, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(n)
	}

	matches := fuzzy.FindFrom(strings.ToLower(pattern), lower)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})
	return matches
}
