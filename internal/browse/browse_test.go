package browse

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/sqlmeta/internal/metadata"
	"github.com/sadopc/sqlmeta/internal/schema"
	"github.com/sadopc/sqlmeta/internal/theme"
)

func sampleResult() *metadata.Result {
	return &metadata.Result{
		Provider: metadata.Postgres,
		Database: "shop",
		Schema:   "public",
		Tables: []schema.Table{
			{Name: "orders", Columns: []schema.Column{{Name: "id", Type: "integer"}, {Name: "total", Type: "numeric"}}},
			{Name: "user_roles", Columns: []schema.Column{{Name: "user_id", Type: "integer"}}},
			{Name: "users", Columns: []schema.Column{{Name: "id", Type: "integer"}, {Name: "email", Type: "text"}}},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T) Model {
	t.Helper()
	m := New(func() (*metadata.Result, error) { return sampleResult(), nil }, theme.Default())
	next, _ := m.Update(LoadedMsg{Result: sampleResult()})
	return next.(Model)
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestInit_RunsLoad(t *testing.T) {
	calls := 0
	m := New(func() (*metadata.Result, error) {
		calls++
		return sampleResult(), nil
	}, nil)

	cmd := m.Init()
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "Init should batch the spinner and the load")

	var got LoadedMsg
	for _, c := range batch {
		if msg, ok := c().(LoadedMsg); ok {
			got = msg
		}
	}
	assert.Equal(t, 1, calls)
	require.NoError(t, got.Err)
	assert.Len(t, got.Result.Tables, 3)
}

func TestView_Loading(t *testing.T) {
	m := New(nil, nil)
	assert.Contains(t, m.View(), "Reading catalog")
}

func TestView_Error(t *testing.T) {
	m := New(nil, nil)
	m = send(t, m, LoadedMsg{Err: errors.New("connection refused")})
	assert.Contains(t, m.View(), "connection refused")

	// Filtering is disabled without a result.
	m = send(t, m, runes("/"))
	assert.False(t, m.Filtering())
}

func TestNavigation(t *testing.T) {
	m := loaded(t)

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "orders", sel.Name)

	m = send(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyDown})
	sel, _ = m.Selected()
	assert.Equal(t, "users", sel.Name)

	// Down at the bottom stays put.
	m = send(t, m, runes("j"))
	sel, _ = m.Selected()
	assert.Equal(t, "users", sel.Name)

	m = send(t, m, runes("k"))
	sel, _ = m.Selected()
	assert.Equal(t, "user_roles", sel.Name)

	m = send(t, m, runes("g"))
	sel, _ = m.Selected()
	assert.Equal(t, "orders", sel.Name)

	m = send(t, m, runes("G"))
	sel, _ = m.Selected()
	assert.Equal(t, "users", sel.Name)
}

func TestFilter(t *testing.T) {
	m := loaded(t)

	m = send(t, m, runes("/"))
	require.True(t, m.Filtering())

	m = send(t, m, runes("u"), runes("s"), runes("e"), runes("r"), runes("s"))
	names := m.VisibleNames()
	require.NotEmpty(t, names)
	assert.Equal(t, "users", names[0])
	assert.NotContains(t, names, "orders")

	// "q" while filtering is text, not quit.
	m = send(t, m, runes("q"))
	assert.True(t, m.Filtering())
	assert.Empty(t, m.VisibleNames())
	assert.Contains(t, m.View(), "no tables match")

	// Backspace then apply keeps the filter but leaves input mode.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Filtering())
	assert.Equal(t, "users", m.VisibleNames()[0])

	// Esc clears it.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []string{"orders", "user_roles", "users"}, m.VisibleNames())
}

func TestFilter_EscWhileTyping(t *testing.T) {
	m := loaded(t)
	m = send(t, m, runes("/"), runes("o"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Filtering())
	assert.Len(t, m.VisibleNames(), 3)
}

func TestQuit(t *testing.T) {
	m := loaded(t)
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "%v should quit", msg)
	}
}

func TestView_Loaded(t *testing.T) {
	m := loaded(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 20}, runes("G"))

	out := m.View()
	for _, want := range []string{"postgres / shop / public", "3 tables, 5 columns", "users", "email", "text"} {
		assert.Contains(t, out, want)
	}
}

func TestView_ScrollsLongLists(t *testing.T) {
	res := &metadata.Result{Provider: metadata.SQLite}
	for i := range 40 {
		res.Tables = append(res.Tables, schema.Table{
			Name:    "t" + strings.Repeat("x", i%3) + string(rune('a'+i%26)),
			Columns: []schema.Column{{Name: "c", Type: "TEXT"}},
		})
	}
	m := New(nil, nil)
	m = send(t, m, LoadedMsg{Result: res}, tea.WindowSizeMsg{Width: 80, Height: 12}, runes("G"))

	assert.Equal(t, 39, m.cursor)
	assert.Equal(t, 39-m.listHeight()+1, m.offset)
	assert.NotPanics(t, func() { _ = m.View() })
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()
	assert.NotEmpty(t, km.ShortHelp())
	assert.Len(t, km.FullHelp(), 2)
}
