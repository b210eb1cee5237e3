// Package browse is the interactive catalog browser: a table list with a
// fuzzy filter on the left and the selected table's columns on the right.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sqlmeta/internal/metadata"
	"github.com/sadopc/sqlmeta/internal/render"
	"github.com/sadopc/sqlmeta/internal/schema"
	"github.com/sadopc/sqlmeta/internal/theme"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// LoadFunc runs the introspection. It is called once from Init.
type LoadFunc func() (*metadata.Result, error)

// LoadedMsg carries the outcome of LoadFunc.
type LoadedMsg struct {
	Result *metadata.Result
	Err    error
}

// entry is a visible table and the name positions the filter matched.
type entry struct {
	index   int
	matched []int
}

// Model is the browser's bubbletea model.
type Model struct {
	load LoadFunc
	th   *theme.Theme
	keys KeyMap
	help help.Model

	spinner   spinner.Model
	filter    textinput.Model
	filtering bool

	loading bool
	err     error
	result  *metadata.Result
	visible []entry

	cursor int
	offset int
	width  int
	height int
}

// New creates a browser that calls load on start.
func New(load LoadFunc, th *theme.Theme) Model {
	if th == nil {
		th = theme.Default()
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter tables"
	ti.PromptStyle = th.FilterPrompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = th.Title

	return Model{
		load:    load,
		th:      th,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		filter:  ti,
		loading: true,
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

// Init starts the spinner and the load.
func (m Model) Init() tea.Cmd {
	load := m.load
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		if load == nil {
			return LoadedMsg{Err: fmt.Errorf("browse: nothing to load")}
		}
		res, err := load()
		return LoadedMsg{Result: res, Err: err}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		m.result = msg.Result
		m.applyFilter()
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.ClearFilter):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	case key.Matches(msg, m.keys.ApplyFilter):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Filter):
		if m.loading || m.err != nil {
			return m, nil
		}
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.ClearFilter):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.applyFilter()
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.visible)-1, 0)
	}
	m.ensureVisible()
	return m, nil
}

// applyFilter recomputes the visible tables and resets the cursor.
func (m *Model) applyFilter() {
	m.visible = nil
	m.cursor, m.offset = 0, 0
	if m.result == nil {
		return
	}

	tables := m.result.Tables
	pattern := m.filter.Value()
	if pattern == "" {
		for i := range tables {
			m.visible = append(m.visible, entry{index: i})
		}
		return
	}
	for _, match := range render.Match(schema.Names(tables), pattern) {
		m.visible = append(m.visible, entry{index: match.Index, matched: match.MatchedIndexes})
	}
}

func (m *Model) listHeight() int {
	// header, blank, footer, help and two border rows
	return max(m.height-6, 1)
}

func (m *Model) ensureVisible() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// Selected returns the table under the cursor.
func (m Model) Selected() (schema.Table, bool) {
	if m.result == nil || m.cursor >= len(m.visible) {
		return schema.Table{}, false
	}
	return m.result.Tables[m.visible[m.cursor].index], true
}

// VisibleNames returns the names of the tables currently listed.
func (m Model) VisibleNames() []string {
	names := make([]string, len(m.visible))
	for i, e := range m.visible {
		names[i] = m.result.Tables[e.index].Name
	}
	return names
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.filtering }

// View renders the browser.
func (m Model) View() string {
	th := m.th

	if m.loading {
		return fmt.Sprintf("\n  %s Reading catalog...\n", m.spinner.View())
	}
	if m.err != nil {
		return "\n  " + th.ErrorText.Render("Error: "+m.err.Error()) + "\n\n  " +
			th.MutedText.Render("press q to quit") + "\n"
	}

	header := th.Title.Render(m.title())

	innerH := m.listHeight()
	listW := max(m.width/3, 20)
	colW := max(m.width-listW-4, 20)

	list := th.FocusedBorder.
		Width(listW).Height(innerH).
		Render(m.renderList(innerH))
	columns := th.UnfocusedBorder.
		Width(colW).Height(innerH).
		Render(m.renderColumns(innerH))

	var footer string
	if m.filtering || m.filter.Value() != "" {
		footer = m.filter.View()
	} else {
		footer = th.MutedText.Render(fmt.Sprintf("%d tables", len(m.visible)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, list, columns),
		footer,
		m.help.View(m.keys),
	)
}

func (m Model) title() string {
	res := m.result
	if res == nil {
		return "sqlmeta"
	}
	parts := []string{string(res.Provider)}
	if res.Database != "" {
		parts = append(parts, res.Database)
	}
	if res.Schema != "" {
		parts = append(parts, res.Schema)
	}
	return fmt.Sprintf("%s  (%d tables, %d columns)",
		strings.Join(parts, " / "), len(res.Tables), schema.ColumnCount(res.Tables))
}

func (m Model) renderList(height int) string {
	if len(m.visible) == 0 {
		if m.filter.Value() != "" {
			return m.th.MutedText.Render("no tables match")
		}
		return m.th.MutedText.Render("no tables")
	}

	end := min(m.offset+height, len(m.visible))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		e := m.visible[i]
		name := m.highlightName(m.result.Tables[e.index].Name, e.matched)
		if i == m.cursor {
			lines = append(lines, m.th.Selected.Render("> ")+name)
		} else {
			lines = append(lines, "  "+name)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) highlightName(name string, matched []int) string {
	if len(matched) == 0 {
		return m.th.TableName.Render(name)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range name {
		if hit[i] {
			b.WriteString(m.th.Match.Render(string(r)))
		} else {
			b.WriteString(m.th.TableName.Render(string(r)))
		}
	}
	return b.String()
}

func (m Model) renderColumns(height int) string {
	t, ok := m.Selected()
	if !ok {
		return ""
	}

	nameW := 0
	for _, c := range t.Columns {
		nameW = max(nameW, lipgloss.Width(c.Name))
	}

	lines := []string{m.th.Title.Render(t.Name)}
	for _, c := range t.Columns {
		if len(lines) >= height {
			shown := len(lines) - 1
			lines = append(lines, m.th.MutedText.Render(fmt.Sprintf("  … %d more", len(t.Columns)-shown)))
			break
		}
		pad := strings.Repeat(" ", nameW-lipgloss.Width(c.Name))
		lines = append(lines, "  "+m.th.ColumnName.Render(c.Name)+pad+"  "+m.th.ColumnType.Render(c.Type))
	}
	return strings.Join(lines, "\n")
}
