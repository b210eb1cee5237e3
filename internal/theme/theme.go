// Package theme provides the styles sqlmeta uses for highlighted SQL,
// rendered catalog tables and the interactive browser. Every visual element
// references a lipgloss.Style held in a Theme so the look can be swapped by
// name from the config file.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds lipgloss.Style values for every element sqlmeta draws.
type Theme struct {
	Name string

	// Catalog
	Title      lipgloss.Style
	TableName  lipgloss.Style
	ColumnName lipgloss.Style
	ColumnType lipgloss.Style
	Selected   lipgloss.Style
	Match      lipgloss.Style

	// SQL Syntax highlighting
	SQLKeyword    lipgloss.Style
	SQLString     lipgloss.Style
	SQLNumber     lipgloss.Style
	SQLComment    lipgloss.Style
	SQLOperator   lipgloss.Style
	SQLFunction   lipgloss.Style
	SQLType       lipgloss.Style
	SQLIdentifier lipgloss.Style

	// Rendered tables
	TableBorder lipgloss.Color
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style

	// General
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
	FilterPrompt    lipgloss.Style
	ErrorText       lipgloss.Style
	MutedText       lipgloss.Style
}

// palette is the small set of colors a Theme is derived from.
type palette struct {
	fg, muted, border, accent lipgloss.Color
	selFg, selBg              lipgloss.Color
	headerBg                  lipgloss.Color
	keyword, str, num         lipgloss.Color
	comment, fn, typ, ident   lipgloss.Color
	match, err                lipgloss.Color
}

func build(name string, p palette) *Theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	border := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(c)
	}

	return &Theme{
		Name: name,

		Title:      fg(p.accent).Bold(true).PaddingLeft(1),
		TableName:  fg(p.typ),
		ColumnName: fg(p.fg),
		ColumnType: fg(p.muted).Italic(true),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(p.selFg).Background(p.selBg),
		Match:      fg(p.match).Bold(true).Underline(true),

		SQLKeyword:    fg(p.keyword).Bold(true),
		SQLString:     fg(p.str),
		SQLNumber:     fg(p.num),
		SQLComment:    fg(p.comment).Italic(true),
		SQLOperator:   fg(p.fg),
		SQLFunction:   fg(p.fn),
		SQLType:       fg(p.typ),
		SQLIdentifier: fg(p.ident),

		TableBorder: p.border,
		TableHeader: fg(p.accent).Bold(true).Background(p.headerBg).Padding(0, 1),
		TableCell:   fg(p.fg).Padding(0, 1),

		FocusedBorder:   border(p.accent),
		UnfocusedBorder: border(p.border),
		FilterPrompt:    fg(p.accent).Bold(true),
		ErrorText:       fg(p.err).Bold(true),
		MutedText:       fg(p.muted),
	}
}

// Themes maps theme names to their definitions.
var Themes = map[string]*Theme{
	"default": build("default", palette{
		fg: "#D4D4D4", muted: "#808080", border: "#3C3C3C", accent: "#569CD6",
		selFg: "#FFFFFF", selBg: "#264F78", headerBg: "#252526",
		keyword: "#569CD6", str: "#CE9178", num: "#B5CEA8",
		comment: "#6A9955", fn: "#DCDCAA", typ: "#4EC9B0", ident: "#9CDCFE",
		match: "#DCDCAA", err: "#F44747",
	}),
	"light": build("light", palette{
		fg: "#1E1E1E", muted: "#A0A0A0", border: "#D4D4D4", accent: "#0451A5",
		selFg: "#FFFFFF", selBg: "#0060C0", headerBg: "#F3F3F3",
		keyword: "#0000FF", str: "#A31515", num: "#098658",
		comment: "#008000", fn: "#795E26", typ: "#267F99", ident: "#001080",
		match: "#AF00DB", err: "#E51400",
	}),
	"monokai": build("monokai", palette{
		fg: "#F8F8F2", muted: "#75715E", border: "#49483E", accent: "#66D9EF",
		selFg: "#F8F8F2", selBg: "#49483E", headerBg: "#272822",
		keyword: "#F92672", str: "#E6DB74", num: "#AE81FF",
		comment: "#75715E", fn: "#A6E22E", typ: "#66D9EF", ident: "#F8F8F2",
		match: "#FD971F", err: "#F92672",
	}),
}

// Default returns the default dark theme.
func Default() *Theme {
	return Themes["default"]
}

// Get returns the named theme, falling back to Default for unknown names.
func Get(name string) *Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Default()
}

// Names returns the available theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
