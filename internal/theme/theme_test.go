package theme

import (
	"reflect"
	"testing"
)

func TestThemes_NamesMatch(t *testing.T) {
	for name, th := range Themes {
		if th.Name != name {
			t.Errorf("theme registered as %q has Name=%q", name, th.Name)
		}
	}
}

func TestNames(t *testing.T) {
	want := []string{"default", "light", "monokai"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"default", "default"},
		{"light", "light"},
		{"monokai", "monokai"},
		{"nonexistent", "default"},
		{"", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			th := Get(tt.in)
			if th == nil {
				t.Fatalf("Get(%q) returned nil", tt.in)
			}
			if th.Name != tt.want {
				t.Errorf("Get(%q).Name = %q, want %q", tt.in, th.Name, tt.want)
			}
		})
	}
}

func TestTheme_StylesRender(t *testing.T) {
	for name, th := range Themes {
		t.Run(name, func(t *testing.T) {
			pairs := []struct {
				label string
				out   string
			}{
				{"Title", th.Title.Render("tables")},
				{"TableName", th.TableName.Render("users")},
				{"ColumnType", th.ColumnType.Render("integer")},
				{"Selected", th.Selected.Render("sel")},
				{"Match", th.Match.Render("u")},
				{"SQLKeyword", th.SQLKeyword.Render("SELECT")},
				{"SQLString", th.SQLString.Render("'x'")},
				{"SQLComment", th.SQLComment.Render("-- note")},
				{"TableHeader", th.TableHeader.Render("table")},
				{"FocusedBorder", th.FocusedBorder.Render("focused")},
				{"ErrorText", th.ErrorText.Render("error")},
			}
			for _, p := range pairs {
				if p.out == "" {
					t.Errorf("%s rendered empty", p.label)
				}
			}
		})
	}
}

func TestThemes_AreDistinct(t *testing.T) {
	d, l, m := Themes["default"], Themes["light"], Themes["monokai"]
	if d == l || d == m || l == m {
		t.Error("themes should be distinct objects")
	}
	if d.TableBorder == l.TableBorder {
		t.Error("default and light should use different border colors")
	}
}
