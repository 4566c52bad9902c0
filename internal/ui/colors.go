package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named set of colors shared by the TUI and the web dashboard.
type Theme struct {
	Name       string
	Accent     string
	Success    string
	Error      string
	Warn       string
	Muted      string
	Background string
	Text       string
}

// DefaultTheme is used when no theme or an unknown theme is configured.
const DefaultTheme = "spotify"

var themes = map[string]Theme{
	"spotify": {
		Name: "spotify", Accent: "#1DB954", Success: "#1ED760", Error: "#E22134",
		Warn: "#FFA42B", Muted: "#B3B3B3", Background: "#121212", Text: "#FFFFFF",
	},
	"midnight": {
		Name: "midnight", Accent: "#7D56F4", Success: "#04B575", Error: "#FF5F87",
		Warn: "#FFA500", Muted: "#626262", Background: "#0B0E1A", Text: "#E4E4F0",
	},
	"mono": {
		Name: "mono", Accent: "#FFFFFF", Success: "#D0D0D0", Error: "#FFFFFF",
		Warn: "#A8A8A8", Muted: "#767676", Background: "#000000", Text: "#EEEEEE",
	},
}

// ThemeByName looks up a theme case-insensitively, reporting whether it exists.
// Unknown names return the [DefaultTheme].
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return themes[DefaultTheme], false
	}
	return t, true
}

// ThemeNames lists the available themes alphabetically.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title     lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
	bar       lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
}

var _ Painter = (*Palette)(nil)

func NewPalette(t Theme) *Palette {
	return &Palette{
		title:     NewBold(t.Accent).MarginBottom(1),
		ok:        NewBold(t.Success),
		err:       NewBold(t.Error),
		warn:      NewStyle(t.Warn),
		help:      NewEm(t.Muted),
		bar:       NewStyle(t.Accent),
		tab:       NewStyle(t.Muted).Padding(0, 1),
		activeTab: NewBold(t.Background).Background(lipgloss.Color(t.Accent)).Padding(0, 1),
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
