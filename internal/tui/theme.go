package tui

import "github.com/charmbracelet/lipgloss"

// Theme 是界面的一套配色，两种视觉变体共用同一个视图
type Theme struct {
	Name string

	Title      lipgloss.Color
	Accent     lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Panel      lipgloss.Color
	Code       lipgloss.Color
	Link       lipgloss.Color
}

var (
	DarkTheme = Theme{
		Name:       "dark",
		Title:      lipgloss.Color("#FFFFFF"),
		Accent:     lipgloss.Color("#3B82F6"),
		Foreground: lipgloss.Color("#E5E7EB"),
		Muted:      lipgloss.Color("#9CA3AF"),
		Error:      lipgloss.Color("#F87171"),
		Border:     lipgloss.Color("#374151"),
		Panel:      lipgloss.Color("#1F2937"),
		Code:       lipgloss.Color("252"),
		Link:       lipgloss.Color("39"),
	}

	LightTheme = Theme{
		Name:       "light",
		Title:      lipgloss.Color("#111827"),
		Accent:     lipgloss.Color("#1D4ED8"),
		Foreground: lipgloss.Color("#1F2937"),
		Muted:      lipgloss.Color("#6B7280"),
		Error:      lipgloss.Color("#DC2626"),
		Border:     lipgloss.Color("#D1D5DB"),
		Panel:      lipgloss.Color("#F9FAFB"),
		Code:       lipgloss.Color("236"),
		Link:       lipgloss.Color("25"),
	}
)

// ThemeByName 按名称查找配色，未知名称回退到 dark
func ThemeByName(name string) Theme {
	switch name {
	case LightTheme.Name:
		return LightTheme
	default:
		return DarkTheme
	}
}

type styles struct {
	title       lipgloss.Style
	panel       lipgloss.Style
	header      lipgloss.Style
	label       lipgloss.Style
	muted       lipgloss.Style
	button      lipgloss.Style
	placeholder lipgloss.Style
	errorLine   lipgloss.Style
	link        lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Title).
			Padding(0, 1).
			MarginBottom(1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		label:  lipgloss.NewStyle().Foreground(t.Foreground),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
		button: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(t.Accent).
			Padding(0, 2),
		placeholder: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		errorLine:   lipgloss.NewStyle().Foreground(t.Error),
		link:        lipgloss.NewStyle().Foreground(t.Link).Underline(true),
	}
}
