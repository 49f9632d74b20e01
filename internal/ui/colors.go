package ui

import "github.com/charmbracelet/lipgloss"

// Theme names the colors used by each screen.
type Theme struct {
	Brand   lipgloss.Color // YouTube red, used for headings
	Success lipgloss.Color
	Failure lipgloss.Color
	Accent  lipgloss.Color // spinner and device codes
	Muted   lipgloss.Color
}

var defaultTheme = Theme{
	Brand:   "#FF0033",
	Success: "#04B575",
	Failure: "#FF5F5F",
	Accent:  "#FFA500",
	Muted:   "#626262",
}

var styles = newStylesheet(defaultTheme)

type stylesheet struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	code  lipgloss.Style
	box   lipgloss.Style
}

func newStylesheet(t Theme) stylesheet {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return stylesheet{
		title: fg(t.Brand).Bold(true).MarginBottom(1),
		ok:    fg(t.Success).Bold(true),
		err:   fg(t.Failure).Bold(true),
		warn:  fg(t.Accent),
		help:  fg(t.Muted).Italic(true),
		code:  fg(t.Accent).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent),
		box:   lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).BorderForeground(t.Muted),
	}
}
