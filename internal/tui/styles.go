package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cpcdash/internal/platform"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// Heatmap level colors, darkest to brightest.
var levelColors = [5]lipgloss.Color{
	"#161B22",
	"#0E4429",
	"#006D32",
	"#26A641",
	"#39D353",
}

// Per-platform accent colors for contest dots and cards.
var platformColors = map[string]lipgloss.Color{
	platform.Codeforces: "#1F8ACB",
	platform.LeetCode:   "#FFA116",
	platform.AtCoder:    "#B2B2B2",
}

func platformColor(name string) lipgloss.Color {
	if c, ok := platformColors[name]; ok {
		return c
	}
	return colorMuted
}

// Urgency badge colors indexed by schedule.Urgency.
var urgencyColors = [5]lipgloss.Color{
	"#7AA2F7", // scheduled
	"#2ECC71", // early
	"#F39C12", // mid
	"#FF6B6B", // near deadline
	"#E74C3C", // overdue
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	strikeStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)
)
