// Package tui provides the read-only terminal browser for board snapshots.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/taskgov/internal/models"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")
	cyanColor    = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	warnPanelStyle = panelStyle.
			BorderForeground(warningColor)

	okStyle = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginTop(1)
)

var statusColors = map[models.Status]lipgloss.Color{
	models.StatusInbox:   mutedColor,
	models.StatusReady:   cyanColor,
	models.StatusDoing:   primaryColor,
	models.StatusBlocked: errorColor,
	models.StatusDone:    successColor,
	models.StatusUnknown: warningColor,
}

// statusPill renders a colored status marker.
func statusPill(st models.Status) string {
	return lipgloss.NewStyle().
		Foreground(statusColors[st]).
		Render("● " + st.String())
}
