package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/taskgov/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	countStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// renderSummary formats a document for the terminal: counts per status
// followed by either the violations or a compliance line.
func renderSummary(doc *report.Document) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(doc.Title))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Generated %s · %d of %d items processed", doc.Generated, doc.Processed, doc.ReportedTotal)))
	b.WriteString("\n\n")

	cells := make([]string, 0, len(doc.Cards))
	for _, c := range doc.Cards {
		cells = append(cells, fmt.Sprintf("%s %s", labelStyle.Render(c.Label), countStyle.Render(fmt.Sprint(c.Count))))
	}
	b.WriteString(strings.Join(cells, "  "))
	b.WriteString("\n\n")

	if doc.Compliant() {
		b.WriteString(okStyle.Render("✓ compliant, no violations"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(warnStyle.Render(fmt.Sprintf("✗ %d violation(s)", len(doc.Violations))))
	b.WriteString("\n")
	for _, msg := range doc.ViolationMessages() {
		b.WriteString("  - ")
		b.WriteString(msg)
		b.WriteString("\n")
	}
	return b.String()
}
