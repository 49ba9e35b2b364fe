package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/taskgov/internal/models"
	"github.com/fentz26/taskgov/internal/report"
)

var listTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("205"))

// Item implements list.Item for one report row.
type Item struct {
	Row    report.Row
	Status models.Status
}

func (i Item) FilterValue() string { return i.Row.Title + " " + i.Row.Repository }
func (i Item) Title() string       { return i.Row.Title }
func (i Item) Description() string {
	desc := fmt.Sprintf("%s • %s • #%s", statusPill(i.Status), i.Row.Kind, i.Row.Number)
	if i.Row.Repository != "" {
		desc += " • " + i.Row.Repository
	}
	return desc
}

// statusFilters is the tab cycle. The zero entry shows every bucket.
var statusFilters = append([]*models.Status{nil}, statusPtrs()...)

func statusPtrs() []*models.Status {
	var out []*models.Status
	for _, st := range models.Statuses() {
		st := st
		out = append(out, &st)
	}
	return out
}

func filterLabel(f *models.Status) string {
	if f == nil {
		return "all"
	}
	return f.String()
}

func newItemList() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Items [all]"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle
	return l
}

// itemsFor converts rows into list items, keeping only the given bucket
// when filter is set. Rows arrive sorted.
func itemsFor(rows []report.Row, filter *models.Status) []list.Item {
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		st := models.ParseStatus(r.Status)
		if filter != nil && st != *filter {
			continue
		}
		items = append(items, Item{Row: r, Status: st})
	}
	return items
}
