package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fentz26/taskgov/internal/governance"
	"github.com/fentz26/taskgov/internal/models"
)

// NumberPlaceholder stands in for items without an issue number.
const NumberPlaceholder = "-"

// Row is one rendered table row. Text fields hold raw snapshot text; the
// template escapes them on output.
type Row struct {
	Status      string
	StatusClass string
	Kind        string
	Number      string
	URL         string
	Title       string
	Repository  string
	Body        string
}

// SortItems returns a copy of items ordered by status rank, then title.
func SortItems(items []models.TaskItem) []models.TaskItem {
	out := make([]models.TaskItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Status.Rank(), out[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// BuildRow maps one item to its display row.
func BuildRow(it models.TaskItem) Row {
	num := NumberPlaceholder
	if it.Number != nil {
		num = strconv.Itoa(*it.Number)
	}
	return Row{
		Status:      it.Status.String(),
		StatusClass: statusClass(it.Status),
		Kind:        string(governance.Classify(it.Title)),
		Number:      num,
		URL:         it.URL,
		Title:       it.Title,
		Repository:  it.Repository,
		Body:        strings.TrimSpace(it.Body),
	}
}

// BuildRows sorts items and maps each to a row. Nothing is filtered out.
func BuildRows(items []models.TaskItem) []Row {
	sorted := SortItems(items)
	rows := make([]Row, 0, len(sorted))
	for _, it := range sorted {
		rows = append(rows, BuildRow(it))
	}
	return rows
}

func statusClass(s models.Status) string {
	return "st-" + strings.ToLower(s.String())
}
