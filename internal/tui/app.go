package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fentz26/taskgov/internal/models"
	"github.com/fentz26/taskgov/internal/report"
)

// Loader builds a fresh document from the current snapshot.
type Loader func() (*report.Document, error)

type mode int

const (
	modeList mode = iota
	modeDetail
)

// headerHeight is the number of lines above the list.
const headerHeight = 6

// App is the browser model. It never writes anything.
type App struct {
	load      Loader
	doc       *report.Document
	list      list.Model
	detail    detailView
	mode      mode
	filterIdx int
	width     int
	height    int
	message   string
	loading   bool
}

// New creates a browser that reads documents from load.
func New(load Loader) *App {
	return &App{
		load:    load,
		list:    newItemList(),
		detail:  newDetailView(),
		loading: true,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type docLoadedMsg struct{ doc *report.Document }

type errMsg struct{ err error }

func (a *App) reload() tea.Cmd {
	return func() tea.Msg {
		doc, err := a.load()
		if err != nil {
			return errMsg{err}
		}
		return docLoadedMsg{doc}
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.reload()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.mode == modeList && a.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit

		case "esc":
			if a.mode == modeDetail {
				a.mode = modeList
				return a, nil
			}

		case "enter":
			if a.mode == modeList {
				if it, ok := a.list.SelectedItem().(Item); ok {
					a.detail.Show(it)
					a.mode = modeDetail
				}
				return a, nil
			}

		case "tab":
			if a.mode == modeList {
				a.filterIdx = (a.filterIdx + 1) % len(statusFilters)
				a.applyFilter()
				return a, nil
			}

		case "r":
			if a.mode == modeList {
				a.loading = true
				return a, a.reload()
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		body := max(msg.Height-headerHeight-2, 1)
		a.list.SetSize(msg.Width, body)
		a.detail.SetSize(msg.Width, body)
		return a, nil

	case docLoadedMsg:
		a.loading = false
		a.doc = msg.doc
		a.message = ""
		a.applyFilter()
		return a, nil

	case errMsg:
		a.loading = false
		a.message = "Error: " + msg.err.Error()
		return a, nil
	}

	var cmd tea.Cmd
	if a.mode == modeDetail {
		a.detail.viewport, cmd = a.detail.viewport.Update(msg)
	} else {
		a.list, cmd = a.list.Update(msg)
	}
	return a, cmd
}

func (a *App) applyFilter() {
	f := statusFilters[a.filterIdx]
	a.list.Title = fmt.Sprintf("Items [%s]", filterLabel(f))
	if a.doc == nil {
		return
	}
	a.list.SetItems(itemsFor(a.doc.Rows, f))
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.header() + "\n")

	switch {
	case a.loading && a.doc == nil:
		b.WriteString("Loading snapshot...\n")
	case a.mode == modeDetail:
		b.WriteString(a.detail.viewport.View() + "\n")
	default:
		b.WriteString(a.list.View() + "\n")
	}

	b.WriteString(a.statusBar())
	return b.String()
}

func (a *App) header() string {
	title := titleStyle.Render("taskgov")
	if a.doc == nil {
		return title
	}

	var counts []string
	for _, c := range a.doc.Cards {
		counts = append(counts, fmt.Sprintf("%s %d", statusPill(models.ParseStatus(c.Label)), c.Count))
	}
	line := title + "  " + labelStyle.Render(fmt.Sprintf("%d/%d items • %s", a.doc.Processed, a.doc.ReportedTotal, a.doc.Generated))

	var panel string
	if a.doc.Compliant() {
		panel = panelStyle.Render(okStyle.Render("✓ compliant") + "  " + strings.Join(counts, "  "))
	} else {
		msgs := make([]string, 0, len(a.doc.Violations))
		for _, v := range a.doc.Violations {
			msgs = append(msgs, warnStyle.Render("! ")+v.Message)
		}
		panel = warnPanelStyle.Render(strings.Join(counts, "  ") + "\n" + strings.Join(msgs, "\n"))
	}
	return line + "\n" + panel
}

func (a *App) statusBar() string {
	help := "enter: open • tab: filter status • /: search • r: reload • q: quit"
	if a.mode == modeDetail {
		help = "↑/↓: scroll • esc: back • q: quit"
	}
	bar := statusBarStyle.Render(help)
	if a.message != "" {
		bar += "  " + warnStyle.Render(a.message)
	}
	return bar
}
