package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// detailView renders one item with its body in a scrollable viewport.
type detailView struct {
	viewport viewport.Model
	item     *Item
}

func newDetailView() detailView {
	return detailView{viewport: viewport.New(80, 20)}
}

func (d *detailView) SetSize(w, h int) {
	d.viewport.Width = w
	d.viewport.Height = h
}

// Show loads item into the viewport.
func (d *detailView) Show(item Item) {
	d.item = &item
	d.viewport.SetContent(renderDetail(item, d.viewport.Width))
	d.viewport.GotoTop()
}

func renderDetail(item Item, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(item.Row.Title) + "\n")
	fmt.Fprintf(&b, "%s  %s\n", statusPill(item.Status), labelStyle.Render(item.Row.Kind))
	if item.Row.Repository != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Repository:"), item.Row.Repository)
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Number:"), item.Row.Number)
	if item.Row.URL != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("URL:"), item.Row.URL)
	}

	b.WriteString(sectionStyle.Render("Body") + "\n")
	if item.Row.Body == "" {
		b.WriteString(helpStyle.Render("(empty)"))
		return b.String()
	}
	b.WriteString(renderMarkdown(item.Row.Body, width))
	return b.String()
}

// renderMarkdown falls back to the raw text if glamour cannot render it.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}
