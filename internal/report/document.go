// Package report assembles the static HTML compliance report from a board
// snapshot.
package report

import (
	"strings"
	"time"

	"github.com/fentz26/taskgov/internal/governance"
	"github.com/fentz26/taskgov/internal/models"
)

// Default presentation settings.
const (
	DefaultTitle        = "Task Governance Report"
	DefaultZoneLabel    = "JST"
	DefaultOffsetHours  = 9
	TimestampLayout     = "2006-01-02 15:04"
	NoViolationsMessage = "none"
)

// Options controls how a document is built.
type Options struct {
	Title     string
	Rules     governance.Rules
	Location  *time.Location
	ZoneLabel string
}

// DefaultOptions returns the rulebook defaults and a +09:00 clock.
func DefaultOptions() Options {
	return Options{
		Title:     DefaultTitle,
		Rules:     governance.DefaultRules(),
		Location:  time.FixedZone(DefaultZoneLabel, DefaultOffsetHours*60*60),
		ZoneLabel: DefaultZoneLabel,
	}
}

// Card is one status summary tile.
type Card struct {
	Label string
	Class string
	Count int
}

// Group is the collapsible section holding one status bucket's rows.
type Group struct {
	Status string
	Count  int
	Open   bool
	Rows   []Row
}

// Document is everything the template needs. It is computed once per run.
type Document struct {
	Title         string
	GeneratedAt   time.Time
	Generated     string
	ReportedTotal int
	Processed     int
	Counts        governance.Counts
	Cards         []Card
	Violations    []models.Violation
	Rows          []Row
	Groups        []Group
}

// Compliant reports whether no rule was violated.
func (d *Document) Compliant() bool {
	return len(d.Violations) == 0
}

// ViolationMessages returns the violation messages in reporting order.
func (d *Document) ViolationMessages() []string {
	return governance.Messages(d.Violations)
}

// Build derives counts, violations and rows from snap. now is the
// generation time; it only affects the timestamp field.
func Build(snap *models.Snapshot, opts Options, now time.Time) *Document {
	if opts.Location == nil {
		opts.Location = DefaultOptions().Location
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	counts := governance.CountByStatus(snap.Items)
	rows := BuildRows(snap.Items)

	return &Document{
		Title:         opts.Title,
		GeneratedAt:   now,
		Generated:     FormatTimestamp(now, opts.Location, opts.ZoneLabel),
		ReportedTotal: snap.ReportedTotal,
		Processed:     snap.Processed(),
		Counts:        counts,
		Cards:         buildCards(counts),
		Violations:    governance.Evaluate(snap.Items, opts.Rules),
		Rows:          rows,
		Groups:        buildGroups(rows),
	}
}

// FormatTimestamp renders t in loc followed by the zone label.
func FormatTimestamp(t time.Time, loc *time.Location, label string) string {
	s := t.In(loc).Format(TimestampLayout)
	if label == "" {
		return s
	}
	return s + " " + label
}

func buildCards(counts governance.Counts) []Card {
	cards := make([]Card, 0, len(models.Statuses()))
	for _, st := range models.Statuses() {
		cards = append(cards, Card{
			Label: st.String(),
			Class: "c-" + strings.ToLower(st.String()),
			Count: counts[st],
		})
	}
	return cards
}

// buildGroups splits already sorted rows into per-status sections. Done and
// Unknown start collapsed; empty buckets are omitted.
func buildGroups(rows []Row) []Group {
	var groups []Group
	for _, st := range models.Statuses() {
		name := st.String()
		var members []Row
		for _, r := range rows {
			if r.Status == name {
				members = append(members, r)
			}
		}
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{
			Status: name,
			Count:  len(members),
			Open:   st != models.StatusDone && st != models.StatusUnknown,
			Rows:   members,
		})
	}
	return groups
}
