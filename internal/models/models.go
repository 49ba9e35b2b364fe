// Package models defines the core domain types for taskgov.
package models

import "time"

// Status is the board column an item sits in. The integer value is the
// display and sort rank; StatusUnknown always sorts last.
type Status int

const (
	StatusInbox Status = iota
	StatusReady
	StatusDoing
	StatusBlocked
	StatusDone
	StatusUnknown
)

var statusNames = [...]string{
	StatusInbox:   "Inbox",
	StatusReady:   "Ready",
	StatusDoing:   "Doing",
	StatusBlocked: "Blocked",
	StatusDone:    "Done",
	StatusUnknown: "Unknown",
}

// Statuses returns every bucket in display order, Unknown last.
func Statuses() []Status {
	return []Status{StatusInbox, StatusReady, StatusDoing, StatusBlocked, StatusDone, StatusUnknown}
}

// ParseStatus maps a raw snapshot value onto a bucket. Only the five board
// column names match; anything else, including "", is StatusUnknown.
func ParseStatus(s string) Status {
	for st := StatusInbox; st < StatusUnknown; st++ {
		if statusNames[st] == s {
			return st
		}
	}
	return StatusUnknown
}

// String returns the display name of the bucket.
func (s Status) String() string {
	if s < StatusInbox || s > StatusUnknown {
		return statusNames[StatusUnknown]
	}
	return statusNames[s]
}

// Rank returns the sort rank of the bucket.
func (s Status) Rank() int {
	if s < StatusInbox || s > StatusUnknown {
		return int(StatusUnknown)
	}
	return int(s)
}

// Kind is the work type declared by a leading "[Kind]" tag in a title.
type Kind string

const (
	KindInvestigate Kind = "Investigate"
	KindDecide      Kind = "Decide"
	KindImplement   Kind = "Implement"
	KindVerify      Kind = "Verify"
	KindUnknown     Kind = "Unknown"
)

// TaskItem is one row of a board snapshot. It is never mutated after loading.
type TaskItem struct {
	Status     Status `json:"-"`
	RawStatus  string `json:"status,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	URL        string `json:"url,omitempty"`
	Number     *int   `json:"number,omitempty"`
	Repository string `json:"repository,omitempty"`
	Type       string `json:"type,omitempty"` // platform content type: Issue, PullRequest, DraftIssue
}

// Snapshot is a point-in-time export of a board.
type Snapshot struct {
	ReportedTotal int        `json:"reported_total"`
	Items         []TaskItem `json:"items"`
	Source        string     `json:"source,omitempty"`
}

// Processed returns the number of items actually present in the snapshot.
func (s *Snapshot) Processed() int {
	return len(s.Items)
}

// RuleID identifies a governance rule.
type RuleID string

const (
	RuleWIP         RuleID = "wip"
	RuleBlockedNext RuleID = "blocked-next"
	RulePriorityCap RuleID = "priority-cap"
)

// Violation is one human-readable rule breach.
type Violation struct {
	Rule    RuleID `json:"rule"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Run records one report generation.
type Run struct {
	ID            string         `json:"id"`
	GeneratedAt   time.Time      `json:"generated_at"`
	SnapshotPath  string         `json:"snapshot_path"`
	InputsHash    string         `json:"inputs_hash"`
	ReportedTotal int            `json:"reported_total"`
	Processed     int            `json:"processed"`
	Counts        map[string]int `json:"counts"`
	Violations    []string       `json:"violations"`
	OutputPath    string         `json:"output_path"`
}

// Compliant reports whether the run produced no violations.
func (r *Run) Compliant() bool {
	return len(r.Violations) == 0
}

// Decision is an audit record for a state-changing action such as a
// snapshot fetch or a summary post.
type Decision struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
