package governance

import (
	"fmt"
	"regexp"

	"github.com/fentz26/taskgov/internal/models"
)

// Rulebook constants.
const (
	DefaultWIPLimit    = 2
	DefaultPriorityCap = 1
	NextMarker         = "⏭ Next:"
	PriorityToken      = "P1"
)

var (
	// A Blocked item's body must carry a line opening with the marker.
	nextLine = regexp.MustCompile(`(?m)^⏭\s*Next:`)

	// Leading boundary only: "P10" also counts. The rulebook does not say
	// whether longer tokens are meant to match, so the scan stays loose.
	priorityMark = regexp.MustCompile(`(?i)\bP1`)
)

// Rules holds the configurable limits of the rulebook.
type Rules struct {
	WIPLimit    int
	PriorityCap int
}

// DefaultRules returns the rulebook limits.
func DefaultRules() Rules {
	return Rules{
		WIPLimit:    DefaultWIPLimit,
		PriorityCap: DefaultPriorityCap,
	}
}

// Check is a single governance rule.
type Check func(items []models.TaskItem, r Rules) []models.Violation

// Checks returns every rule in reporting order.
func Checks() []Check {
	return []Check{CheckWIP, CheckBlockedNext, CheckPriorityCap}
}

// Evaluate runs every rule and concatenates their violations. An empty
// result means the snapshot is compliant.
func Evaluate(items []models.TaskItem, r Rules) []models.Violation {
	var out []models.Violation
	for _, check := range Checks() {
		out = append(out, check(items, r)...)
	}
	return out
}

// CheckWIP flags more than r.WIPLimit items in Doing. Exactly at the limit
// is compliant.
func CheckWIP(items []models.TaskItem, r Rules) []models.Violation {
	doing := 0
	for _, it := range items {
		if it.Status == models.StatusDoing {
			doing++
		}
	}
	if doing <= r.WIPLimit {
		return nil
	}
	return []models.Violation{{
		Rule:    models.RuleWIP,
		Message: fmt.Sprintf("WIP limit exceeded: %d items in Doing (limit %d)", doing, r.WIPLimit),
	}}
}

// CheckBlockedNext flags every Blocked item whose body has no next-action line.
func CheckBlockedNext(items []models.TaskItem, _ Rules) []models.Violation {
	var out []models.Violation
	for _, it := range items {
		if it.Status != models.StatusBlocked || HasNextAction(it.Body) {
			continue
		}
		out = append(out, models.Violation{
			Rule:    models.RuleBlockedNext,
			Message: fmt.Sprintf("Blocked item has no %s %s (%s)", NextMarker, it.Title, it.URL),
			Title:   it.Title,
			URL:     it.URL,
		})
	}
	return out
}

// CheckPriorityCap flags more than r.PriorityCap items carrying the
// critical-priority token in their title or body.
func CheckPriorityCap(items []models.TaskItem, r Rules) []models.Violation {
	n := CountPriority(items)
	if n <= r.PriorityCap {
		return nil
	}
	return []models.Violation{{
		Rule:    models.RulePriorityCap,
		Message: fmt.Sprintf("Priority cap exceeded (estimated): %d items carry %s (cap %d)", n, PriorityToken, r.PriorityCap),
	}}
}

// HasNextAction reports whether body contains a next-action line.
func HasNextAction(body string) bool {
	return nextLine.MatchString(body)
}

// HasPriority reports whether the item carries the critical-priority token.
func HasPriority(it models.TaskItem) bool {
	return priorityMark.MatchString(it.Title + "\n" + it.Body)
}

// CountPriority counts items carrying the token, each at most once.
func CountPriority(items []models.TaskItem) int {
	n := 0
	for _, it := range items {
		if HasPriority(it) {
			n++
		}
	}
	return n
}

// Messages flattens violations to their messages.
func Messages(vs []models.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Message)
	}
	return out
}
