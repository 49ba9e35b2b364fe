package governance

import "github.com/fentz26/taskgov/internal/models"

// Counts holds the number of items per status bucket.
type Counts map[models.Status]int

// CountByStatus puts every item into exactly one bucket. All six buckets are
// present in the result, zero or not.
func CountByStatus(items []models.TaskItem) Counts {
	counts := make(Counts, len(models.Statuses()))
	for _, st := range models.Statuses() {
		counts[st] = 0
	}
	for _, it := range items {
		counts[bucket(it.Status)]++
	}
	return counts
}

// Total returns the sum over all buckets.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// ByName returns the counts keyed by display name.
func (c Counts) ByName() map[string]int {
	out := make(map[string]int, len(c))
	for st, n := range c {
		out[st.String()] = n
	}
	return out
}

func bucket(s models.Status) models.Status {
	if s.Rank() != int(s) {
		return models.StatusUnknown
	}
	return s
}
