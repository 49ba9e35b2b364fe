// Package snapshot loads board exports produced by `gh project item-list`.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fentz26/taskgov/internal/fsutil"
	"github.com/fentz26/taskgov/internal/models"
)

// Sentinel errors for snapshot loading.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotInvalid  = errors.New("snapshot is not valid JSON")
)

// rawSnapshot mirrors the on-disk export. Every field is optional.
type rawSnapshot struct {
	TotalCount int       `json:"totalCount"`
	Items      []rawItem `json:"items"`
}

type rawItem struct {
	Status     *string     `json:"status"`
	Title      *string     `json:"title"`
	Repository *string     `json:"repository"`
	Content    *rawContent `json:"content"`
}

type rawContent struct {
	Body       *string `json:"body"`
	URL        *string `json:"url"`
	Number     *int    `json:"number"`
	Repository *string `json:"repository"`
	Title      *string `json:"title"`
	Type       *string `json:"type"`
}

// Load reads and decodes the snapshot at path.
func Load(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	snap.Source = path
	return snap, nil
}

// Save validates a raw export and writes it to path unchanged. Invalid
// data is rejected before anything touches disk, so the previous snapshot
// survives a bad fetch.
func Save(path string, data []byte) (*models.Snapshot, error) {
	snap, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := fsutil.WriteAtomic(path, data, 0644); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	snap.Source = path
	return snap, nil
}

// Parse decodes snapshot bytes. A missing item list yields an empty
// snapshot; a missing or zero totalCount falls back to the item count.
func Parse(data []byte) (*models.Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	items := make([]models.TaskItem, 0, len(raw.Items))
	for _, ri := range raw.Items {
		items = append(items, ri.toItem())
	}

	total := raw.TotalCount
	if total == 0 {
		total = len(items)
	}

	return &models.Snapshot{
		ReportedTotal: total,
		Items:         items,
	}, nil
}

func (ri rawItem) toItem() models.TaskItem {
	c := ri.Content
	if c == nil {
		c = &rawContent{}
	}

	status := deref(ri.Status)
	title := deref(ri.Title)
	if title == "" {
		title = deref(c.Title)
	}
	repo := strings.TrimSpace(deref(c.Repository))
	if repo == "" {
		repo = strings.TrimSpace(deref(ri.Repository))
	}

	return models.TaskItem{
		Status:     models.ParseStatus(status),
		RawStatus:  status,
		Title:      title,
		Body:       deref(c.Body),
		URL:        deref(c.URL),
		Number:     c.Number,
		Repository: repo,
		Type:       deref(c.Type),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
