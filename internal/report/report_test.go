package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/taskgov/internal/models"
	"github.com/fentz26/taskgov/internal/snapshot"
)

var fixedNow = time.Date(2026, 3, 1, 15, 4, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		ReportedTotal: 9,
		Items: []models.TaskItem{
			{Status: models.StatusDone, Title: "[Verify] b done", Number: intPtr(3), Repository: "o/r"},
			{Status: models.StatusUnknown, RawStatus: "Later", Title: "a unknown"},
			{Status: models.StatusDoing, Title: "[Implement] z", Number: intPtr(1), URL: "https://github.com/o/r/issues/1"},
			{Status: models.StatusDoing, Title: "[Implement] a", Number: intPtr(2)},
			{Status: models.StatusInbox, Title: "inbox item", Body: "  body text  \n"},
			{Status: models.StatusBlocked, Title: "stuck", Body: "no marker"},
		},
	}
}

func TestSortItems(t *testing.T) {
	sorted := SortItems(sampleSnapshot().Items)

	var titles []string
	for _, it := range sorted {
		titles = append(titles, it.Title)
	}
	want := []string{"inbox item", "[Implement] a", "[Implement] z", "stuck", "[Verify] b done", "a unknown"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("sort order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortItems_DoesNotMutateInput(t *testing.T) {
	items := sampleSnapshot().Items
	first := items[0].Title

	SortItems(items)

	assert.Equal(t, first, items[0].Title)
}

func TestBuildRow(t *testing.T) {
	row := BuildRow(models.TaskItem{
		Status:     models.StatusDoing,
		Title:      "[implement] thing",
		Number:     intPtr(42),
		URL:        "https://example.com/42",
		Repository: "o/r",
		Body:       "\n body \n",
	})

	assert.Equal(t, Row{
		Status:      "Doing",
		StatusClass: "st-doing",
		Kind:        "Implement",
		Number:      "42",
		URL:         "https://example.com/42",
		Title:       "[implement] thing",
		Repository:  "o/r",
		Body:        "body",
	}, row)
}

func TestBuildRow_Placeholders(t *testing.T) {
	row := BuildRow(models.TaskItem{Status: models.StatusUnknown})

	assert.Equal(t, NumberPlaceholder, row.Number)
	assert.Equal(t, "Unknown", row.Status)
	assert.Equal(t, "st-unknown", row.StatusClass)
	assert.Equal(t, "Unknown", row.Kind)
}

func TestBuildRows_EveryItemOnce(t *testing.T) {
	snap := sampleSnapshot()
	rows := BuildRows(snap.Items)
	assert.Len(t, rows, len(snap.Items))
}

func TestBuild_CountsAndCards(t *testing.T) {
	doc := Build(sampleSnapshot(), DefaultOptions(), fixedNow)

	assert.Equal(t, 9, doc.ReportedTotal)
	assert.Equal(t, 6, doc.Processed)
	assert.Equal(t, doc.Processed, doc.Counts.Total())

	var labels []string
	for _, c := range doc.Cards {
		labels = append(labels, c.Label)
	}
	if diff := cmp.Diff([]string{"Inbox", "Ready", "Doing", "Blocked", "Done", "Unknown"}, labels); diff != "" {
		t.Errorf("card order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, doc.Cards[2].Count)
	assert.Equal(t, 1, doc.Cards[5].Count)
}

func TestBuild_Timestamp(t *testing.T) {
	doc := Build(sampleSnapshot(), DefaultOptions(), fixedNow)
	assert.Equal(t, "2026-03-02 00:04 JST", doc.Generated)
}

func TestBuild_Groups(t *testing.T) {
	doc := Build(sampleSnapshot(), DefaultOptions(), fixedNow)

	require.Len(t, doc.Groups, 5, "Ready has no items and is omitted")
	open := map[string]bool{}
	for _, g := range doc.Groups {
		open[g.Status] = g.Open
	}
	assert.True(t, open["Doing"])
	assert.True(t, open["Blocked"])
	assert.False(t, open["Done"])
	assert.False(t, open["Unknown"])
}

func TestRender_ViolationsPanel(t *testing.T) {
	doc := Build(sampleSnapshot(), DefaultOptions(), fixedNow)
	require.False(t, doc.Compliant())

	out, err := RenderBytes(doc)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `class="panel panel-warn"`)
	assert.NotContains(t, html, `class="panel panel-ok"`)
	assert.Contains(t, html, "Blocked item has no")
}

func TestRender_CompliantPanel(t *testing.T) {
	snap := &models.Snapshot{Items: []models.TaskItem{{Status: models.StatusReady, Title: "fine"}}}
	doc := Build(snap, DefaultOptions(), fixedNow)
	require.True(t, doc.Compliant())

	out, err := RenderBytes(doc)
	require.NoError(t, err)

	assert.Contains(t, string(out), `class="panel panel-ok"`)
	assert.Contains(t, string(out), "<p>"+NoViolationsMessage+"</p>")
}

func TestRender_EscapesSnapshotText(t *testing.T) {
	snap := &models.Snapshot{Items: []models.TaskItem{{
		Status:     models.StatusInbox,
		Title:      `<script>alert("x")</script> & 'q'`,
		Body:       "<img src=x onerror=alert(1)>",
		Repository: "<b>repo</b>",
		URL:        "javascript:alert(1)",
	}}}

	out, err := RenderBytes(Build(snap, DefaultOptions(), fixedNow))
	require.NoError(t, err)
	html := string(out)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, "<b>repo</b>")
	assert.NotContains(t, html, "javascript:alert")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "&amp;")
}

func TestRender_Idempotent(t *testing.T) {
	snap := sampleSnapshot()

	first, err := RenderBytes(Build(snap, DefaultOptions(), fixedNow))
	require.NoError(t, err)
	second, err := RenderBytes(Build(snap, DefaultOptions(), fixedNow.Add(time.Hour)))
	require.NoError(t, err)

	stamp := func(b []byte, doc string) []byte { return bytes.ReplaceAll(b, []byte(doc), []byte("TS")) }
	a := stamp(first, FormatTimestamp(fixedNow, DefaultOptions().Location, "JST"))
	b := stamp(second, FormatTimestamp(fixedNow.Add(time.Hour), DefaultOptions().Location, "JST"))

	assert.NotEqual(t, first, second)
	assert.Equal(t, string(a), string(b), "only the timestamp may differ")
}

func TestGenerate_ThreeDoing(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "items.json")
	outPath := filepath.Join(dir, "docs", "index.html")
	require.NoError(t, os.WriteFile(snapPath, []byte(`{"totalCount": 3, "items": [
	  {"status": "Doing", "title": "a"},
	  {"status": "Doing", "title": "b"},
	  {"status": "Doing", "title": "c"}]}`), 0o644))

	res, err := Generate(snapPath, outPath, DefaultOptions(), fixedNow)
	require.NoError(t, err)

	require.Len(t, res.Document.Violations, 1)
	assert.Equal(t, models.RuleWIP, res.Document.Violations[0].Rule)
	for _, c := range res.Document.Cards {
		if c.Label == "Doing" {
			assert.Equal(t, 3, c.Count)
		} else {
			assert.Equal(t, 0, c.Count, c.Label)
		}
	}

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WIP limit exceeded: 3 items in Doing (limit 2)")
}

func TestGenerate_MissingSnapshotWritesNothing(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "docs", "index.html")

	_, err := Generate(filepath.Join(dir, "missing.json"), outPath, DefaultOptions(), fixedNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_InvalidSnapshotKeepsPreviousReport(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "items.json")
	outPath := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(snapPath, []byte("not json"), 0o644))
	require.NoError(t, os.WriteFile(outPath, []byte("previous"), 0o644))

	_, err := Generate(snapPath, outPath, DefaultOptions(), fixedNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrSnapshotInvalid)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestGenerate_Overwrites(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "items.json")
	outPath := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(snapPath, []byte(`{"items": []}`), 0o644))
	require.NoError(t, os.WriteFile(outPath, []byte("previous"), 0o644))

	_, err := Generate(snapPath, outPath, DefaultOptions(), fixedNow)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "previous"))
	assert.True(t, strings.HasPrefix(string(data), "<!doctype html>"))
}
