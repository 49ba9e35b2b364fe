package controlplane

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/taskgov/internal/connectors"
	"github.com/fentz26/taskgov/internal/snapshot"
	"github.com/fentz26/taskgov/internal/store"
	"github.com/fentz26/taskgov/internal/summary"
)

type scriptedConn struct {
	results []connectors.ExecResult
	calls   [][]string
	stdins  []string
}

func (c *scriptedConn) Name() string                    { return "scripted" }
func (c *scriptedConn) IsAllowed(string, []string) bool { return true }

func (c *scriptedConn) Execute(_ context.Context, _ string, args []string, stdin io.Reader) (*connectors.ExecResult, error) {
	c.calls = append(c.calls, args)
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		c.stdins = append(c.stdins, string(b))
	}
	res := c.results[len(c.calls)-1]
	return &res, nil
}

func newServiceWithStore(t *testing.T, conn connectors.Connector) (*Service, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st, conn, testSettings(dir), nil), st
}

func TestProjectRefArgs(t *testing.T) {
	ref := ProjectRef{Owner: "@me", Number: 3, Limit: 200}
	assert.Equal(t,
		[]string{"project", "item-list", "3", "--owner", "@me", "--format", "json", "--limit", "200"},
		ref.Args())

	ref.Limit = 0
	assert.NotContains(t, ref.Args(), "--limit")
}

func TestFetch(t *testing.T) {
	conn := &scriptedConn{results: []connectors.ExecResult{{Stdout: threeDoing}}}
	svc, st := newServiceWithStore(t, conn)

	snap, err := svc.Fetch(context.Background(), ProjectRef{Owner: "@me", Number: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Processed())
	assert.Equal(t, "item-list", conn.calls[0][1])

	loaded, err := snapshot.Load(svc.Settings().SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.ReportedTotal)

	decisions, err := st.ListDecisions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, ActionFetch, decisions[0].Action)
	assert.Equal(t, "success", decisions[0].Outcome)
}

func TestFetch_GhFailureKeepsSnapshot(t *testing.T) {
	conn := &scriptedConn{results: []connectors.ExecResult{{ExitCode: 1, Stderr: "not logged in"}}}
	svc, st := newServiceWithStore(t, conn)
	require.NoError(t, os.WriteFile(svc.Settings().SnapshotPath, []byte(`{"items": []}`), 0o644))

	_, err := svc.Fetch(context.Background(), ProjectRef{Owner: "@me", Number: 1})
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "not logged in")

	data, err := os.ReadFile(svc.Settings().SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, string(data))

	decisions, err := st.ListDecisions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "failure", decisions[0].Outcome)
}

func TestFetch_InvalidOutput(t *testing.T) {
	conn := &scriptedConn{results: []connectors.ExecResult{{Stdout: "<html>"}}}
	svc, _ := newServiceWithStore(t, conn)

	_, err := svc.Fetch(context.Background(), ProjectRef{Owner: "@me", Number: 1})
	assert.ErrorIs(t, err, snapshot.ErrSnapshotInvalid)
}

func TestFetch_Validation(t *testing.T) {
	svc := NewService(nil, nil, testSettings(t.TempDir()), nil)

	_, err := svc.Fetch(context.Background(), ProjectRef{Number: 1})
	assert.ErrorIs(t, err, ErrBadProject)

	_, err = svc.Fetch(context.Background(), ProjectRef{Owner: "@me", Number: 1})
	assert.ErrorIs(t, err, ErrNoConnector)
}

func TestGenerate_WithoutHistory(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(dir)
	require.NoError(t, os.WriteFile(settings.SnapshotPath, []byte(threeDoing), 0o644))
	svc := NewService(nil, nil, settings, nil)

	res, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, res.OutputPath)

	_, err = svc.Runs(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestGenerate_HistoryFailureIsNotFatal(t *testing.T) {
	svc, st := newServiceWithStore(t, nil)
	require.NoError(t, os.WriteFile(svc.Settings().SnapshotPath, []byte(threeDoing), 0o644))
	st.Close()

	_, err := svc.Generate(context.Background())
	assert.NoError(t, err)
}

const validSummary = "## Inventory Summary\n・- Classification: a\n- Evidence: b\n- Next-action: c\n- Notes: d\n"

func TestPostSummary(t *testing.T) {
	conn := &scriptedConn{results: []connectors.ExecResult{{ExitCode: 0}}}
	svc, st := newServiceWithStore(t, conn)

	action, err := svc.PostSummary(context.Background(), "https://github.com/o/r/issues/1", validSummary)
	require.NoError(t, err)

	assert.Equal(t, summary.ActionEdited, action)
	require.Len(t, conn.stdins, 1)
	assert.NotContains(t, conn.stdins[0], summary.BulletGlyph, "normalized body is posted")

	decisions, err := st.ListDecisions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, ActionSummaryPost, decisions[0].Action)
}

func TestPostSummary_InvalidNotPosted(t *testing.T) {
	conn := &scriptedConn{}
	svc, _ := newServiceWithStore(t, conn)

	_, err := svc.PostSummary(context.Background(), "https://github.com/o/r/issues/1", "- Notes: only")
	assert.ErrorIs(t, err, summary.ErrInvalidSummary)
	assert.Empty(t, conn.calls)
}
