package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/taskgov/internal/config"
	"github.com/fentz26/taskgov/internal/snapshot"
	"github.com/fentz26/taskgov/internal/summary"
)

const threeDoing = `{"totalCount": 3, "items": [
  {"status": "Doing", "title": "[Implement] a"},
  {"status": "Doing", "title": "[Implement] b"},
  {"status": "Doing", "title": "[Verify] c"}]}`

const oneReady = `{"totalCount": 1, "items": [{"status": "Ready", "title": "fine"}]}`

// resetFlags restores every flag in the command tree to its default so
// package-level flag variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func workspace(t *testing.T, snapshotJSON string) string {
	t.Helper()
	dir := t.TempDir()
	if snapshotJSON != "" {
		path := filepath.Join(dir, config.DefaultSnapshot)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0644))
	}
	return dir
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(ErrViolations))
}

func TestReport_WritesPageAndHistory(t *testing.T) {
	dir := workspace(t, threeDoing)

	out, err := execute(t, "report", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "WIP limit exceeded")
	assert.Contains(t, out, "Wrote ")

	page, err := os.ReadFile(filepath.Join(dir, config.DefaultOutput))
	require.NoError(t, err)
	assert.Contains(t, string(page), "WIP limit exceeded: 3 items in Doing (limit 2)")

	out, err = execute(t, "history", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "VIOLATIONS")
	assert.Contains(t, out, "3/3")
}

func TestReport_StrictFailsOnViolations(t *testing.T) {
	dir := workspace(t, threeDoing)

	_, err := execute(t, "report", "--config-dir", dir, "--strict", "--no-history")
	require.ErrorIs(t, err, ErrViolations)
	assert.Equal(t, 2, exitCode(err))

	_, statErr := os.Stat(filepath.Join(dir, config.DefaultHistoryDB))
	assert.True(t, os.IsNotExist(statErr), "--no-history must not create the database")
}

func TestReport_OutputFlag(t *testing.T) {
	dir := workspace(t, oneReady)
	target := filepath.Join(t.TempDir(), "site", "report.html")

	_, err := execute(t, "report", "--config-dir", dir, "--no-history", "-o", target)
	require.NoError(t, err)

	_, err = os.Stat(target)
	assert.NoError(t, err)
}

func TestReport_MissingSnapshot(t *testing.T) {
	dir := workspace(t, "")

	_, err := execute(t, "report", "--config-dir", dir, "--no-history")
	require.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	assert.Equal(t, 1, exitCode(err))

	_, statErr := os.Stat(filepath.Join(dir, config.DefaultOutput))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheck(t *testing.T) {
	t.Run("compliant", func(t *testing.T) {
		dir := workspace(t, oneReady)
		out, err := execute(t, "check", "--config-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "compliant")

		_, statErr := os.Stat(filepath.Join(dir, config.DefaultOutput))
		assert.True(t, os.IsNotExist(statErr), "check never writes the report")
	})

	t.Run("violations", func(t *testing.T) {
		dir := workspace(t, threeDoing)
		out, err := execute(t, "check", "--config-dir", dir)
		require.ErrorIs(t, err, ErrViolations)
		assert.Contains(t, out, "1 violation(s)")
	})
}

func TestCheck_RulesFromConfig(t *testing.T) {
	dir := workspace(t, threeDoing)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.DirName), 0755))
	require.NoError(t, os.WriteFile(config.Path(dir), []byte("rules:\n  wip_limit: 3\n"), 0644))

	_, err := execute(t, "check", "--config-dir", dir)
	assert.NoError(t, err)
}

func TestHistory_NoDatabase(t *testing.T) {
	dir := workspace(t, "")
	_, err := execute(t, "history", "--config-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run history")
}

func TestSummaryCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.md")
	text := "## Inventory Summary\n・- Classification: a\n- Evidence: b\n- Next-action: c\n- Notes: d\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	out, err := execute(t, "summary", "check", "--config-dir", dir, "-w", path)
	require.NoError(t, err)
	assert.Contains(t, out, "line 2: stripped")
	assert.Contains(t, out, "OK")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), summary.BulletGlyph)
	assert.Equal(t, summary.Normalize(text), string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "rewrite goes through a renamed temp file")
}

func TestSummaryCheck_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("- Classification: a\n"), 0644))

	_, err := execute(t, "summary", "check", "--config-dir", dir, path)
	assert.ErrorIs(t, err, summary.ErrInvalidSummary)
}

func TestSummaryPost_RequiresIssue(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "summary", "post", "--config-dir", dir, "-")
	assert.ErrorIs(t, err, summary.ErrEmptyIssueURL)
}

func TestFacts_WithoutIssues(t *testing.T) {
	dir := workspace(t, `{"items": [
	  {"status": "Doing", "title": "a", "content": {"repository": "o/r", "url": "https://github.com/o/r/issues/1"}},
	  {"status": "Blocked", "title": "b", "content": {"repository": "o/s"}}]}`)

	tmpl := filepath.Join(dir, "prompt.md")
	require.NoError(t, os.WriteFile(tmpl, []byte("Summarize the repository.\n"), 0644))

	out, err := execute(t, "facts", "--config-dir", dir, "--no-issues", "--no-meta", "--template", tmpl)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 fact sheet(s)")

	data, err := os.ReadFile(filepath.Join(dir, config.DefaultFactsDir, "runlist.tsv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "repo\tissue_url\tfacts_path\trequest_path\toutput_path\n"))

	req, err := os.ReadFile(filepath.Join(dir, config.DefaultFactsDir, "requests", "o__r.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(req), "Summarize the repository.\n\nRepo: o/r\nDefault branch: main\n"))
}

func TestFacts_MissingTemplate(t *testing.T) {
	dir := workspace(t, oneReady)
	_, err := execute(t, "facts", "--config-dir", dir, "--no-issues", "--no-meta", "--template", filepath.Join(dir, "missing.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read prompt template")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--config-dir", filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Contains(t, out, "taskgov ")
}

func TestVersion_IgnoresBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.DirName), 0755))
	require.NoError(t, os.WriteFile(config.Path(dir), []byte("rules: [unterminated"), 0644))

	out, err := execute(t, "version", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "taskgov ")

	_, err = execute(t, "check", "--config-dir", dir)
	assert.Error(t, err, "other commands still load the config")
}

func TestInvalidConfig(t *testing.T) {
	dir := workspace(t, oneReady)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.DirName), 0755))
	require.NoError(t, os.WriteFile(config.Path(dir), []byte("log:\n  level: loud\n"), 0644))

	_, err := execute(t, "check", "--config-dir", dir)
	var verr config.ValidationError
	assert.ErrorAs(t, err, &verr)
}
