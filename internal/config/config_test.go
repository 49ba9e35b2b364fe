package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/taskgov/internal/governance"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, DirName), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte(body), 0o644))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultSnapshot), cfg.Snapshot)
	assert.Equal(t, filepath.Join(dir, DefaultOutput), cfg.Output)
	assert.Equal(t, governance.DefaultRules(), cfg.GovernanceRules())
	assert.Equal(t, 9, cfg.Timezone.OffsetHours)
	assert.Equal(t, "JST", cfg.Timezone.Label)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
output: /tmp/report.html
rules:
  wip_limit: 4
timezone:
  offset_hours: 0
  label: UTC
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/report.html", cfg.Output, "absolute paths are kept")
	assert.Equal(t, 4, cfg.Rules.WIPLimit)
	assert.Equal(t, governance.DefaultPriorityCap, cfg.Rules.PriorityCap, "unset keys keep defaults")
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestLoadConfig_Scheduler(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
scheduler:
  global_max: 2
  by_connector:
    localexec: 6
project:
  issue_title: "[Implement] Repository Inventory"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Scheduler.GlobalMax)
	assert.Equal(t, 6, cfg.Scheduler.ConnectorLimit("localexec"))
	assert.Equal(t, "[Implement] Repository Inventory", cfg.Project.IssueTitle)
}

func TestLoadConfig_Inventory(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Inventory.Meta)
	assert.Equal(t, 5, cfg.Inventory.MaxBranches)
	assert.Empty(t, cfg.Inventory.Template, "no template means the built-in prompt")

	writeConfig(t, dir, `
inventory:
  template: templates/prompt.md
  max_branches: 3
  meta: false
`)
	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "templates/prompt.md"), cfg.Inventory.Template)
	assert.Equal(t, 3, cfg.Inventory.MaxBranches)
	assert.False(t, cfg.Inventory.Meta)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "rules: [unterminated")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"empty snapshot", func(c *Config) { c.Snapshot = "" }, "snapshot"},
		{"empty output", func(c *Config) { c.Output = "" }, "output"},
		{"negative wip", func(c *Config) { c.Rules.WIPLimit = -1 }, "rules.wip_limit"},
		{"negative cap", func(c *Config) { c.Rules.PriorityCap = -1 }, "rules.priority_cap"},
		{"offset too large", func(c *Config) { c.Timezone.OffsetHours = 15 }, "timezone.offset_hours"},
		{"negative limit", func(c *Config) { c.Project.Limit = -5 }, "project.limit"},
		{"negative max branches", func(c *Config) { c.Inventory.MaxBranches = -1 }, "inventory.max_branches"},
		{"negative global max", func(c *Config) { c.Scheduler.GlobalMax = -1 }, "scheduler.global_max"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)

			err := ValidateConfig(&cfg)
			require.Error(t, err)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateConfig_ZeroLimitsAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.WIPLimit = 0
	cfg.Rules.PriorityCap = 0
	assert.NoError(t, ValidateConfig(&cfg))
}

func TestReportOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Title = "Board"

	opts := cfg.ReportOptions()

	assert.Equal(t, "Board", opts.Title)
	assert.Equal(t, "JST", opts.ZoneLabel)
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).In(opts.Location).Zone()
	assert.Equal(t, 9*60*60, offset)
}
