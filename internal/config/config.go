// Package config loads taskgov settings from .taskgov/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fentz26/taskgov/internal/governance"
	"github.com/fentz26/taskgov/internal/inventory"
	"github.com/fentz26/taskgov/internal/report"
	"github.com/fentz26/taskgov/internal/scheduler"
)

// Default values for Config.
const (
	DirName            = ".taskgov"
	FileName           = "config.yaml"
	DefaultSnapshot    = "data/project_items.json"
	DefaultOutput      = "docs/index.html"
	DefaultHistoryDB   = ".taskgov/history.db"
	DefaultFactsDir    = "data/inventory"
	DefaultOwner       = "@me"
	DefaultNumber      = 1
	DefaultFetchLimit  = 500
	DefaultLogLevel    = "info"
	DefaultListenAddr  = "127.0.0.1:7467"
	maxOffsetHours     = 14
	minOffsetHours     = -14
	defaultZoneLabel   = report.DefaultZoneLabel
	defaultOffsetHours = report.DefaultOffsetHours
)

// Config represents .taskgov/config.yaml.
type Config struct {
	Snapshot  string           `yaml:"snapshot"`
	Output    string           `yaml:"output"`
	HistoryDB string           `yaml:"history_db"`
	FactsDir  string           `yaml:"facts_dir"`
	Title     string           `yaml:"title"`
	Timezone  TimezoneConfig   `yaml:"timezone"`
	Rules     RulesConfig      `yaml:"rules"`
	Project   ProjectConfig    `yaml:"project"`
	Inventory InventoryConfig  `yaml:"inventory"`
	Server    ServerConfig     `yaml:"server"`
	Scheduler scheduler.Config `yaml:"scheduler"`
	Log       LogConfig        `yaml:"log"`
}

// TimezoneConfig is the fixed offset used for report timestamps.
type TimezoneConfig struct {
	OffsetHours int    `yaml:"offset_hours"`
	Label       string `yaml:"label"`
}

// RulesConfig overrides rulebook limits.
type RulesConfig struct {
	WIPLimit    int `yaml:"wip_limit"`
	PriorityCap int `yaml:"priority_cap"`
}

// ProjectConfig identifies the board the snapshot is fetched from.
type ProjectConfig struct {
	Owner  string `yaml:"owner"`
	Number int    `yaml:"number"`
	Limit  int    `yaml:"limit"`
	// IssueTitle is the per-repository tracking issue summaries are posted to.
	IssueTitle string `yaml:"issue_title"`
}

// InventoryConfig configures `taskgov facts`.
type InventoryConfig struct {
	// Template is a prompt file prepended to each request; empty uses the
	// built-in prompt.
	Template    string `yaml:"template"`
	MaxBranches int    `yaml:"max_branches"`
	// Meta enables the gh api repository lookups.
	Meta bool `yaml:"meta"`
}

// ServerConfig configures `taskgov serve`.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns a Config with the rulebook defaults.
func DefaultConfig() Config {
	return Config{
		Snapshot:  DefaultSnapshot,
		Output:    DefaultOutput,
		HistoryDB: DefaultHistoryDB,
		FactsDir:  DefaultFactsDir,
		Title:     report.DefaultTitle,
		Timezone: TimezoneConfig{
			OffsetHours: defaultOffsetHours,
			Label:       defaultZoneLabel,
		},
		Rules: RulesConfig{
			WIPLimit:    governance.DefaultWIPLimit,
			PriorityCap: governance.DefaultPriorityCap,
		},
		Project: ProjectConfig{
			Owner:  DefaultOwner,
			Number: DefaultNumber,
			Limit:  DefaultFetchLimit,
		},
		Inventory: InventoryConfig{
			MaxBranches: inventory.DefaultMaxBranches,
			Meta:        true,
		},
		Server:    ServerConfig{Listen: DefaultListenAddr},
		Scheduler: *scheduler.DefaultConfig(),
		Log:       LogConfig{Level: DefaultLogLevel},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Path returns the config file location under basePath.
func Path(basePath string) string {
	return filepath.Join(basePath, DirName, FileName)
}

// LoadConfig reads .taskgov/config.yaml from basePath. A missing file
// yields the defaults; fields absent from the file keep their defaults.
// Relative paths in the result are resolved against basePath.
func LoadConfig(basePath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(basePath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	cfg.resolve(basePath)
	return &cfg, nil
}

// ValidateConfig checks that all config values are usable.
func ValidateConfig(cfg *Config) error {
	if cfg.Snapshot == "" {
		return ValidationError{Field: "snapshot", Message: "required field is empty"}
	}
	if cfg.Output == "" {
		return ValidationError{Field: "output", Message: "required field is empty"}
	}
	if cfg.Rules.WIPLimit < 0 {
		return ValidationError{Field: "rules.wip_limit", Message: "must not be negative"}
	}
	if cfg.Rules.PriorityCap < 0 {
		return ValidationError{Field: "rules.priority_cap", Message: "must not be negative"}
	}
	if cfg.Timezone.OffsetHours < minOffsetHours || cfg.Timezone.OffsetHours > maxOffsetHours {
		return ValidationError{Field: "timezone.offset_hours", Message: fmt.Sprintf("must be between %d and %d", minOffsetHours, maxOffsetHours)}
	}
	if cfg.Scheduler.GlobalMax < 0 {
		return ValidationError{Field: "scheduler.global_max", Message: "must not be negative"}
	}
	if cfg.Inventory.MaxBranches < 0 {
		return ValidationError{Field: "inventory.max_branches", Message: "must not be negative"}
	}
	if cfg.Project.Limit < 0 {
		return ValidationError{Field: "project.limit", Message: "must not be negative"}
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ValidationError{Field: "log.level", Message: "must be one of debug, info, warn, error"}
	}
	return nil
}

func (c *Config) resolve(basePath string) {
	for _, p := range []*string{&c.Snapshot, &c.Output, &c.HistoryDB, &c.FactsDir, &c.Inventory.Template} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(basePath, *p)
		}
	}
}

// GovernanceRules converts the rules section to evaluator limits.
func (c *Config) GovernanceRules() governance.Rules {
	return governance.Rules{
		WIPLimit:    c.Rules.WIPLimit,
		PriorityCap: c.Rules.PriorityCap,
	}
}

// Location returns the fixed zone used for report timestamps.
func (c *Config) Location() *time.Location {
	return time.FixedZone(c.Timezone.Label, c.Timezone.OffsetHours*60*60)
}

// ReportOptions bundles everything the report builder needs.
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		Title:     c.Title,
		Rules:     c.GovernanceRules(),
		Location:  c.Location(),
		ZoneLabel: c.Timezone.Label,
	}
}
