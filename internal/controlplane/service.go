// Package controlplane wires the report core to history, the GitHub CLI
// and the HTTP report server.
package controlplane

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/audit"
	"github.com/fentz26/taskgov/internal/connectors"
	"github.com/fentz26/taskgov/internal/logging"
	"github.com/fentz26/taskgov/internal/models"
	"github.com/fentz26/taskgov/internal/report"
	"github.com/fentz26/taskgov/internal/scheduler"
	"github.com/fentz26/taskgov/internal/snapshot"
	"github.com/fentz26/taskgov/internal/store"
	"github.com/fentz26/taskgov/internal/summary"
)

// Audit actions.
const (
	ActionFetch       = "snapshot.fetch"
	ActionSummaryPost = "summary.post"
)

// Settings are the paths and options a Service operates on.
type Settings struct {
	SnapshotPath string
	OutputPath   string
	Options      report.Options
	Scheduler    *scheduler.Config
}

// ProjectRef identifies a board for `gh project item-list`.
type ProjectRef struct {
	Owner  string
	Number int
	Limit  int
}

// Args returns the gh arguments that export the board as JSON.
func (p ProjectRef) Args() []string {
	args := []string{"project", "item-list", strconv.Itoa(p.Number), "--owner", p.Owner, "--format", "json"}
	if p.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(p.Limit))
	}
	return args
}

// Service provides the control plane business logic. store and conn may
// be nil; history and gh-backed operations are then unavailable.
type Service struct {
	store     *store.Store
	recorder  *audit.Recorder
	connector connectors.Connector
	settings  Settings
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new control plane service.
func NewService(s *store.Store, conn connectors.Connector, settings Settings, logger *zap.Logger) *Service {
	svc := &Service{
		store:     s,
		connector: conn,
		settings:  settings,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
	if s != nil {
		svc.recorder = audit.NewRecorder(s)
	}
	return svc
}

// Settings returns the service configuration.
func (s *Service) Settings() Settings {
	return s.settings
}

// Generate runs one full report pass and records it in history. A history
// failure is logged and does not fail the pass.
func (s *Service) Generate(ctx context.Context) (*report.Result, error) {
	res, err := report.Generate(s.settings.SnapshotPath, s.settings.OutputPath, s.settings.Options, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("report written",
		zap.String("output", res.OutputPath),
		zap.Int("processed", res.Document.Processed),
		zap.Int("violations", len(res.Document.Violations)))

	if s.recorder != nil {
		run, err := s.recorder.RecordRun(ctx, res)
		if err != nil {
			s.logger.Warn("failed to record run", zap.Error(err))
		} else {
			s.logger.Debug("run recorded", zap.String("run_id", run.ID))
		}
	}
	return res, nil
}

// Build loads the snapshot and evaluates it without writing anything.
func (s *Service) Build() (*report.Document, error) {
	snap, err := snapshot.Load(s.settings.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return report.Build(snap, s.settings.Options, s.now()), nil
}

// Snapshot loads the configured snapshot.
func (s *Service) Snapshot() (*models.Snapshot, error) {
	return snapshot.Load(s.settings.SnapshotPath)
}

// Fetch exports the board through gh and replaces the snapshot file.
func (s *Service) Fetch(ctx context.Context, ref ProjectRef) (*models.Snapshot, error) {
	if ref.Owner == "" || ref.Number <= 0 {
		return nil, ErrBadProject
	}
	if s.connector == nil {
		return nil, ErrNoConnector
	}

	args := ref.Args()
	res, err := s.connector.Execute(ctx, "gh", args, nil)
	if err != nil {
		s.record(ctx, ActionFetch, args, audit.OutcomeFailure, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if !res.Success() {
		msg := strings.TrimSpace(res.Stderr)
		s.record(ctx, ActionFetch, args, audit.OutcomeFailure, msg)
		return nil, fmt.Errorf("%w: gh exited %d: %s", ErrFetchFailed, res.ExitCode, msg)
	}

	snap, err := snapshot.Save(s.settings.SnapshotPath, []byte(res.Stdout))
	if err != nil {
		s.record(ctx, ActionFetch, args, audit.OutcomeFailure, err.Error())
		return nil, err
	}

	s.record(ctx, ActionFetch, args, audit.OutcomeSuccess, fmt.Sprintf("%d items", snap.Processed()))
	s.logger.Info("snapshot fetched",
		zap.String("path", snap.Source),
		zap.Int("items", snap.Processed()),
		zap.Int("reported_total", snap.ReportedTotal))
	return snap, nil
}

// PostSummary validates text and upserts it as a comment on issueURL.
// Invalid summaries are never posted.
func (s *Service) PostSummary(ctx context.Context, issueURL, text string) (summary.Action, error) {
	checked := summary.Check(text)
	if err := checked.Err(); err != nil {
		return "", err
	}
	if s.connector == nil {
		return "", ErrNoConnector
	}

	action, err := summary.NewPoster(s.connector, s.logger).Upsert(ctx, issueURL, checked.Normalized)
	outcome := audit.OutcomeSuccess
	details := string(action)
	if err != nil {
		outcome = audit.OutcomeFailure
		details = err.Error()
	}
	s.record(ctx, ActionSummaryPost, map[string]string{"issue": issueURL, "body": checked.Normalized}, outcome, details)
	return action, err
}

// Runs returns recent report runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]models.Run, error) {
	if s.store == nil {
		return nil, ErrNoHistory
	}
	return s.store.ListRuns(ctx, limit)
}

// Decisions returns recent audit records, newest first.
func (s *Service) Decisions(ctx context.Context, limit int) ([]models.Decision, error) {
	if s.store == nil {
		return nil, ErrNoHistory
	}
	return s.store.ListDecisions(ctx, limit)
}

// Ping checks the history database.
func (s *Service) Ping(ctx context.Context) error {
	if s.store == nil {
		return ErrNoHistory
	}
	return s.store.Ping(ctx)
}

func (s *Service) record(ctx context.Context, action string, inputs any, outcome, details string) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Record(ctx, action, inputs, outcome, details); err != nil {
		s.logger.Warn("failed to write audit record", zap.String("action", action), zap.Error(err))
	}
}
