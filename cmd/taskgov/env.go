package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/connectors/localexec"
	"github.com/fentz26/taskgov/internal/controlplane"
	"github.com/fentz26/taskgov/internal/store"
)

// serviceOptions selects optional parts of the control plane.
type serviceOptions struct {
	snapshot  string
	output    string
	history   bool
	connector bool
}

// newService builds a control plane service from the loaded config. The
// returned cleanup closes the history database.
func newService(opts serviceOptions) (*controlplane.Service, func(), error) {
	settings := controlplane.Settings{
		SnapshotPath: cfg.Snapshot,
		OutputPath:   cfg.Output,
		Options:      cfg.ReportOptions(),
		Scheduler:    &cfg.Scheduler,
	}
	if opts.snapshot != "" {
		settings.SnapshotPath = opts.snapshot
	}
	if opts.output != "" {
		settings.OutputPath = opts.output
	}

	cleanup := func() {}
	var st *store.Store
	if opts.history {
		s, err := store.New(cfg.HistoryDB)
		if err != nil {
			// History is optional; a broken database must not block reporting.
			logger.Warn("run history unavailable", zap.String("db", cfg.HistoryDB), zap.Error(err))
		} else {
			st = s
			cleanup = func() {
				if err := s.Close(); err != nil {
					logger.Warn("closing history database", zap.Error(err))
				}
			}
		}
	}

	var conn *localexec.LocalExec
	if opts.connector {
		workDir, err := os.Getwd()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("get working directory: %w", err)
		}
		conn = localexec.New(workDir)
	}

	if conn == nil {
		return controlplane.NewService(st, nil, settings, logger), cleanup, nil
	}
	return controlplane.NewService(st, conn, settings, logger), cleanup, nil
}

// openStore opens the history database for read-only commands.
func openStore() (*store.Store, error) {
	if _, err := os.Stat(cfg.HistoryDB); os.IsNotExist(err) {
		return nil, fmt.Errorf("no run history at %s", cfg.HistoryDB)
	}
	return store.New(cfg.HistoryDB)
}
