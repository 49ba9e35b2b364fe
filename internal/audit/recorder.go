// Package audit records report runs and state-changing actions.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/taskgov/internal/models"
	"github.com/fentz26/taskgov/internal/report"
	"github.com/fentz26/taskgov/internal/store"
)

// Outcomes written to decision records.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder writes run history and decision records.
type Recorder struct {
	store *store.Store
}

// NewRecorder creates a new recorder backed by s.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// RecordRun stores the outcome of one report generation.
func (r *Recorder) RecordRun(ctx context.Context, res *report.Result) (*models.Run, error) {
	run := NewRun(res)
	if err := r.store.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Record writes a decision record for a state-changing action.
func (r *Recorder) Record(ctx context.Context, action string, inputs any, outcome, details string) (*models.Decision, error) {
	return r.store.WriteDecision(ctx, action, HashInputs(inputs), outcome, details)
}

// NewRun converts a report result into a history record. The inputs hash
// covers the snapshot items, so two runs over the same board share it.
func NewRun(res *report.Result) *models.Run {
	doc := res.Document
	return &models.Run{
		GeneratedAt:   doc.GeneratedAt,
		SnapshotPath:  res.Snapshot.Source,
		InputsHash:    HashInputs(res.Snapshot.Items),
		ReportedTotal: doc.ReportedTotal,
		Processed:     doc.Processed,
		Counts:        doc.Counts.ByName(),
		Violations:    doc.ViolationMessages(),
		OutputPath:    res.OutputPath,
	}
}

// HashInputs creates a SHA256 hash of the inputs for reproducibility.
func HashInputs(inputs any) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
