package report

import (
	"fmt"
	"time"

	"github.com/fentz26/taskgov/internal/models"
	"github.com/fentz26/taskgov/internal/snapshot"
)

// Result is the outcome of one full pass.
type Result struct {
	Snapshot   *models.Snapshot
	Document   *Document
	OutputPath string
}

// Generate runs the whole pipeline: load the snapshot, build the document
// and replace the report at outputPath. If the snapshot cannot be loaded
// nothing is written.
func Generate(snapshotPath, outputPath string, opts Options, now time.Time) (*Result, error) {
	snap, err := snapshot.Load(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	doc := Build(snap, opts, now)
	if err := WriteFile(outputPath, doc); err != nil {
		return nil, err
	}

	return &Result{
		Snapshot:   snap,
		Document:   doc,
		OutputPath: outputPath,
	}, nil
}
