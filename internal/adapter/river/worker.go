package river

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// AssessmentEventWorker consumes published events and applies the
// carried snapshot to the assessment store. Persistence rides behind
// the event hand-off, so an operation that fails before publishing
// leaves no stored trace, and a publish that fails after calculation
// leaves the divergence the error-handling design documents.
type AssessmentEventWorker struct {
	river.WorkerDefaults[AssessmentEventArgs]

	store domain.AssessmentStore
}

// NewAssessmentEventWorker creates a worker persisting into the store.
func NewAssessmentEventWorker(store domain.AssessmentStore) *AssessmentEventWorker {
	return &AssessmentEventWorker{store: store}
}

// Work applies one event's snapshot.
func (w *AssessmentEventWorker) Work(ctx context.Context, job *river.Job[AssessmentEventArgs]) error {
	var assessment domain.Assessment
	if err := json.Unmarshal(job.Args.Snapshot, &assessment); err != nil {
		return fmt.Errorf("decoding assessment snapshot: %w", err)
	}

	if err := w.store.Upsert(ctx, assessment); err != nil {
		return fmt.Errorf("applying %s: %w", job.Args.Topic, err)
	}

	slog.InfoContext(ctx, "applied assessment event",
		"topic", job.Args.Topic,
		"assessment_number", job.Args.AssessmentNumber,
		"tenant_id", job.Args.TenantID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
