// Package jobs records an audit trail of per-document pipeline runs in an
// embedded SQLite database. Only run metadata is stored; extracted summaries
// and medication lists are returned to callers synchronously and never
// persisted.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinidocs/summarizer/constants"
)

// Job is one per-document audit record.
type Job struct {
	ID         uuid.UUID
	BatchID    uuid.UUID
	Filename   string
	Task       string
	Status     constants.JobStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder is what the batch orchestrator depends on. A nil Recorder disables
// auditing; recording failures never fail a document.
type Recorder interface {
	Record(ctx context.Context, job Job) error
}
