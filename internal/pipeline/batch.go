package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinidocs/summarizer/constants"
	"github.com/clinidocs/summarizer/internal/common"
	"github.com/clinidocs/summarizer/internal/extract"
	"github.com/clinidocs/summarizer/internal/jobs"
)

// ErrEmptyBatch is returned when a batch request supplies no documents.
var ErrEmptyBatch = errors.New("empty batch: no documents supplied")

// Task is one document pipeline: extract, generate, parse into T.
type Task[T any] interface {
	Name() string
	Run(ctx context.Context, doc extract.Document) (T, error)
}

// Outcome is one document's result within a batch: the typed record on
// success, or an error description. Exactly one of the two is meaningful.
type Outcome[T any] struct {
	Name   string
	Result T
	Err    string
}

func (o Outcome[T]) Failed() bool { return o.Err != "" }

// BatchResult holds one Outcome per submitted document, in input order.
type BatchResult[T any] []Outcome[T]

// RunBatch runs task once per document, strictly sequential and in input
// order. One document's failure is captured as its outcome and never aborts
// the rest of the batch. When a recorder is supplied, each document leaves
// one audit row; recording failures are log-only.
func RunBatch[T any](ctx context.Context, docs []extract.Document, task Task[T], recorder jobs.Recorder, logger *slog.Logger) (BatchResult[T], error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(docs) == 0 {
		return nil, ErrEmptyBatch
	}

	batchID := uuid.New()
	logger.Info("batch.start", "batch_id", batchID, "task", task.Name(), "documents", len(docs))

	result := make(BatchResult[T], 0, len(docs))
	for _, doc := range docs {
		started := time.Now()
		outcome := Outcome[T]{Name: doc.Name}

		res, err := runOne(ctx, task, doc)
		if err != nil {
			outcome.Err = err.Error()
			logger.Warn("batch.document.failed",
				"batch_id", batchID,
				"document", doc.Name,
				"error", err,
				"elapsed_ms", time.Since(started).Milliseconds(),
			)
		} else {
			outcome.Result = res
			logger.Info("batch.document.ok",
				"batch_id", batchID,
				"document", doc.Name,
				"elapsed_ms", time.Since(started).Milliseconds(),
			)
		}
		result = append(result, outcome)

		if recorder != nil {
			status := constants.JobStatusOK
			if outcome.Failed() {
				status = constants.JobStatusFailed
			}
			job := jobs.Job{
				ID:         uuid.New(),
				BatchID:    batchID,
				Filename:   doc.Name,
				Task:       task.Name(),
				Status:     status,
				Error:      outcome.Err,
				StartedAt:  started,
				FinishedAt: time.Now(),
			}
			if rerr := recorder.Record(ctx, job); rerr != nil {
				logger.Warn("batch.record.failed", "batch_id", batchID, "document", doc.Name, "error", rerr)
			}
		}
	}

	logger.Info("batch.done", "batch_id", batchID, "documents", len(result))
	return result, nil
}

// runOne shields the batch from a panicking document pipeline.
func runOne[T any](ctx context.Context, task Task[T], doc extract.Document) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: document pipeline panic: %v", common.ErrInternal, r)
		}
	}()
	return task.Run(ctx, doc)
}
