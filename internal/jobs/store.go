package jobs

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinidocs/summarizer/constants"
	"github.com/clinidocs/summarizer/internal/common"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

CREATE TABLE IF NOT EXISTS jobs (
    id          TEXT PRIMARY KEY,
    batch_id    TEXT NOT NULL,
    filename    TEXT NOT NULL,
    task        TEXT NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_batch ON jobs(batch_id);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// Store implements Recorder on SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the audit database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open jobs db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "init jobs schema")
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens a throwaway in-memory store, used by the batch CLI and
// by tests.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	return Open(":memory:", logger)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one job row.
func (s *Store) Record(ctx context.Context, job Job) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, batch_id, filename, task, status, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID.String(),
		job.BatchID.String(),
		job.Filename,
		job.Task,
		string(job.Status),
		job.Error,
		job.StartedAt.UTC().Format(time.RFC3339Nano),
		job.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return common.WrapError(err, "insert job")
	}
	return nil
}

// ListBatch returns the recorded jobs of one batch in insertion order.
func (s *Store) ListBatch(ctx context.Context, batchID uuid.UUID) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, filename, task, status, error, started_at, finished_at
		 FROM jobs WHERE batch_id = ? ORDER BY rowid`,
		batchID.String(),
	)
	if err != nil {
		return nil, common.WrapError(err, "query jobs")
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("jobs.rows.close_failed", "error", cerr)
		}
	}()

	var out []Job
	for rows.Next() {
		var (
			j                     Job
			id, batch             string
			status                string
			startedAt, finishedAt string
		)
		if err := rows.Scan(&id, &batch, &j.Filename, &j.Task, &status, &j.Error, &startedAt, &finishedAt); err != nil {
			return nil, common.WrapError(err, "scan job")
		}
		if j.ID, err = uuid.Parse(id); err != nil {
			return nil, common.WrapError(err, "parse job id")
		}
		if j.BatchID, err = uuid.Parse(batch); err != nil {
			return nil, common.WrapError(err, "parse batch id")
		}
		j.Status = constants.JobStatus(status)
		if j.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, common.WrapError(err, "parse started_at")
		}
		if j.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, common.WrapError(err, "parse finished_at")
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
