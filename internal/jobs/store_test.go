package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinidocs/summarizer/constants"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListBatch(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	batchID := uuid.New()
	now := time.Now()

	records := []Job{
		{ID: uuid.New(), BatchID: batchID, Filename: "a.pdf", Task: "report", Status: constants.JobStatusOK, StartedAt: now, FinishedAt: now.Add(time.Second)},
		{ID: uuid.New(), BatchID: batchID, Filename: "b.txt", Task: "report", Status: constants.JobStatusFailed, Error: "generation service unavailable", StartedAt: now, FinishedAt: now.Add(2 * time.Second)},
	}
	for _, j := range records {
		require.NoError(t, store.Record(ctx, j))
	}
	// A row from another batch must not leak into the listing.
	require.NoError(t, store.Record(ctx, Job{
		ID: uuid.New(), BatchID: uuid.New(), Filename: "other.pdf", Task: "report",
		Status: constants.JobStatusOK, StartedAt: now, FinishedAt: now,
	}))

	got, err := store.ListBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a.pdf", got[0].Filename)
	assert.Equal(t, constants.JobStatusOK, got[0].Status)
	assert.Empty(t, got[0].Error)

	assert.Equal(t, "b.txt", got[1].Filename)
	assert.Equal(t, constants.JobStatusFailed, got[1].Status)
	assert.Equal(t, "generation service unavailable", got[1].Error)
	assert.WithinDuration(t, records[1].FinishedAt, got[1].FinishedAt, time.Millisecond)
}

func TestListBatchEmpty(t *testing.T) {
	store := setupStore(t)

	got, err := store.ListBatch(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordDuplicateID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	j := Job{ID: uuid.New(), BatchID: uuid.New(), Filename: "a.pdf", Task: "report",
		Status: constants.JobStatusOK, StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, store.Record(ctx, j))
	assert.Error(t, store.Record(ctx, j), "job ids are primary keys")
}
