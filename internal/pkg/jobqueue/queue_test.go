package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueAndProcessSalesNotification(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	q := NewQueue(client, 1)
	mailer := &fakeMailer{}
	marker := &fakeMarker{}
	n := NewSalesNotifier(q, mailer, marker, "sales@lipsense.test")

	require.NoError(t, n.NotifyLead(ctx, testLead()))
	assert.Empty(t, mailer.sent)

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobTypeSalesNotification, job.Type)

	q.processJob(ctx, job)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []uint64{7}, marker.ids)

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)

	_, err = q.GetJob(ctx, job.ID)
	assert.Error(t, err, "completed jobs are removed")

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusCompleted])
}

func TestFailedJobIsScheduledForRetry(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	q := NewQueue(client, 1)
	q.retryBase = 10 * time.Millisecond
	q.Handle(JobTypeSalesNotification, func(context.Context, *Job) error {
		return errors.New("smtp down")
	})

	queued, err := q.EnqueueJob(ctx, JobTypeSalesNotification, map[string]interface{}{})
	require.NoError(t, err)

	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, job)

	stored, err := q.GetJob(ctx, queued.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRetrying, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "smtp down", stored.ErrorMsg)

	assert.Eventually(t, func() bool {
		size, err := q.GetQueueSize(ctx)
		return err == nil && size == 1
	}, time.Second, 10*time.Millisecond)
}

func TestUnknownJobTypeFailsPermanently(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	q := NewQueue(client, 1)
	queued, err := q.EnqueueJob(ctx, JobType("unknown"), nil)
	require.NoError(t, err)

	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, job)

	stored, err := q.GetJob(ctx, queued.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRecoverStuckRequeuesOldJobs(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	q := NewQueue(client, 1)
	queued, err := q.EnqueueJob(ctx, JobTypeSalesNotification, nil)
	require.NoError(t, err)

	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	job.MarkAsProcessing()
	q.updateJob(ctx, job)

	n, err := q.recoverStuck(ctx, time.Minute, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = q.recoverStuck(ctx, time.Minute, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := q.GetJob(ctx, queued.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestStartStopIsIdempotent(t *testing.T) {
	client := newTestRedis(t)
	q := NewQueue(client, 2)
	q.Start()
	q.Start()
	q.Stop()
	q.Stop()
}
