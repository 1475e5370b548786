package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipsense/portal/app/models"
)

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{"Failed job with retries remaining", &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3}, true},
		{"Failed job with max retries reached", &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3}, false},
		{"Completed job", &Job{Status: JobStatusCompleted, MaxRetries: 3}, false},
		{"Pending job", &Job{Status: JobStatusPending, MaxRetries: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJobLifecycle(t *testing.T) {
	job := &Job{ID: "j1", Status: JobStatusPending, MaxRetries: 2}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("smtp down")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, "smtp down", job.ErrorMsg)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestRetryDelayGrowsWithAttempts(t *testing.T) {
	job := &Job{}
	assert.Equal(t, time.Minute, job.retryDelay(time.Minute))
	job.RetryCount = 3
	assert.Equal(t, 3*time.Minute, job.retryDelay(time.Minute))
}

func TestSalesNotificationPayloadKeepsLeadID(t *testing.T) {
	payload := SalesNotificationPayload{
		LeadID: 42,
		Lead: models.ContactRequest{
			ID:        42,
			PublicID:  "lead-42",
			Name:      "Eve",
			Email:     "eve@acme.test",
			APICalls:  80000,
			Languages: 12,
		},
		To: "sales@lipsense.test",
	}

	m := payload.ToMap()
	assert.Equal(t, "sales@lipsense.test", m["to"])

	back, err := SalesNotificationPayloadFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), back.LeadID)
	assert.Equal(t, "lead-42", back.Lead.PublicID)
	assert.Equal(t, 80000, back.Lead.APICalls)
	assert.Zero(t, back.Lead.ID)
}
