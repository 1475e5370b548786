package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/lipsense/portal/app/models"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeSalesNotification JobType = "sales_notification"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// SalesNotificationPayload carries the stored lead to the mail worker.
// The lead's primary key is not part of its JSON form, so it travels as LeadID.
type SalesNotificationPayload struct {
	LeadID uint64                `json:"lead_id"`
	Lead   models.ContactRequest `json:"lead"`
	To     string                `json:"to"`
}

// ToMap converts the payload to a map for storage
func (p SalesNotificationPayload) ToMap() map[string]interface{} {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return out
}

// SalesNotificationPayloadFromMap creates a payload from a map
func SalesNotificationPayloadFromMap(data map[string]interface{}) (*SalesNotificationPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload SalesNotificationPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable reports whether a failed job has attempts left.
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// retryDelay grows linearly with the attempt number.
func (j *Job) retryDelay(base time.Duration) time.Duration {
	return base * time.Duration(max(j.RetryCount, 1))
}
