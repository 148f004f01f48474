package domain

import (
	"encoding/json"
	"time"
)

// JobStatus represents the lifecycle state of a notification job.
// Values are JobStatusPending, JobStatusInProgress, JobStatusSucceeded, and
// JobStatusFailedPermanently.
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	// JobStatusInProgress marks a job claimed by exactly one worker. A job in
	// this state past the claim timeout is treated as abandoned and returned
	// to pending.
	JobStatusInProgress        JobStatus = "in_progress"
	JobStatusSucceeded         JobStatus = "succeeded"
	JobStatusFailedPermanently JobStatus = "failed_permanently"
)

// NotificationJob is a durable unit of notification work. The payload is a
// snapshot of the ingestion summary taken once at enqueue time; retries never
// recompute it from database state. Owned by the notification queue; the
// ingestion side only creates it.
type NotificationJob struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	Status       JobStatus  `gorm:"type:text;not null;index:idx_notification_jobs_status;default:pending" json:"status"`
	Payload      string     `gorm:"type:text;not null" json:"-"`
	AttemptCount int        `gorm:"not null;default:0" json:"attempt_count"`
	LastError    string     `gorm:"type:text" json:"last_error,omitempty"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the database table name for NotificationJob.
func (NotificationJob) TableName() string {
	return "notification_jobs"
}

// Summary decodes the snapshotted ingestion summary from the job payload.
func (j *NotificationJob) Summary() (*IngestionSummary, error) {
	var s IngestionSummary
	if err := json.Unmarshal([]byte(j.Payload), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Terminal reports whether the job can no longer change state.
func (j *NotificationJob) Terminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailedPermanently
}
