package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ozgun/catalogd/internal/domain"
	"gorm.io/gorm"
)

// JobRepository is the durable store behind the notification task queue.
// Jobs are ordinary rows, so they survive process restarts; claiming uses a
// guarded update so no job is ever held by two workers at once.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a new job in pending state.
func (r *JobRepository) Create(ctx context.Context, job *domain.NotificationJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return newPersistenceError("enqueue notification job", err)
	}
	return nil
}

// ClaimNext atomically claims the oldest runnable job: a pending job, or an
// in_progress job whose claim is older than staleAfter (its worker died).
// Returns nil without error when no job is runnable.
func (r *JobRepository) ClaimNext(ctx context.Context, staleAfter time.Duration) (*domain.NotificationJob, error) {
	now := time.Now()
	staleBefore := now.Add(-staleAfter)

	// A lost race on the guarded update means another worker took the job;
	// look again rather than fail.
	for attempt := 0; attempt < 3; attempt++ {
		var job domain.NotificationJob
		err := r.db.WithContext(ctx).
			Where("status = ?", domain.JobStatusPending).
			Or("status = ? AND claimed_at < ?", domain.JobStatusInProgress, staleBefore).
			Order("created_at ASC").
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, newPersistenceError("claim notification job", err)
		}

		claim := r.db.WithContext(ctx).
			Model(&domain.NotificationJob{}).
			Where("id = ? AND status = ?", job.ID, job.Status)
		if job.Status == domain.JobStatusInProgress {
			// Reclaiming a stale job: the claim must still be stale at update
			// time, otherwise two workers that both selected it would each
			// pass a status-only guard.
			claim = claim.Where("claimed_at < ?", staleBefore)
		}
		res := claim.Updates(map[string]interface{}{
			"status":     domain.JobStatusInProgress,
			"claimed_at": now,
		})
		if res.Error != nil {
			return nil, newPersistenceError("claim notification job", res.Error)
		}
		if res.RowsAffected == 1 {
			job.Status = domain.JobStatusInProgress
			job.ClaimedAt = &now
			return &job, nil
		}
	}
	return nil, nil
}

// MarkSucceeded finishes a job terminally after a successful delivery.
func (r *JobRepository) MarkSucceeded(ctx context.Context, id string, attemptCount int) error {
	return r.finish(ctx, id, domain.JobStatusSucceeded, attemptCount, "")
}

// MarkFailedPermanently dead-ends a job after its attempts are exhausted.
func (r *JobRepository) MarkFailedPermanently(ctx context.Context, id string, attemptCount int, lastError string) error {
	return r.finish(ctx, id, domain.JobStatusFailedPermanently, attemptCount, lastError)
}

// Reschedule returns a failed job to pending with its attempt count and last
// delivery error recorded, so the worker retries it after the backoff delay.
// Like finish, it only applies to a job still in in_progress.
func (r *JobRepository) Reschedule(ctx context.Context, id string, attemptCount int, lastError string) error {
	return r.transition(ctx, id, domain.JobStatusPending, attemptCount, lastError)
}

func (r *JobRepository) finish(ctx context.Context, id string, status domain.JobStatus, attemptCount int, lastError string) error {
	return r.transition(ctx, id, status, attemptCount, lastError)
}

// transition moves a claimed job out of in_progress. The status guard keeps a
// zombie worker whose claim was reaped from resurrecting a job another worker
// already finished; its late update simply affects zero rows.
func (r *JobRepository) transition(ctx context.Context, id string, status domain.JobStatus, attemptCount int, lastError string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.NotificationJob{}).
		Where("id = ? AND status = ?", id, domain.JobStatusInProgress).
		Updates(map[string]interface{}{
			"status":        status,
			"attempt_count": attemptCount,
			"last_error":    lastError,
			"claimed_at":    nil,
		})
	if res.Error != nil {
		return newPersistenceError("transition notification job", res.Error)
	}
	return nil
}

// GetByID retrieves a job for operator inspection.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.NotificationJob, error) {
	var job domain.NotificationJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListRecent retrieves the most recently created jobs, newest first.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]domain.NotificationJob, error) {
	var jobs []domain.NotificationJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, newPersistenceError("list notification jobs", err)
	}
	return jobs, nil
}
