// Package queue implements the durable notification task queue. Jobs are
// persisted rows owned by this package; enqueueing never waits on delivery,
// and a single worker drains jobs with bounded retry. Delivery is
// at-least-once: a crash between delivery and acknowledgement replays the
// job, and the payload snapshot keeps every replay identical.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ozgun/catalogd/internal/domain"
	"github.com/ozgun/catalogd/internal/logger"
)

// Store is the durable backing store for notification jobs.
type Store interface {
	Create(ctx context.Context, job *domain.NotificationJob) error
	ClaimNext(ctx context.Context, staleAfter time.Duration) (*domain.NotificationJob, error)
	MarkSucceeded(ctx context.Context, id string, attemptCount int) error
	MarkFailedPermanently(ctx context.Context, id string, attemptCount int, lastError string) error
	Reschedule(ctx context.Context, id string, attemptCount int, lastError string) error
}

// Deliverer carries a summary to the administrators. Implementations must be
// safe to invoke more than once for the same job.
type Deliverer interface {
	Deliver(ctx context.Context, summary *domain.IngestionSummary) error
}

// Options configures queue behaviour.
type Options struct {
	MaxAttempts  int
	Backoff      time.Duration
	PollInterval time.Duration
	ClaimTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.Backoff <= 0 {
		o.Backoff = 30 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.ClaimTimeout <= 0 {
		o.ClaimTimeout = 10 * time.Minute
	}
}

// Queue is the enqueue side handed to the ingestion orchestrator.
type Queue struct {
	store Store
	log   *logger.Logger
}

// New creates the enqueue side of the notification queue.
func New(store Store, log *logger.Logger) *Queue {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Queue{store: store, log: log}
}

// Enqueue snapshots the summary into a new pending job and persists it.
// It returns as soon as the row is durable; delivery happens on the worker.
func (q *Queue) Enqueue(ctx context.Context, summary *domain.IngestionSummary) (string, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot summary: %w", err)
	}

	job := &domain.NotificationJob{
		ID:      uuid.New().String(),
		Status:  domain.JobStatusPending,
		Payload: string(payload),
	}
	if err := q.store.Create(ctx, job); err != nil {
		return "", err
	}

	q.log.WithFields(logger.Fields{
		logger.FieldJobID: job.ID,
		"file":            summary.FileName,
	}).Info("Notification job enqueued")
	return job.ID, nil
}
