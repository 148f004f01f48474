package queue

import (
	"context"
	"time"

	"github.com/ozgun/catalogd/internal/domain"
	"github.com/ozgun/catalogd/internal/logger"
)

// Worker drains notification jobs one at a time, in enqueue order. Claiming
// goes through the store's guarded update, so running workers in several
// processes cannot double-deliver a claim; within one process exactly one
// goroutine runs the loop.
type Worker struct {
	store     Store
	deliverer Deliverer
	log       *logger.Logger
	opts      Options
}

// NewWorker creates a queue worker with the given delivery collaborator.
func NewWorker(store Store, deliverer Deliverer, log *logger.Logger, opts Options) *Worker {
	opts.applyDefaults()
	if log == nil {
		log = logger.GetDefault()
	}
	return &Worker{
		store:     store,
		deliverer: deliverer,
		log:       log,
		opts:      opts,
	}
}

// Run processes jobs until ctx is cancelled. Idle periods poll at the
// configured interval; a failed delivery waits out the backoff delay before
// the job is claimed again.
func (w *Worker) Run(ctx context.Context) error {
	w.log.WithField(logger.FieldComponent, "queue-worker").Infof(
		"Notification worker started: max_attempts=%d, backoff=%s", w.opts.MaxAttempts, w.opts.Backoff)

	for {
		processed, retrying, err := w.ProcessNext(ctx)
		if err != nil {
			w.log.WithError(err).Error("Worker failed to process job")
		}

		var wait time.Duration
		switch {
		case retrying:
			wait = w.opts.Backoff
		case !processed:
			wait = w.opts.PollInterval
		default:
			continue
		}

		select {
		case <-ctx.Done():
			w.log.Info("Notification worker stopping")
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// ProcessNext claims and executes at most one job. It reports whether a job
// was processed and whether that job was put back for retry. Exposed so
// deployments and tests can drive the loop themselves.
func (w *Worker) ProcessNext(ctx context.Context) (processed bool, retrying bool, err error) {
	job, err := w.store.ClaimNext(ctx, w.opts.ClaimTimeout)
	if err != nil {
		return false, false, err
	}
	if job == nil {
		return false, false, nil
	}
	retrying, err = w.execute(ctx, job)
	return true, retrying, err
}

// execute runs one delivery attempt for a claimed job and records the
// resulting state transition.
func (w *Worker) execute(ctx context.Context, job *domain.NotificationJob) (retrying bool, err error) {
	attempt := job.AttemptCount + 1
	log := w.log.WithFields(logger.Fields{
		logger.FieldJobID: job.ID,
		"attempt":         attempt,
	})

	summary, err := job.Summary()
	if err != nil {
		// Undecodable payload can never succeed; dead-end it immediately.
		log.WithError(err).Error("Job payload is corrupt, failing permanently")
		return false, w.store.MarkFailedPermanently(ctx, job.ID, attempt, "corrupt payload: "+err.Error())
	}

	if err := w.deliverer.Deliver(ctx, summary); err != nil {
		if attempt >= w.opts.MaxAttempts {
			log.WithError(err).Error("Delivery failed, attempts exhausted")
			return false, w.store.MarkFailedPermanently(ctx, job.ID, attempt, err.Error())
		}
		log.WithError(err).Warn("Delivery failed, will retry")
		return true, w.store.Reschedule(ctx, job.ID, attempt, err.Error())
	}

	log.Info("Notification delivered")
	return false, w.store.MarkSucceeded(ctx, job.ID, attempt)
}
