package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ozgun/catalogd/internal/domain"
)

// fakeStore is an in-memory Store that mimics the repository's claim and
// state-transition semantics.
type fakeStore struct {
	mu   sync.Mutex
	jobs []*domain.NotificationJob
}

func (s *fakeStore) Create(_ context.Context, job *domain.NotificationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	copied.CreatedAt = time.Now()
	s.jobs = append(s.jobs, &copied)
	return nil
}

func (s *fakeStore) ClaimNext(_ context.Context, staleAfter time.Duration) (*domain.NotificationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, job := range s.jobs {
		runnable := job.Status == domain.JobStatusPending ||
			(job.Status == domain.JobStatusInProgress && job.ClaimedAt != nil && now.Sub(*job.ClaimedAt) > staleAfter)
		if runnable {
			job.Status = domain.JobStatusInProgress
			claimed := now
			job.ClaimedAt = &claimed
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) MarkSucceeded(_ context.Context, id string, attemptCount int) error {
	return s.finish(id, domain.JobStatusSucceeded, attemptCount, "")
}

func (s *fakeStore) MarkFailedPermanently(_ context.Context, id string, attemptCount int, lastError string) error {
	return s.finish(id, domain.JobStatusFailedPermanently, attemptCount, lastError)
}

func (s *fakeStore) Reschedule(_ context.Context, id string, attemptCount int, lastError string) error {
	return s.finish(id, domain.JobStatusPending, attemptCount, lastError)
}

// finish mirrors the repository's guarded transition: only a job still held
// in in_progress can move, a late update from a reaped claim is a no-op.
func (s *fakeStore) finish(id string, status domain.JobStatus, attemptCount int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.ID == id {
			if job.Status != domain.JobStatusInProgress {
				return nil
			}
			job.Status = status
			job.AttemptCount = attemptCount
			job.LastError = lastError
			job.ClaimedAt = nil
			return nil
		}
	}
	return errors.New("job not found")
}

func (s *fakeStore) get(id string) *domain.NotificationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.ID == id {
			copied := *job
			return &copied
		}
	}
	return nil
}

// scriptedDeliverer fails a fixed number of times, then succeeds.
type scriptedDeliverer struct {
	failures  int
	calls     int
	delivered []*domain.IngestionSummary
}

func (d *scriptedDeliverer) Deliver(_ context.Context, summary *domain.IngestionSummary) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("delivery refused")
	}
	d.delivered = append(d.delivered, summary)
	return nil
}

func testOptions() Options {
	return Options{
		MaxAttempts:  5,
		Backoff:      time.Millisecond,
		PollInterval: time.Millisecond,
		ClaimTimeout: time.Minute,
	}
}

func enqueueSummary(t *testing.T, store Store) string {
	t.Helper()
	q := New(store, nil)
	id, err := q.Enqueue(context.Background(), &domain.IngestionSummary{
		FileName:   "feed.xml",
		UploadedBy: "ops",
		Inserted:   7,
		Duplicate:  2,
	})
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}
	return id
}

// drain runs ProcessNext until the queue is idle or the limit is hit.
func drain(t *testing.T, w *Worker, limit int) int {
	t.Helper()
	processed := 0
	for i := 0; i < limit; i++ {
		did, _, err := w.ProcessNext(context.Background())
		if err != nil {
			t.Fatalf("ProcessNext returned error: %v", err)
		}
		if !did {
			return processed
		}
		processed++
	}
	return processed
}

// TestWorkerDeliversOnFirstAttempt verifies the happy path succeeds with a
// single attempt recorded
func TestWorkerDeliversOnFirstAttempt(t *testing.T) {
	store := &fakeStore{}
	id := enqueueSummary(t, store)

	deliverer := &scriptedDeliverer{}
	w := NewWorker(store, deliverer, nil, testOptions())

	drain(t, w, 10)

	job := store.get(id)
	if job.Status != domain.JobStatusSucceeded {
		t.Fatalf("Status: got %s, want %s", job.Status, domain.JobStatusSucceeded)
	}
	if job.AttemptCount != 1 {
		t.Errorf("AttemptCount: got %d, want 1", job.AttemptCount)
	}
	if len(deliverer.delivered) != 1 {
		t.Errorf("Deliver call count: got %d, want 1", len(deliverer.delivered))
	}
}

// TestWorkerRetriesThenSucceeds verifies a job that fails maxAttempts-1 times
// and then succeeds ends up succeeded with attempt_count == maxAttempts
func TestWorkerRetriesThenSucceeds(t *testing.T) {
	store := &fakeStore{}
	id := enqueueSummary(t, store)

	opts := testOptions()
	deliverer := &scriptedDeliverer{failures: opts.MaxAttempts - 1}
	w := NewWorker(store, deliverer, nil, opts)

	drain(t, w, 20)

	job := store.get(id)
	if job.Status != domain.JobStatusSucceeded {
		t.Fatalf("Status: got %s, want %s", job.Status, domain.JobStatusSucceeded)
	}
	if job.AttemptCount != opts.MaxAttempts {
		t.Errorf("AttemptCount: got %d, want %d", job.AttemptCount, opts.MaxAttempts)
	}
}

// TestWorkerExhaustsAttempts verifies a permanently failing job is dead-ended
// after exactly maxAttempts delivery attempts
func TestWorkerExhaustsAttempts(t *testing.T) {
	store := &fakeStore{}
	id := enqueueSummary(t, store)

	opts := testOptions()
	deliverer := &scriptedDeliverer{failures: 1000}
	w := NewWorker(store, deliverer, nil, opts)

	drain(t, w, 20)

	job := store.get(id)
	if job.Status != domain.JobStatusFailedPermanently {
		t.Fatalf("Status: got %s, want %s", job.Status, domain.JobStatusFailedPermanently)
	}
	if job.AttemptCount != opts.MaxAttempts {
		t.Errorf("AttemptCount: got %d, want %d", job.AttemptCount, opts.MaxAttempts)
	}
	if deliverer.calls != opts.MaxAttempts {
		t.Errorf("Deliver call count: got %d, want %d", deliverer.calls, opts.MaxAttempts)
	}
	if job.LastError == "" {
		t.Error("LastError should record the final failure")
	}
}

// TestWorkerCorruptPayload verifies an undecodable payload fails permanently
// without consuming delivery attempts
func TestWorkerCorruptPayload(t *testing.T) {
	store := &fakeStore{}
	store.Create(context.Background(), &domain.NotificationJob{
		ID:      "corrupt-1",
		Status:  domain.JobStatusPending,
		Payload: "{not json",
	})

	deliverer := &scriptedDeliverer{}
	w := NewWorker(store, deliverer, nil, testOptions())

	drain(t, w, 10)

	job := store.get("corrupt-1")
	if job.Status != domain.JobStatusFailedPermanently {
		t.Fatalf("Status: got %s, want %s", job.Status, domain.JobStatusFailedPermanently)
	}
	if deliverer.calls != 0 {
		t.Errorf("Deliverer should never see a corrupt payload, got %d calls", deliverer.calls)
	}
}

// TestWorkerProcessesInEnqueueOrder verifies jobs drain oldest first
func TestWorkerProcessesInEnqueueOrder(t *testing.T) {
	store := &fakeStore{}
	first := enqueueSummary(t, store)
	second := enqueueSummary(t, store)

	deliverer := &scriptedDeliverer{}
	w := NewWorker(store, deliverer, nil, testOptions())

	if _, _, err := w.ProcessNext(context.Background()); err != nil {
		t.Fatalf("ProcessNext returned error: %v", err)
	}

	if store.get(first).Status != domain.JobStatusSucceeded {
		t.Error("First enqueued job should be processed first")
	}
	if store.get(second).Status != domain.JobStatusPending {
		t.Error("Second job should still be pending")
	}
}

// TestEnqueueSnapshotsSummary verifies the payload is a frozen copy: mutating
// the summary after enqueue does not change what gets delivered
func TestEnqueueSnapshotsSummary(t *testing.T) {
	store := &fakeStore{}
	q := New(store, nil)

	summary := &domain.IngestionSummary{FileName: "feed.xml", Inserted: 3}
	id, err := q.Enqueue(context.Background(), summary)
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	summary.Inserted = 99
	summary.FileName = "other.xml"

	var decoded domain.IngestionSummary
	if err := json.Unmarshal([]byte(store.get(id).Payload), &decoded); err != nil {
		t.Fatalf("Payload is not valid JSON: %v", err)
	}
	if decoded.Inserted != 3 || decoded.FileName != "feed.xml" {
		t.Errorf("Payload should be a snapshot, got %+v", decoded)
	}
}

// TestWorkerRunStopsOnCancel verifies Run honours context cancellation
func TestWorkerRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	deliverer := &scriptedDeliverer{}
	w := NewWorker(store, deliverer, nil, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run: got %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
