// Package service wires the ingestion pipeline together and backs the HTTP
// handlers. IngestService is the orchestrator: parse, reconcile, persist in
// one transaction, enqueue the notification, return the summary. It runs on
// the caller's goroutine with no internal parallelism; the only concurrency
// boundary in the system is the notification queue worker.
package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/ozgun/catalogd/internal/domain"
	"github.com/ozgun/catalogd/internal/feed"
	"github.com/ozgun/catalogd/internal/logger"
	"github.com/ozgun/catalogd/internal/reconcile"
	"gorm.io/gorm"
)

// ProductStore is the slice of the persistence gateway the orchestrator
// needs: one key snapshot per run, and a transactional bulk insert.
type ProductStore interface {
	ExistingNaturalKeys(ctx context.Context) (map[string]domain.Fingerprint, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	BulkInsertTx(ctx context.Context, tx *gorm.DB, products []domain.Product) (int, error)
}

// Notifier is the enqueue side of the notification queue.
type Notifier interface {
	Enqueue(ctx context.Context, summary *domain.IngestionSummary) (string, error)
}

// Archiver stores a copy of the raw upload. Optional; nil disables archival.
type Archiver interface {
	Archive(ctx context.Context, fileName string, content []byte) error
}

// IngestService orchestrates one catalog upload end to end.
type IngestService struct {
	products ProductStore
	notifier Notifier
	archiver Archiver
	log      *logger.Logger
}

// NewIngestService creates the ingestion orchestrator.
// Parameters:
//   - products: persistence gateway for product rows.
//   - notifier: notification queue enqueue side.
//   - archiver: optional raw-feed archival; may be nil.
//   - log: base logger.
// Returns:
//   - *IngestService: initialized orchestrator.
func NewIngestService(products ProductStore, notifier Notifier, archiver Archiver, log *logger.Logger) *IngestService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &IngestService{
		products: products,
		notifier: notifier,
		archiver: archiver,
		log:      log,
	}
}

// Ingest runs one upload: parse the feed, classify every record against the
// persisted keys, insert the new ones inside a single transaction, enqueue
// exactly one notification job carrying the summary snapshot, and return the
// summary without waiting on delivery.
//
// A structural parse failure or a persistence failure aborts the run: the
// summary reports it, the returned error is non-nil, and no partial rows
// survive. Per-record problems never abort the run.
func (s *IngestService) Ingest(ctx context.Context, uploadedBy, fileName string, r io.Reader) (*domain.IngestionSummary, error) {
	log := logger.FromContext(ctx)
	summary := &domain.IngestionSummary{
		FileName:   fileName,
		UploadedBy: uploadedBy,
		StartedAt:  time.Now(),
	}

	if s.archiver != nil {
		buffered, err := s.archiveUpload(ctx, fileName, r)
		if err != nil {
			// Archival is an audit convenience, never a reason to reject an
			// upload.
			log.WithError(err).Warn("Feed archival failed, continuing run")
		}
		if buffered != nil {
			r = buffered
		}
	}

	records, err := feed.Parse(r)
	if err != nil {
		var malformed *feed.MalformedInputError
		if errors.As(err, &malformed) {
			log.WithError(err).Error("Feed rejected as malformed")
			summary.Malformed = 1
			summary.FailureReason = malformed.Error()
			s.enqueue(ctx, summary)
			return summary, err
		}
		return nil, err
	}

	existing, err := s.products.ExistingNaturalKeys(ctx)
	if err != nil {
		summary.FailureReason = err.Error()
		s.enqueue(ctx, summary)
		return summary, err
	}

	result := reconcile.Classify(existing, records)
	summary.Duplicate = result.Duplicate
	summary.Conflicting = result.Conflicting
	summary.Malformed = result.Malformed
	summary.Problems = result.Problems

	if len(result.Insertable) > 0 {
		err = s.products.Transaction(ctx, func(tx *gorm.DB) error {
			_, err := s.products.BulkInsertTx(ctx, tx, result.Insertable)
			return err
		})
		if err != nil {
			// The transaction rolled back: nothing from this run reached the
			// store. A constraint hit means a concurrent upload won the race
			// on some key; the run reports the failure rather than dropping
			// it silently.
			log.WithError(err).Error("Bulk insert failed, run aborted")
			summary.Inserted = 0
			summary.FailureReason = err.Error()
			s.enqueue(ctx, summary)
			return summary, err
		}
		summary.Inserted = result.Inserted
	}

	log.WithFields(logger.Fields{
		"file":        fileName,
		"inserted":    summary.Inserted,
		"duplicate":   summary.Duplicate,
		"conflicting": summary.Conflicting,
		"malformed":   summary.Malformed,
	}).Info("Ingestion run completed")

	s.enqueue(ctx, summary)
	return summary, nil
}

// enqueue hands the summary snapshot to the notification queue. The run has
// already completed by this point, so an enqueue failure is logged for
// operators instead of surfacing to the uploader.
func (s *IngestService) enqueue(ctx context.Context, summary *domain.IngestionSummary) {
	if _, err := s.notifier.Enqueue(ctx, summary); err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to enqueue notification job")
	}
}

// archiveUpload buffers the feed and stores a copy, returning a replayable
// reader over the buffered bytes.
func (s *IngestService) archiveUpload(ctx context.Context, fileName string, r io.Reader) (io.Reader, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	buffered := bytes.NewReader(content)
	if err := s.archiver.Archive(ctx, fileName, content); err != nil {
		return buffered, err
	}
	return buffered, nil
}
