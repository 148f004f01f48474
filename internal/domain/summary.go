package domain

import "time"

// RecordProblem describes why a single record was skipped or flagged.
type RecordProblem struct {
	Position int    `json:"position"`
	FeedID   string `json:"feed_id,omitempty"`
	Reason   string `json:"reason"`
}

// IngestionSummary is the immutable result of one upload run. It is returned
// synchronously to the uploader and snapshotted into the notification job
// payload, so retried deliveries always report the same outcome.
type IngestionSummary struct {
	FileName   string    `json:"file_name"`
	UploadedBy string    `json:"uploaded_by"`
	StartedAt  time.Time `json:"started_at"`

	Inserted    int `json:"inserted"`
	Duplicate   int `json:"duplicate"`
	Conflicting int `json:"conflicting"`
	Malformed   int `json:"malformed"`

	// Problems lists per-record issues in feed order.
	Problems []RecordProblem `json:"problems,omitempty"`

	// FailureReason is set when the whole run aborted before any record was
	// persisted (structural parse failure, persistence failure).
	FailureReason string `json:"failure_reason,omitempty"`
}

// Total returns the number of records accounted for by the summary counts.
func (s *IngestionSummary) Total() int {
	return s.Inserted + s.Duplicate + s.Conflicting + s.Malformed
}

// Failed reports whether the run aborted instead of completing.
func (s *IngestionSummary) Failed() bool {
	return s.FailureReason != ""
}
