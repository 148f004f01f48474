package notify

import (
	"fmt"
	"strings"

	"github.com/ozgun/catalogd/internal/domain"
)

// Subject returns the email subject line for a summary.
func Subject(summary *domain.IngestionSummary) string {
	if summary.Failed() {
		return "Catalog Upload Failed"
	}
	return "Catalog Upload Processed"
}

// RenderBody renders a plain-text notification body from the structured
// summary. Deliberately stable across retries: everything comes from the
// snapshot, nothing from live state.
func RenderBody(summary *domain.IngestionSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi admin,\n\n")
	if summary.Failed() {
		fmt.Fprintf(&b, "While user %s was uploading catalog file %q, the run failed:\n%s\n",
			summary.UploadedBy, summary.FileName, summary.FailureReason)
		return b.String()
	}

	fmt.Fprintf(&b, "User %s uploaded catalog file %q.\n\n", summary.UploadedBy, summary.FileName)
	fmt.Fprintf(&b, "Inserted:    %d\n", summary.Inserted)
	fmt.Fprintf(&b, "Duplicate:   %d\n", summary.Duplicate)
	fmt.Fprintf(&b, "Conflicting: %d\n", summary.Conflicting)
	fmt.Fprintf(&b, "Malformed:   %d\n", summary.Malformed)

	if len(summary.Problems) > 0 {
		fmt.Fprintf(&b, "\nRecords needing attention:\n")
		for _, p := range summary.Problems {
			if p.FeedID != "" {
				fmt.Fprintf(&b, "  item %d (id %s): %s\n", p.Position, p.FeedID, p.Reason)
			} else {
				fmt.Fprintf(&b, "  item %d: %s\n", p.Position, p.Reason)
			}
		}
	}
	return b.String()
}
