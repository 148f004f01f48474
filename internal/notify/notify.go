// Package notify holds the delivery collaborators the notification queue
// calls into. Transports are interchangeable: SMTP for the usual admin
// email, a webhook for chat-ops style setups. The queue owns retries; a
// deliverer just reports success or failure for one attempt.
package notify

import (
	"context"
	"fmt"
)

// AdminDirectory resolves the current notification recipients. Injected into
// deliverers rather than queried through shared global state, so tests and
// alternative deployments can substitute their own recipient source.
type AdminDirectory interface {
	ListRecipients(ctx context.Context) ([]string, error)
}

// DeliveryError wraps a transport failure. The queue treats any delivery
// error as transient and retries until attempts are exhausted.
type DeliveryError struct {
	Transport string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Transport, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
