package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ozgun/catalogd/internal/config"
	"github.com/ozgun/catalogd/internal/domain"
	"github.com/ozgun/catalogd/internal/logger"
)

// webhookPayload is the JSON body posted to the configured endpoint.
type webhookPayload struct {
	Subject    string                   `json:"subject"`
	Recipients []string                 `json:"recipients"`
	Summary    *domain.IngestionSummary `json:"summary"`
}

// WebhookDeliverer posts the structured summary to an HTTP endpoint instead
// of mailing it. Useful when the admin channel is a chat integration.
type WebhookDeliverer struct {
	client    *resty.Client
	url       string
	directory AdminDirectory
	log       *logger.Logger
}

// NewWebhookDeliverer creates a webhook delivery collaborator.
func NewWebhookDeliverer(cfg config.WebhookConfig, directory AdminDirectory, log *logger.Logger) *WebhookDeliverer {
	if log == nil {
		log = logger.GetDefault()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().SetTimeout(timeout)
	return &WebhookDeliverer{
		client:    client,
		url:       cfg.URL,
		directory: directory,
		log:       log,
	}
}

// Deliver posts the summary once. Non-2xx responses count as failures so the
// queue retries them.
func (d *WebhookDeliverer) Deliver(ctx context.Context, summary *domain.IngestionSummary) error {
	recipients, err := d.directory.ListRecipients(ctx)
	if err != nil {
		return &DeliveryError{Transport: "webhook", Err: fmt.Errorf("resolve recipients: %w", err)}
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			Subject:    Subject(summary),
			Recipients: recipients,
			Summary:    summary,
		}).
		Post(d.url)
	if err != nil {
		return &DeliveryError{Transport: "webhook", Err: err}
	}
	if resp.IsError() {
		return &DeliveryError{Transport: "webhook", Err: fmt.Errorf("endpoint returned %s", resp.Status())}
	}

	d.log.WithField("status", resp.StatusCode()).Info("Notification webhook delivered")
	return nil
}
