package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/ozgun/catalogd/internal/config"
	"github.com/ozgun/catalogd/internal/domain"
	"github.com/ozgun/catalogd/internal/logger"
)

// SMTPDeliverer emails the ingestion summary to every administrator.
type SMTPDeliverer struct {
	cfg       config.SMTPConfig
	directory AdminDirectory
	log       *logger.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPDeliverer creates an SMTP delivery collaborator.
func NewSMTPDeliverer(cfg config.SMTPConfig, directory AdminDirectory, log *logger.Logger) *SMTPDeliverer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &SMTPDeliverer{
		cfg:       cfg,
		directory: directory,
		log:       log,
		send:      smtp.SendMail,
	}
}

// Deliver sends one summary email per administrator. Any recipient failure
// fails the whole attempt; the queue retries and administrators who already
// received the mail simply see it again (at-least-once semantics).
func (d *SMTPDeliverer) Deliver(ctx context.Context, summary *domain.IngestionSummary) error {
	recipients, err := d.directory.ListRecipients(ctx)
	if err != nil {
		return &DeliveryError{Transport: "smtp", Err: fmt.Errorf("resolve recipients: %w", err)}
	}
	if len(recipients) == 0 {
		d.log.Warn("No admin recipients configured, skipping notification")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}

	subject := Subject(summary)
	body := RenderBody(summary)

	for _, to := range recipients {
		msg := []byte(
			"From: " + d.cfg.From + "\r\n" +
				"To: " + to + "\r\n" +
				"Subject: " + subject + "\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: text/plain; charset=UTF-8\r\n" +
				"\r\n" +
				body,
		)
		if err := d.send(addr, auth, d.cfg.From, []string{to}, msg); err != nil {
			return &DeliveryError{Transport: "smtp", Err: fmt.Errorf("send to %s: %w", to, err)}
		}
		d.log.WithField("recipient", to).Info("Notification email sent")
	}
	return nil
}
