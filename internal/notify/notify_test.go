package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/ozgun/catalogd/internal/config"
	"github.com/ozgun/catalogd/internal/domain"
)

func successSummary() *domain.IngestionSummary {
	return &domain.IngestionSummary{
		FileName:    "feed.xml",
		UploadedBy:  "ops",
		Inserted:    7,
		Duplicate:   2,
		Conflicting: 1,
		Malformed:   1,
		Problems: []domain.RecordProblem{
			{Position: 4, FeedID: "SKU-4", Reason: "already stored with different values"},
			{Position: 9, Reason: "required field price is missing"},
		},
	}
}

// TestSubject verifies the subject line reflects run outcome
func TestSubject(t *testing.T) {
	if got := Subject(successSummary()); got != "Catalog Upload Processed" {
		t.Errorf("Subject: got %q", got)
	}

	failed := &domain.IngestionSummary{FileName: "feed.xml", FailureReason: "not well-formed markup"}
	if got := Subject(failed); got != "Catalog Upload Failed" {
		t.Errorf("Subject for failed run: got %q", got)
	}
}

// TestRenderBodySuccess verifies the body carries counts and per-record problems
func TestRenderBodySuccess(t *testing.T) {
	body := RenderBody(successSummary())

	for _, want := range []string{
		"User ops uploaded catalog file \"feed.xml\"",
		"Inserted:    7",
		"Duplicate:   2",
		"Conflicting: 1",
		"Malformed:   1",
		"item 4 (id SKU-4): already stored with different values",
		"item 9: required field price is missing",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Body missing %q:\n%s", want, body)
		}
	}
}

// TestRenderBodyFailure verifies failed runs report the reason instead of counts
func TestRenderBodyFailure(t *testing.T) {
	failed := &domain.IngestionSummary{
		FileName:      "bad.xml",
		UploadedBy:    "ops",
		FailureReason: "not well-formed markup",
	}
	body := RenderBody(failed)

	if !strings.Contains(body, "not well-formed markup") {
		t.Errorf("Body should carry the failure reason:\n%s", body)
	}
	if strings.Contains(body, "Inserted:") {
		t.Errorf("Failed runs should not render counts:\n%s", body)
	}
}

// fixedDirectory returns a static recipient list.
type fixedDirectory struct {
	recipients []string
	err        error
}

func (d *fixedDirectory) ListRecipients(_ context.Context) ([]string, error) {
	return d.recipients, d.err
}

// TestSMTPDeliverSendsToEveryAdmin verifies one mail goes to each recipient
func TestSMTPDeliverSendsToEveryAdmin(t *testing.T) {
	directory := &fixedDirectory{recipients: []string{"a@example.com", "b@example.com"}}
	d := NewSMTPDeliverer(config.SMTPConfig{
		Host: "mail.example.com",
		Port: 587,
		From: "catalogd@example.com",
	}, directory, nil)

	var sentTo []string
	var lastMsg []byte
	d.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if addr != "mail.example.com:587" {
			t.Errorf("addr: got %q", addr)
		}
		if from != "catalogd@example.com" {
			t.Errorf("from: got %q", from)
		}
		sentTo = append(sentTo, to...)
		lastMsg = msg
		return nil
	}

	if err := d.Deliver(context.Background(), successSummary()); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if len(sentTo) != 2 {
		t.Fatalf("Sent to %d recipients, want 2", len(sentTo))
	}
	if !strings.Contains(string(lastMsg), "Subject: Catalog Upload Processed") {
		t.Errorf("Message missing subject header:\n%s", lastMsg)
	}
}

// TestSMTPDeliverFailureIsRetryable verifies a send failure surfaces as a
// DeliveryError so the queue retries the whole attempt
func TestSMTPDeliverFailureIsRetryable(t *testing.T) {
	directory := &fixedDirectory{recipients: []string{"a@example.com"}}
	d := NewSMTPDeliverer(config.SMTPConfig{Host: "mail.example.com", Port: 587}, directory, nil)
	d.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := d.Deliver(context.Background(), successSummary())
	if err == nil {
		t.Fatal("Expected error")
	}
	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Expected DeliveryError, got %T", err)
	}
	if deliveryErr.Transport != "smtp" {
		t.Errorf("Transport: got %q", deliveryErr.Transport)
	}
}

// TestSMTPDeliverNoRecipients verifies an empty admin directory is a no-op
// success, not a retry loop
func TestSMTPDeliverNoRecipients(t *testing.T) {
	d := NewSMTPDeliverer(config.SMTPConfig{}, &fixedDirectory{}, nil)
	called := false
	d.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	if err := d.Deliver(context.Background(), successSummary()); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if called {
		t.Error("No mail should be sent without recipients")
	}
}

// TestSMTPDeliverDirectoryFailure verifies recipient resolution failures are
// retryable delivery errors
func TestSMTPDeliverDirectoryFailure(t *testing.T) {
	directory := &fixedDirectory{err: errors.New("db down")}
	d := NewSMTPDeliverer(config.SMTPConfig{}, directory, nil)

	err := d.Deliver(context.Background(), successSummary())
	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Expected DeliveryError, got %T: %v", err, err)
	}
}
