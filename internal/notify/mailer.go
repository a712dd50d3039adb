package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"dropship-tracking/internal/model"
)

//go:embed templates/*.html
var templates embed.FS

// Message is one outgoing email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msgs ...Message) error
}

type MailerConfig struct {
	ReplyTo string
	// ITEmail receives error summaries and failure notices.
	ITEmail string
	// TestRecipient, when set, replaces every partner address.
	TestRecipient string
}

var errorLabels = map[string]string{
	model.ErrFailedToProcess:   "Failed to Process Order",
	model.ErrMissingTracking:   "Missing Tracking Number",
	model.ErrFailedToPutOnHold: "Failed to Put On Hold",
	model.ErrFailedToCancel:    "Failed to Cancel",
	model.ErrProblemOrder:      "Problem Order",
}

var errorOrder = []string{
	model.ErrFailedToProcess,
	model.ErrMissingTracking,
	model.ErrFailedToPutOnHold,
	model.ErrFailedToCancel,
	model.ErrProblemOrder,
}

// Mailer sends tracking confirmations to partner contacts and error
// summaries to IT.
type Mailer struct {
	sender Sender
	cfg    MailerConfig
	tmpl   *template.Template
}

func NewMailer(sender Sender, cfg MailerConfig) (*Mailer, error) {
	tmpl, err := template.ParseFS(templates, "templates/tracking_confirmation.html")
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Mailer{sender: sender, cfg: cfg, tmpl: tmpl}, nil
}

func (m *Mailer) Notify(ctx context.Context, runID string, res *model.Result) error {
	msgs, err := m.confirmations(res.OrdersProcessedByContact)
	if err != nil {
		return err
	}
	if summary, ok := m.errorSummary(runID, res.Errors); ok {
		msgs = append(msgs, summary)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := m.sender.Send(ctx, msgs...); err != nil {
		return fmt.Errorf("send run emails: %w", err)
	}
	return nil
}

func (m *Mailer) NotifyFailure(ctx context.Context, runID string, cause error) error {
	if m.cfg.ITEmail == "" {
		return nil
	}
	msg := Message{
		To:      []string{m.cfg.ITEmail},
		Subject: "Tracking Report Failure Notification",
		Body:    fmt.Sprintf("Run %s failed: %v", runID, cause),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send failure email: %w", err)
	}
	return nil
}

func (m *Mailer) confirmations(byContact map[string][]string) ([]Message, error) {
	emails := make([]string, 0, len(byContact))
	for email, pos := range byContact {
		if len(pos) > 0 {
			emails = append(emails, email)
		}
	}
	sort.Strings(emails)

	msgs := make([]Message, 0, len(emails))
	for _, email := range emails {
		var html bytes.Buffer
		if err := m.tmpl.Execute(&html, struct{ Orders []string }{byContact[email]}); err != nil {
			return nil, fmt.Errorf("render confirmation for %s: %w", email, err)
		}
		msgs = append(msgs, Message{
			To:      m.recipients(email),
			ReplyTo: m.cfg.ReplyTo,
			Subject: "Tracking Confirmation",
			Body:    "Your orders have been processed and tracking info is ready.",
			HTML:    html.String(),
		})
	}
	return msgs, nil
}

func (m *Mailer) recipients(email string) []string {
	if m.cfg.TestRecipient != "" {
		return []string{m.cfg.TestRecipient}
	}
	return []string{email}
}

func (m *Mailer) errorSummary(runID string, errs map[string][]string) (Message, bool) {
	if m.cfg.ITEmail == "" {
		return Message{}, false
	}

	keys := append([]string(nil), errorOrder...)
	var extra []string
	for key := range errs {
		if _, known := errorLabels[key]; !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var b strings.Builder
	for _, key := range keys {
		pos := errs[key]
		if len(pos) == 0 {
			continue
		}
		label, ok := errorLabels[key]
		if !ok {
			label = key
		}
		fmt.Fprintf(&b, "%s (%d):\n", label, len(pos))
		for _, po := range pos {
			fmt.Fprintf(&b, "- %s\n", po)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return Message{}, false
	}

	return Message{
		To:      []string{m.cfg.ITEmail},
		Subject: "Tracking Report Error Summary (run " + runID + ")",
		Body:    b.String(),
	}, true
}
