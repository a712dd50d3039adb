package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers messages through one SMTP session per batch.
type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msgs ...Message) error {
	out := make([]*mail.Msg, 0, len(msgs))
	for _, m := range msgs {
		msg := mail.NewMsg()
		if err := msg.From(s.from); err != nil {
			return fmt.Errorf("set from: %w", err)
		}
		if err := msg.To(m.To...); err != nil {
			return fmt.Errorf("set to %v: %w", m.To, err)
		}
		if m.ReplyTo != "" {
			if err := msg.ReplyTo(m.ReplyTo); err != nil {
				return fmt.Errorf("set reply-to: %w", err)
			}
		}
		msg.Subject(m.Subject)
		msg.SetBodyString(mail.TypeTextPlain, m.Body)
		if m.HTML != "" {
			msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
		}
		out = append(out, msg)
	}
	if err := s.client.DialAndSendWithContext(ctx, out...); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
