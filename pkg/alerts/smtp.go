package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the mail relay settings for SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	// TLS is one of "mandatory" (STARTTLS required), "opportunistic" or "none".
	TLS string
}

// SMTPNotifier emails alerts through an SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates an email notifier.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp: sender address is required")
	}
	if len(cfg.To) == 0 {
		return nil, errors.New("smtp: at least one recipient is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if _, err := tlsPolicy(cfg.TLS); err != nil {
		return nil, err
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

func (s *SMTPNotifier) Name() string { return "smtp" }

// Message builds the plain-text email for an alert.
func (s *SMTPNotifier) Message(alert Alert) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(alert.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, alert.Body)
	return msg, nil
}

func (s *SMTPNotifier) Send(ctx context.Context, alert Alert) error {
	msg, err := s.Message(alert)
	if err != nil {
		return fmt.Errorf("build email: %w", err)
	}

	policy, _ := tlsPolicy(s.cfg.TLS)
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(10 * time.Second),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email alert: %w", err)
	}
	return nil
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch name {
	case "", "mandatory":
		return mail.TLSMandatory, nil
	case "opportunistic":
		return mail.TLSOpportunistic, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, fmt.Errorf("smtp: unknown tls policy %q", name)
	}
}
