package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// ErrNoSender is returned when neither From nor Username is configured.
var ErrNoSender = errors.New("mail: no sender address")

// DefaultFromName is the display name used when SMTPConfig.FromName is empty.
const DefaultFromName = "Mail"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the sender address. Defaults to Username.
	From     string
	FromName string

	// Opportunistic STARTTLS instead of mandatory. Local relays such as
	// mailpit do not offer TLS.
	AllowPlaintext bool
}

// SMTPSender delivers messages over SMTP with PLAIN auth. A client is dialled
// per message; the volume here is a handful of mails per account.
type SMTPSender struct {
	cfg  SMTPConfig
	opts []gomail.Option
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, ErrNoSender
	}
	if err := gomail.NewMsg().FromFormat(cfg.FromName, cfg.From); err != nil {
		return nil, fmt.Errorf("mail: invalid from address: %w", err)
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if cfg.AllowPlaintext {
		opts[1] = gomail.WithTLSPolicy(gomail.TLSOpportunistic)
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	// Validate options once so misconfiguration fails at startup.
	if _, err := gomail.NewClient(cfg.Host, opts...); err != nil {
		return nil, fmt.Errorf("mail: invalid smtp config: %w", err)
	}

	return &SMTPSender{cfg: cfg, opts: opts}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("mail: failed to create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail: failed to send: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, fmt.Errorf("mail: invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
