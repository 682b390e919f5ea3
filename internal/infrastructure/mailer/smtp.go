package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

const (
	fromName = "KB Signs"
	// MaxAttachmentSize matches the Drive download cap.
	MaxAttachmentSize = 10 * 1024 * 1024
)

// Deliverer is the part of *mail.Client the sender needs.
type Deliverer interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// SMTP sends plain-text mail over STARTTLS. In test mode every message goes to TestRecipient instead.
type SMTP struct {
	Server        string
	Port          int
	Email         string
	Password      string
	TestMode      bool
	TestRecipient string

	// Dial builds the client per send. Nil uses go-mail with mandatory STARTTLS.
	Dial func() (Deliverer, error)
}

// New builds an SMTP sender from config.
func New(cfg *config.Config) *SMTP {
	return &SMTP{
		Server:        cfg.SMTPServer,
		Port:          cfg.SMTPPort,
		Email:         cfg.SMTPEmail,
		Password:      cfg.SMTPPassword,
		TestMode:      cfg.EmailTestMode,
		TestRecipient: cfg.EmailTestRecipient,
	}
}

// Configured reports whether every SMTP setting is present.
func (s *SMTP) Configured() bool {
	return s.Server != "" && s.Port > 0 && s.Email != "" && s.Password != ""
}

func (s *SMTP) dial() (Deliverer, error) {
	if s.Dial != nil {
		return s.Dial()
	}
	return mail.NewClient(s.Server,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Email),
		mail.WithPassword(s.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(30*time.Second),
	)
}

// redirect applies test mode to a message.
func (s *SMTP) redirect(msg emails.Message) emails.Message {
	if !s.TestMode {
		return msg
	}
	to := s.TestRecipient
	if to == "" {
		to = s.Email
	}
	msg.Body = fmt.Sprintf("[Original recipient: %s]\n\n%s", msg.To, msg.Body)
	msg.Subject = "[TEST] " + msg.Subject
	msg.To = to
	return msg
}

func (s *SMTP) build(msg emails.Message) (*mail.Msg, []string, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(fromName, s.Email); err != nil {
		return nil, nil, err
	}
	if err := m.To(msg.To); err != nil {
		return nil, nil, err
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, nil, err
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	var attached []string
	for _, a := range msg.Attachments {
		if len(a.Data) == 0 {
			log.Warn().Str("file", a.FileName).Msg("mailer: skipping empty attachment")
			continue
		}
		if len(a.Data) > MaxAttachmentSize {
			log.Warn().Str("file", a.FileName).Int("bytes", len(a.Data)).Msg("mailer: skipping oversized attachment")
			continue
		}
		name := a.FileName
		if name == "" {
			name = "attachment"
		}
		m.AttachReadSeeker(name, bytes.NewReader(a.Data))
		attached = append(attached, name)
	}
	return m, attached, nil
}

// Send delivers msg and reports the outcome as a Result. It never returns an error.
func (s *SMTP) Send(ctx context.Context, msg emails.Message) emails.Result {
	if !s.Configured() {
		return emails.Failed("SMTP configuration incomplete. Check secrets.")
	}
	msg = s.redirect(msg)
	m, attached, err := s.build(msg)
	if err != nil {
		return emails.Failed("Email error: %v", err)
	}
	client, err := s.dial()
	if err != nil {
		return emails.Failed("SMTP Connection failed: %v", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("mailer: send failed")
		return emails.Failed("SMTP Error: %v", err)
	}
	log.Info().Str("to", msg.To).Int("attachments", len(attached)).Msg("mailer: email sent")
	if len(msg.Attachments) == 0 {
		return emails.Result{OK: true, Message: "Email sent to " + msg.To}
	}
	return emails.Result{OK: true, Message: fmt.Sprintf("Email sent to %s with %d attachment(s): %s",
		msg.To, len(attached), strings.Join(attached, ", "))}
}
