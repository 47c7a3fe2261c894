package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/go-mail/mail"
	"go.uber.org/zap"
)

//go:embed templates/*
var templatesFS embed.FS

// TemplateSender sends a message built from one of the embedded templates.
// Each template defines "subject", "plainBody" and "htmlBody".
type TemplateSender interface {
	SendTemplate(ctx context.Context, to, templateName string, data any) error
}

// dialer is the part of *mail.Dialer the mailer uses
type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer delivers mail over SMTP with retries
type Mailer struct {
	dialer     dialer
	from       string
	retries    int
	retryDelay time.Duration
	logger     *zap.Logger
}

// New creates an SMTP mailer from config
func New(cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 5 * time.Second
	return newMailer(d, cfg, logger)
}

func newMailer(d dialer, cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := cfg.RetryAttempts
	if retries < 1 {
		retries = 1
	}
	return &Mailer{
		dialer:     d,
		from:       cfg.From,
		retries:    retries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Send delivers an invoice mail, attaching the document when present
func (m *Mailer) Send(ctx context.Context, im billingapp.InvoiceMail) error {
	if im.To == "" {
		return errors.New("mail: recipient is required")
	}
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", im.To)
	msg.SetHeader("Subject", im.Subject)
	msg.SetBody("text/html", im.HTMLBody)
	if a := im.Attachment; a != nil && len(a.Data) > 0 {
		msg.AttachReader(a.Filename, bytes.NewReader(a.Data), mail.SetHeader(map[string][]string{
			"Content-Type": {a.ContentType},
		}))
	}
	return m.deliver(ctx, msg, im.To)
}

// SendTemplate renders templateName and sends it as a plain text message with an HTML alternative
func (m *Mailer) SendTemplate(ctx context.Context, to, templateName string, data any) error {
	subject, plain, html, err := renderTemplate(templateName, data)
	if err != nil {
		return err
	}
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)
	return m.deliver(ctx, msg, to)
}

func (m *Mailer) deliver(ctx context.Context, msg *mail.Message, to string) error {
	var err error
	for attempt := 1; attempt <= m.retries; attempt++ {
		if err = m.dialer.DialAndSend(msg); err == nil {
			m.logger.Info("mail sent", zap.String("to", to), zap.Int("attempt", attempt))
			return nil
		}
		m.logger.Warn("mail delivery failed", zap.String("to", to), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == m.retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
	return fmt.Errorf("send mail to %s: %w", to, err)
}

func renderTemplate(name string, data any) (subject, plain, html string, err error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/"+name)
	if err != nil {
		return "", "", "", fmt.Errorf("parse mail template %s: %w", name, err)
	}
	parts := make([]string, 3)
	for i, part := range []string{"subject", "plainBody", "htmlBody"} {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, part, data); err != nil {
			return "", "", "", fmt.Errorf("execute mail template %s/%s: %w", name, part, err)
		}
		parts[i] = buf.String()
	}
	return parts[0], parts[1], parts[2], nil
}

// NopMailer logs instead of sending. Used when mail is disabled.
type NopMailer struct {
	logger *zap.Logger
}

// NewNopMailer creates a NopMailer
func NewNopMailer(logger *zap.Logger) *NopMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NopMailer{logger: logger}
}

// Send implements billingapp.InvoiceMailer
func (n *NopMailer) Send(_ context.Context, im billingapp.InvoiceMail) error {
	n.logger.Info("mail disabled, dropping invoice mail", zap.String("to", im.To), zap.String("subject", im.Subject))
	return nil
}

// SendTemplate implements TemplateSender
func (n *NopMailer) SendTemplate(_ context.Context, to, templateName string, _ any) error {
	n.logger.Info("mail disabled, dropping message", zap.String("to", to), zap.String("template", templateName))
	return nil
}

var (
	_ billingapp.InvoiceMailer = (*Mailer)(nil)
	_ billingapp.InvoiceMailer = (*NopMailer)(nil)
	_ TemplateSender           = (*Mailer)(nil)
	_ TemplateSender           = (*NopMailer)(nil)
)
