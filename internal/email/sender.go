// Package email delivers customer-facing mail. The module subscribes to
// quote lifecycle events so the quotes service never talks SMTP directly.
package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"dealer_backoffice_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte
	FileName string // e.g. "QT-2026-0042.pdf"
	MIMEType string // e.g. "application/pdf"
}

// Sender delivers the store's transactional mail.
type Sender interface {
	SendQuoteEmail(ctx context.Context, toEmail, customerName, quoteNumber string, attachments ...Attachment) error
}

// NoopSender satisfies Sender without delivering anything. Used when email
// is disabled in configuration.
type NoopSender struct{}

func (NoopSender) SendQuoteEmail(ctx context.Context, toEmail, customerName, quoteNumber string, attachments ...Attachment) error {
	return nil
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// NewSender returns the configured sender: SMTP when email is enabled,
// otherwise the no-op sender.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(cfg)
}

// SendQuoteEmail delivers the "your quote is ready" message.
func (s *SMTPSender) SendQuoteEmail(ctx context.Context, toEmail, customerName, quoteNumber string, attachments ...Attachment) error {
	subject := fmt.Sprintf("Your quote %s is ready", quoteNumber)
	content, err := renderQuoteEmail(customerName, quoteNumber)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content, attachments...)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Compile-time checks
var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
