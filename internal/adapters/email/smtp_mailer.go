// Package email delivers templated HTML notifications. The SMTP mailer is
// used in production; the log mailer stands in when no relay is configured.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/gradlink/accounts-service/internal/domain"
)

// SMTPConfig configures the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends role-templated HTML email over an authenticated relay.
type SMTPMailer struct {
	cfg       SMTPConfig
	templates map[string]*template.Template
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{cfg: cfg, templates: templates}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, recipient, templateRole string, fields map[string]string) error {
	tmpl, ok := m.templates[templateRole]
	if !ok {
		tmpl = m.templates[templateDefault]
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, fields); err != nil {
		return fmt.Errorf("render template %s: %w", templateRole, err)
	}

	subject := fields["subject"]
	if subject == "" {
		subject = "Welcome to GradLink"
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, msg.Bytes()); err != nil {
		return fmt.Errorf("%w: smtp send: %v", domain.ErrExternal, err)
	}
	return nil
}
