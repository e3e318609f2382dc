// Package mail implements the outbound mail collaborator: templated HTML
// messages rendered from embedded templates and delivered over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// SMTPConfig carries the transport settings for the SMTP dialer.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer renders a named template and sends the result via SMTP.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
}

// NewSMTPMailer parses the embedded templates and prepares a dialer. The
// SMTP connection is established lazily on the first Send.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &SMTPMailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:      cfg.From,
		templates: tmpl,
	}, nil
}

// Send renders the named template with vars and delivers the message. The
// context is consulted before dialing; gomail itself has no context support.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, templateName string, vars map[string]any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName+".html", vars); err != nil {
		return fmt.Errorf("render mail template %q: %w", templateName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
