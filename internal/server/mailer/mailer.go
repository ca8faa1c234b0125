// Package mailer delivers account-verification and password-recovery
// emails over SMTP. Each message carries a link built from a configured
// base URL with the ephemeral token as its query parameter.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strings"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Secure dials the server over implicit TLS instead of plaintext.
	Secure bool

	// Base URLs the token links are built from, e.g.
	// https://example.com/verify.
	VerifyAccountURL string
	ResetPasswordURL string
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendAccountVerification(ctx context.Context, email, name, token string) error {
	link := tokenLink(m.cfg.VerifyAccountURL, token)
	html := fmt.Sprintf("Dear %s, <br />please click on this link to verify your account: <br /><a href=%q>%s</a>",
		name, link, link)
	return m.send(ctx, email, "Verify email", html)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, name, token string) error {
	link := tokenLink(m.cfg.ResetPasswordURL, token)
	html := fmt.Sprintf("Dear %s, <br />please click on this link to reset your password: <br /><a href=%q>%s</a>",
		name, link, link)
	return m.send(ctx, email, "Recover password", html)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, html string) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("email is not configured")
	}

	msg := buildMessage(m.cfg.From, to, subject, html)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	conn, err := m.dial(ctx, addr)
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if !m.cfg.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				return err
			}
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	return w.Close()
}

func (m *SMTPMailer) dial(ctx context.Context, addr string) (net.Conn, error) {
	if m.cfg.Secure {
		d := tls.Dialer{Config: &tls.Config{ServerName: m.cfg.Host}}
		return d.DialContext(ctx, "tcp", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func tokenLink(baseURL, token string) string {
	return baseURL + "?token=" + url.QueryEscape(token)
}

func buildMessage(from, to, subject, html string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(html)
	return msg.String()
}
