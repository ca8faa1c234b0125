package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenLink(t *testing.T) {
	link := tokenLink("https://example.com/verify", "abc123")
	assert.Equal(t, "https://example.com/verify?token=abc123", link)

	link = tokenLink("https://example.com/reset", "a+b/c=")
	assert.Equal(t, "https://example.com/reset?token=a%2Bb%2Fc%3D", link)
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("noreply@example.com", "user@example.com", "Verify email", "<p>hi</p>")

	assert.True(t, strings.HasPrefix(msg, "From: noreply@example.com\r\n"))
	assert.Contains(t, msg, "To: user@example.com\r\n")
	assert.Contains(t, msg, "Subject: Verify email\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n<p>hi</p>")
}

func TestSendUnconfigured(t *testing.T) {
	m := NewSMTPMailer(Config{})

	err := m.SendAccountVerification(context.Background(), "user@example.com", "Alice", "tok")
	assert.Error(t, err)

	err = m.SendPasswordReset(context.Background(), "user@example.com", "Alice", "tok")
	assert.Error(t, err)
}

func TestSendCanceledContext(t *testing.T) {
	m := NewSMTPMailer(Config{
		Host:             "127.0.0.1",
		Port:             2525,
		From:             "noreply@example.com",
		VerifyAccountURL: "https://example.com/verify",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendAccountVerification(ctx, "user@example.com", "Alice", "tok")
	assert.ErrorIs(t, err, context.Canceled)
}
