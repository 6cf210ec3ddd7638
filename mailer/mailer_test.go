package mailer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "mail.example.com", Port: 587, Username: "u", Password: "p", From: "no-reply@example.com", FromName: "Friends Momo"})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.NotNil(t, a)
		assert.Equal(t, "no-reply@example.com", from)
		return nil
	}

	err := m.Send(context.Background(), Message{To: "guest@example.com", Subject: "Reset your password", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, []string{"guest@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "From: Friends Momo <no-reply@example.com>\r\n")
	assert.Contains(t, string(gotMsg), "Subject: Reset your password\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nhello")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	err := m.Send(context.Background(), Message{To: "x@y.z"})
	assert.ErrorContains(t, err, "x@y.z")
}

func TestLogMailer_KeepsBodyOutOfInfoLogs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	err := LogMailer{}.Send(context.Background(), Message{
		To: "guest@example.com", Subject: "Reset your password",
		Body: "http://localhost:8080/reset-password?token=abc123",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "guest@example.com")
	assert.NotContains(t, buf.String(), "token=abc123")
}
