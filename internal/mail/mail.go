// Package mail delivers password reset emails.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
)

// Mailer sends the reset link to a user. Callers treat any error as a server
// failure and do not retry.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// PasswordReset renders the reset email for link.
func PasswordReset(to, link string) Message {
	escaped := html.EscapeString(link)
	return Message{
		To:      to,
		Subject: "Reset your Finance Tracker password",
		HTML: fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #FB8500;">Reset Your Password</h2>
  <p>You requested to reset your password for your Finance Tracker account.</p>
  <p>Click the button below to reset your password. This link will expire in 15 minutes.</p>
  <a href="%s" style="display: inline-block; padding: 12px 24px; background: #FB8500; color: white; text-decoration: none; border-radius: 6px; margin: 20px 0;">Reset Password</a>
  <p style="color: #666; font-size: 14px;">If you didn't request this, please ignore this email.</p>
  <p style="color: #666; font-size: 14px;">Or copy and paste this link: %s</p>
</div>`, escaped, escaped),
		Text: fmt.Sprintf("Reset your Finance Tracker password\n\nClick this link to reset your password (expires in 15 minutes):\n%s\n\nIf you didn't request this, please ignore this email.", link),
	}
}

// LogMailer writes reset links to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.logger.InfoContext(ctx, "Password reset email", "to", to, "link", link)
	return nil
}
