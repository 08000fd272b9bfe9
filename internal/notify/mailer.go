// Package notify delivers account lifecycle emails. It is a fire-and-forget
// sink from the caller's perspective: one send attempt, no retries.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/altonlabs/authd/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer is the notification sink consumed by the auth service. The service
// persists state transitions before calling any of these; a send error fails
// the request but never rolls the transition back.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, code string) error
	SendWelcomeEmail(ctx context.Context, to, firstName string) error
	SendResetPasswordEmail(ctx context.Context, to, resetURL string) error
	SendResetSuccessEmail(ctx context.Context, to string) error
}

// SMTPMailer sends over SMTP with gomail.
type SMTPMailer struct {
	cfg    *config.EmailConfig
	logger *slog.Logger
}

// NewSMTPMailer returns a Mailer using cfg's SMTP credentials.
func NewSMTPMailer(cfg *config.EmailConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, html string) error {
	if m.cfg.SMTPHost == "" || m.cfg.FromEmail == "" {
		return fmt.Errorf("mailer not configured")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// SendVerificationEmail delivers the 6-digit verification code.
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, code string) error {
	return m.send(ctx, to, "Verify Your Email", fmt.Sprintf(verificationTemplate, code))
}

// SendWelcomeEmail greets a freshly verified account.
func (m *SMTPMailer) SendWelcomeEmail(ctx context.Context, to, firstName string) error {
	return m.send(ctx, to, "Welcome", fmt.Sprintf(welcomeTemplate, firstName))
}

// SendResetPasswordEmail delivers the reset link.
func (m *SMTPMailer) SendResetPasswordEmail(ctx context.Context, to, resetURL string) error {
	return m.send(ctx, to, "Reset Your Password", fmt.Sprintf(resetRequestTemplate, resetURL))
}

// SendResetSuccessEmail confirms a completed password reset.
func (m *SMTPMailer) SendResetSuccessEmail(ctx context.Context, to string) error {
	return m.send(ctx, to, "Password Reset Successful", resetSuccessTemplate)
}
