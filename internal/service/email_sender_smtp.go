package service

import (
	"context"
	"fmt"
	"strings"

	mail "gopkg.in/mail.v2"
)

// SMTPEmailSender delivers mails over plain SMTP, typically for local
// development against a capture server.
type SMTPEmailSender struct {
	dialer     *mail.Dialer
	from       string
	appBaseURL string
}

func NewSMTPEmailSender(host string, port int, username string, password string, from string, appBaseURL string) *SMTPEmailSender {
	return &SMTPEmailSender{
		dialer:     mail.NewDialer(host, port, username, password),
		from:       from,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

func (s *SMTPEmailSender) SendVerificationEmail(ctx context.Context, email string, token string) error {
	link := s.buildURL("/verify-email", token)
	body := fmt.Sprintf("<p>Click to verify your email:</p><p><a href=%q>Verify Email</a></p>", link)
	return s.send(email, "Verify your email", body)
}

func (s *SMTPEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	link := s.buildURL("/reset-password", token)
	body := fmt.Sprintf("<p>Click to reset your password:</p><p><a href=%q>Reset Password</a></p>", link)
	return s.send(email, "Reset your password", body)
}

func (s *SMTPEmailSender) buildURL(path string, token string) string {
	if s.appBaseURL == "" {
		return token
	}
	return fmt.Sprintf("%s%s?token=%s", s.appBaseURL, path, token)
}

func (s *SMTPEmailSender) send(to string, subject string, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}
