package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/resendlabs/resend-go"
)

// ResendEmailSender delivers verification and reset mails through the
// Resend API.
type ResendEmailSender struct {
	client     *resend.Client
	from       string
	appBaseURL string
	verifyPath string
	resetPath  string
}

func NewResendEmailSender(apiKey string, from string, appBaseURL string) *ResendEmailSender {
	return &ResendEmailSender{
		client:     resend.NewClient(apiKey),
		from:       from,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		verifyPath: "/verify-email",
		resetPath:  "/reset-password",
	}
}

func (s *ResendEmailSender) SendVerificationEmail(ctx context.Context, email string, token string) error {
	link := s.buildURL(s.verifyPath, token)
	return s.send(email, "Verify your email",
		fmt.Sprintf("<p>Click to verify your email:</p><p><a href=%q>Verify Email</a></p>", link),
		fmt.Sprintf("Verify your email: %s", link))
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	link := s.buildURL(s.resetPath, token)
	return s.send(email, "Reset your password",
		fmt.Sprintf("<p>Click to reset your password:</p><p><a href=%q>Reset Password</a></p>", link),
		fmt.Sprintf("Reset your password: %s", link))
}

func (s *ResendEmailSender) buildURL(path string, token string) string {
	if s.appBaseURL == "" {
		return token
	}
	return fmt.Sprintf("%s%s?token=%s", s.appBaseURL, path, token)
}

func (s *ResendEmailSender) send(to string, subject string, html string, text string) error {
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	return err
}
