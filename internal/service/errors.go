package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmailNotFound    = errors.New("no account for email")
	ErrEmailFailure     = errors.New("email delivery failed")
	ErrStorage          = errors.New("storage failure")
	ErrCredentialSystem = errors.New("credential hashing failure")
)

// AccountExistsError reports a registration conflict and which field caused
// it.
type AccountExistsError struct {
	Field string // "username" or "email"
}

func (e *AccountExistsError) Error() string {
	return fmt.Sprintf("account already exists: %s taken", e.Field)
}

// NotVerifiedError blocks a login until the email address is verified.
// NewEmailSent tells the caller whether this attempt triggered a fresh
// verification email or one had already been sent within the resend window.
type NotVerifiedError struct {
	NewEmailSent bool
}

func (e *NotVerifiedError) Error() string {
	return "email not verified"
}

type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no account with id %s", e.ID)
}

func storageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func emailError(err error) error {
	return fmt.Errorf("%w: %v", ErrEmailFailure, err)
}

func credentialError(err error) error {
	return fmt.Errorf("%w: %v", ErrCredentialSystem, err)
}
