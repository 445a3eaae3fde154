package service

import (
	"context"
	"time"

	"github.com/kurromiii/E-Commerce/internal/entity"
	"github.com/kurromiii/E-Commerce/internal/repository"
	"github.com/kurromiii/E-Commerce/internal/utils"
)

const defaultResendWindow = time.Hour

// VerificationLedger owns the history of verification tokens issued to an
// account and the policy deciding when a fresh one may be emailed.
type VerificationLedger struct {
	codec  utils.TokenCodec
	clock  Clock
	window time.Duration
}

func NewVerificationLedger(codec utils.TokenCodec, clock Clock, window time.Duration) *VerificationLedger {
	if clock == nil {
		clock = RealClock{}
	}
	if window <= 0 {
		window = defaultResendWindow
	}
	return &VerificationLedger{codec: codec, clock: clock, window: window}
}

// ShouldResend reports whether a new verification email is due. Tokens are
// kept newest first; a resend is due when the account has none or the
// newest is older than the resend window.
func (l *VerificationLedger) ShouldResend(tokens []entity.VerificationToken) bool {
	if len(tokens) == 0 {
		return true
	}
	return tokens[0].CreatedAt.Before(l.clock.Now().Add(-l.window))
}

// RecordNewToken mints a verification token, stamps it with the current
// time, persists it and prepends it to the account's owned collection.
func (l *VerificationLedger) RecordNewToken(ctx context.Context, tokens repository.VerificationTokenRepository, user *entity.User) (*entity.VerificationToken, error) {
	signed, err := l.codec.IssueVerificationToken(user.Email)
	if err != nil {
		return nil, err
	}

	token := &entity.VerificationToken{
		UserID:    user.ID,
		Token:     signed,
		CreatedAt: l.clock.Now(),
	}
	if err := tokens.Create(ctx, token); err != nil {
		return nil, storageError(err)
	}

	user.VerificationTokens = append([]entity.VerificationToken{*token}, user.VerificationTokens...)
	return token, nil
}

// PurgeAll deletes every verification token owned by the account.
func (l *VerificationLedger) PurgeAll(ctx context.Context, tokens repository.VerificationTokenRepository, user *entity.User) error {
	if err := tokens.DeleteByUser(ctx, user.ID); err != nil {
		return storageError(err)
	}
	user.VerificationTokens = nil
	return nil
}
