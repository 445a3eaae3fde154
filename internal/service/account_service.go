package service

import (
	"context"
	"encoding/json"

	"github.com/kurromiii/E-Commerce/internal/entity"
	"github.com/kurromiii/E-Commerce/internal/repository"
	"github.com/kurromiii/E-Commerce/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AccountService orchestrates registration, login, account removal, email
// verification and password reset. It holds no mutable state of its own;
// everything is read from and written back to storage per call.
type AccountService struct {
	users  repository.UserRepository
	audit  repository.AuditLogRepository
	uow    repository.UnitOfWork
	ledger *VerificationLedger

	emailSender EmailSender
	hasher      PasswordHasher
	codec       utils.TokenCodec
}

func NewAccountService(
	users repository.UserRepository,
	audit repository.AuditLogRepository,
	uow repository.UnitOfWork,
	ledger *VerificationLedger,
	emailSender EmailSender,
	hasher PasswordHasher,
	codec utils.TokenCodec,
) *AccountService {
	return &AccountService{
		users:       users,
		audit:       audit,
		uow:         uow,
		ledger:      ledger,
		emailSender: emailSender,
		hasher:      hasher,
		codec:       codec,
	}
}

// Register creates an unverified account and sends exactly one verification
// email. The whole operation is transactional: a failed send rolls the
// registration back so nobody is left waiting for a mail that never went
// out.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	username := utils.NormalizeUsername(input.Username)
	email := utils.NormalizeEmail(input.Email)

	var user *entity.User
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		taken, err := r.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return storageError(err)
		}
		if taken {
			return &AccountExistsError{Field: "username"}
		}
		taken, err = r.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return storageError(err)
		}
		if taken {
			return &AccountExistsError{Field: "email"}
		}

		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return credentialError(err)
		}

		user = &entity.User{
			Username:     username,
			PasswordHash: hash,
			Email:        email,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			PhoneNumber:  input.PhoneNumber,
			Roles:        datatypes.NewJSONSlice([]entity.Role{entity.RoleCustomer}),
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return storageError(err)
		}

		token, err := s.ledger.RecordNewToken(ctx, r.Tokens, user)
		if err != nil {
			return err
		}
		if err := s.emailSender.SendVerificationEmail(ctx, user.Email, token.Token); err != nil {
			return emailError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &user.ID, entity.ActionRegistered, nil)
	return user, nil
}

// Login authenticates a user by username and password. Unknown users and
// wrong passwords both yield an empty token with no error, so callers
// cannot enumerate usernames. An unverified account raises NotVerifiedError
// after the resend decision.
func (s *AccountService) Login(ctx context.Context, username string, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", storageError(err)
	}
	if user == nil {
		// burn a hash comparison so unknown users cost the same as bad
		// passwords
		s.hasher.Verify(dummyPasswordHash, password)
		s.recordAudit(ctx, nil, entity.ActionLoginFailed, map[string]any{"username": username})
		return "", nil
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		s.recordAudit(ctx, &user.ID, entity.ActionLoginFailed, nil)
		return "", nil
	}

	if user.EmailVerified {
		token, err := s.codec.IssueAuthToken(user.Username)
		if err != nil {
			return "", err
		}
		s.recordAudit(ctx, &user.ID, entity.ActionLoginSuccess, nil)
		return token, nil
	}

	// Unverified: decide on a resend under a row lock so two concurrent
	// logins cannot both pass the window check and double-send.
	sent := false
	err = s.uow.Do(ctx, func(r repository.Repositories) error {
		locked, err := r.Users.FindByUsernameForUpdate(ctx, username)
		if err != nil {
			return storageError(err)
		}
		if locked == nil || !s.ledger.ShouldResend(locked.VerificationTokens) {
			return nil
		}
		token, err := s.ledger.RecordNewToken(ctx, r.Tokens, locked)
		if err != nil {
			return err
		}
		if err := s.emailSender.SendVerificationEmail(ctx, locked.Email, token.Token); err != nil {
			return emailError(err)
		}
		sent = true
		return nil
	})
	if err != nil {
		return "", err
	}
	return "", &NotVerifiedError{NewEmailSent: sent}
}

// VerifyEmail consumes a verification token. It returns true only for the
// single successful verification per account: unknown tokens, replayed
// tokens (deleted on success) and already-verified owners all return false
// without error.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (bool, error) {
	// Reject anything that is not one of our signed verification tokens
	// before touching storage.
	if email, err := s.codec.ReadVerificationEmail(token); err != nil || email == "" {
		return false, nil
	}

	verified := false
	var ownerID uuid.UUID
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		record, err := r.Tokens.FindByToken(ctx, token)
		if err != nil {
			return storageError(err)
		}
		if record == nil {
			return nil
		}

		user := record.User
		if user.EmailVerified {
			return nil
		}
		user.EmailVerified = true
		if err := r.Users.Save(ctx, &user); err != nil {
			return storageError(err)
		}
		if err := s.ledger.PurgeAll(ctx, r.Tokens, &user); err != nil {
			return err
		}
		verified = true
		ownerID = user.ID
		return nil
	})
	if err != nil {
		return false, err
	}

	if verified {
		s.recordAudit(ctx, &ownerID, entity.ActionEmailVerified, nil)
	}
	return verified, nil
}

// ForgotPassword mints a stateless reset token and emails it. Nothing is
// persisted: possession of the signed token is the sole authorization for
// the later reset.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return storageError(err)
	}
	if user == nil {
		return ErrEmailNotFound
	}

	token, err := s.codec.IssueResetToken(user.Email)
	if err != nil {
		return err
	}
	if err := s.emailSender.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		return emailError(err)
	}
	return nil
}

// ResetPassword replaces the stored hash for the account named by a valid
// reset token. Malformed, expired or wrong-purpose tokens leave the hash
// unchanged; an unknown email is a no-op.
func (s *AccountService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	email, err := s.codec.ReadResetEmail(token)
	if err != nil {
		return err
	}
	if email == "" {
		// validly signed, but minted for another purpose
		return utils.ErrMalformedToken
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return storageError(err)
	}
	if user == nil {
		return nil
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return credentialError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		return storageError(err)
	}

	s.recordAudit(ctx, &user.ID, entity.ActionPasswordReset, nil)
	return nil
}

func (s *AccountService) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if user == nil {
		return nil, &NotFoundError{ID: id}
	}
	return user, nil
}

func (s *AccountService) Update(ctx context.Context, user *entity.User) error {
	if _, err := s.FindByID(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return storageError(err)
	}
	return nil
}

func (s *AccountService) AssignRole(ctx context.Context, id uuid.UUID, role entity.Role) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.HasRole(role) {
		return nil
	}
	user.Roles = append(user.Roles, role)
	if err := s.users.Save(ctx, user); err != nil {
		return storageError(err)
	}
	return nil
}

// LogicalRemove flags the account as deleted but retains the record.
func (s *AccountService) LogicalRemove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.LogicalRemove(ctx, id); err != nil {
		return storageError(err)
	}
	s.recordAudit(ctx, &id, entity.ActionAccountRemoved, map[string]any{"mode": "logical"})
	return nil
}

// Remove hard-deletes the account, cascading its owned addresses and
// verification tokens.
func (s *AccountService) Remove(ctx context.Context, id uuid.UUID) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Remove(ctx, user); err != nil {
		return storageError(err)
	}
	s.recordAudit(ctx, nil, entity.ActionAccountRemoved, map[string]any{"mode": "physical", "username": user.Username})
	return nil
}

// UserMayAccess is the single access-control primitive: a requester may act
// on an account only when it is their own.
func (s *AccountService) UserMayAccess(requester *entity.User, targetID uuid.UUID) bool {
	return requester != nil && requester.ID == targetID
}

// recordAudit is best effort and never fails the calling operation.
func (s *AccountService) recordAudit(ctx context.Context, userID *uuid.UUID, action entity.AuditAction, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return
		}
		payload = datatypes.JSON(data)
	}
	_ = s.audit.Log(ctx, &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: payload,
	})
}
