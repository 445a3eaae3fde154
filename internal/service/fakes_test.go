package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kurromiii/E-Commerce/internal/entity"
	"github.com/kurromiii/E-Commerce/internal/repository"

	"github.com/google/uuid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentEmail struct {
	To    string
	Token string
	Kind  string
}

type recordingEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (s *recordingEmailSender) SendVerificationEmail(ctx context.Context, email string, token string) error {
	return s.record(email, token, "verification")
}

func (s *recordingEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	return s.record(email, token, "reset")
}

func (s *recordingEmailSender) record(email string, token string, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("mail server unreachable")
	}
	s.sent = append(s.sent, sentEmail{To: email, Token: token, Kind: kind})
	return nil
}

func (s *recordingEmailSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingEmailSender) last() sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentEmail{}
	}
	return s.sent[len(s.sent)-1]
}

// memoryStore backs the fake repositories. Entities are kept by value so a
// snapshot/restore pair can mimic transaction rollback.
type memoryStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]entity.User
	tokens []entity.VerificationToken
	audits []entity.AuditLog
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[uuid.UUID]entity.User{}}
}

type storeSnapshot struct {
	users  map[uuid.UUID]entity.User
	tokens []entity.VerificationToken
	audits []entity.AuditLog
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make(map[uuid.UUID]entity.User, len(s.users))
	for id, u := range s.users {
		users[id] = u
	}
	return storeSnapshot{
		users:  users,
		tokens: append([]entity.VerificationToken(nil), s.tokens...),
		audits: append([]entity.AuditLog(nil), s.audits...),
	}
}

func (s *memoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.tokens = snap.tokens
	s.audits = snap.audits
}

func (s *memoryStore) tokensFor(userID uuid.UUID) []entity.VerificationToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokensForLocked(userID)
}

func (s *memoryStore) tokensForLocked(userID uuid.UUID) []entity.VerificationToken {
	var tokens []entity.VerificationToken
	for _, token := range s.tokens {
		if token.UserID == userID {
			tokens = append(tokens, token)
		}
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})
	return tokens
}

type memoryUserRepo struct {
	store *memoryStore
}

func (r *memoryUserRepo) Create(ctx context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) Save(ctx context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	user.VerificationTokens = s.tokensForLocked(id)
	return &user, nil
}

func (r *memoryUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) && !user.Deleted {
			user.VerificationTokens = s.tokensForLocked(user.ID)
			return &user, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByUsernameForUpdate(ctx context.Context, username string) (*entity.User, error) {
	return r.FindByUsername(ctx, username)
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) && !user.Deleted {
			user.VerificationTokens = s.tokensForLocked(user.ID)
			return &user, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) LogicalRemove(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil
	}
	user.Deleted = true
	s.users[id] = user
	return nil
}

func (r *memoryUserRepo) Remove(ctx context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, user.ID)
	kept := s.tokens[:0]
	for _, token := range s.tokens {
		if token.UserID != user.ID {
			kept = append(kept, token)
		}
	}
	s.tokens = kept
	return nil
}

type memoryTokenRepo struct {
	store *memoryStore
}

func (r *memoryTokenRepo) Create(ctx context.Context, token *entity.VerificationToken) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	stored := *token
	stored.User = entity.User{}
	s.tokens = append(s.tokens, stored)
	return nil
}

func (r *memoryTokenRepo) FindByToken(ctx context.Context, token string) (*entity.VerificationToken, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.tokens {
		if record.Token == token {
			if owner, ok := s.users[record.UserID]; ok {
				record.User = owner
			}
			return &record, nil
		}
	}
	return nil, nil
}

func (r *memoryTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tokens[:0]
	for _, token := range s.tokens {
		if token.UserID != userID {
			kept = append(kept, token)
		}
	}
	s.tokens = kept
	return nil
}

type memoryAuditRepo struct {
	store *memoryStore
}

func (r *memoryAuditRepo) Log(ctx context.Context, log *entity.AuditLog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, *log)
	return nil
}

// fakeUnitOfWork mimics transactional rollback by restoring a snapshot of
// the store when the callback fails.
type fakeUnitOfWork struct {
	store *memoryStore
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(repository.Repositories) error) error {
	snap := u.store.snapshot()
	err := fn(repository.Repositories{
		Users:  &memoryUserRepo{store: u.store},
		Tokens: &memoryTokenRepo{store: u.store},
		Audit:  &memoryAuditRepo{store: u.store},
	})
	if err != nil {
		u.store.restore(snap)
	}
	return err
}
