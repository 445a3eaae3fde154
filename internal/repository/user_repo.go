package repository

import (
	"context"
	"errors"

	"github.com/kurromiii/E-Commerce/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Save(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByUsernameForUpdate(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	LogicalRemove(ctx context.Context, id uuid.UUID) error
	Remove(ctx context.Context, user *entity.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func tokensNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Save(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("VerificationTokens", tokensNewestFirst).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findByUsername(ctx, username, false)
}

// FindByUsernameForUpdate locks the account row for the duration of the
// surrounding transaction so the resend check-then-append is serialized
// per account.
func (r *userRepository) FindByUsernameForUpdate(ctx context.Context, username string) (*entity.User, error) {
	return r.findByUsername(ctx, username, true)
}

func (r *userRepository) findByUsername(ctx context.Context, username string, lock bool) (*entity.User, error) {
	query := r.db.WithContext(ctx).
		Preload("VerificationTokens", tokensNewestFirst).
		Where("LOWER(username) = LOWER(?) AND deleted = false", username)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user entity.User
	err := query.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND deleted = false", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername checks uniqueness across logically removed accounts too.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("LOWER(username) = LOWER(?)", username).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) LogicalRemove(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("deleted", true).
		Error
}

// Remove hard-deletes the account together with its owned addresses and
// verification tokens.
func (r *userRepository) Remove(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).
		Select(clause.Associations).
		Delete(user).
		Error
}
