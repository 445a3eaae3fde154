package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles transaction-scoped repositories handed to a unit of
// work callback.
type Repositories struct {
	Users  UserRepository
	Tokens VerificationTokenRepository
	Audit  AuditLogRepository
}

// UnitOfWork runs a callback inside a single storage transaction. The
// callback's error rolls everything back, including tokens persisted before
// a failed email send.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Users:  NewUserRepository(tx),
			Tokens: NewVerificationTokenRepository(tx),
			Audit:  NewAuditLogRepository(tx),
		})
	})
}
