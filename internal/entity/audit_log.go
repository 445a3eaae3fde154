package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	ActionRegistered     AuditAction = "registered"
	ActionLoginSuccess   AuditAction = "login_success"
	ActionLoginFailed    AuditAction = "login_failed"
	ActionEmailVerified  AuditAction = "email_verified"
	ActionPasswordReset  AuditAction = "password_reset"
	ActionAccountRemoved AuditAction = "account_removed"
)

type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID *uuid.UUID `gorm:"type:uuid;index"`
	User   *User      `gorm:"constraint:OnDelete:SET NULL"`

	Action   AuditAction `gorm:"type:varchar(40);not null"`
	Metadata datatypes.JSON

	CreatedAt time.Time
}
