package entity

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken is one issued email-verification token. Several may
// exist per account (one per resend); all of them are deleted together when
// a verification succeeds. The User back-reference is a lookup aid only and
// carries no ownership.
type VerificationToken struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	User   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Token string `gorm:"type:text;not null;index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
