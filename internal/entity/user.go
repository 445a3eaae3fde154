package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the account aggregate. It owns its verification tokens and
// addresses: deleting the user is solely responsible for destroying them.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`

	PasswordHash string `gorm:"type:text;not null" json:"-"`

	Email       string `gorm:"type:varchar(320);uniqueIndex;not null" json:"email"`
	FirstName   string `gorm:"type:varchar(20);not null" json:"first_name"`
	LastName    string `gorm:"type:varchar(20);not null" json:"last_name"`
	PhoneNumber string `gorm:"type:varchar(11)" json:"phone_number"`

	EmailVerified bool `gorm:"not null;default:false" json:"email_verified"`
	Deleted       bool `gorm:"not null;default:false" json:"-"`

	Roles datatypes.JSONSlice[Role] `gorm:"type:jsonb" json:"roles"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Addresses []Address `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	// VerificationTokens is loaded newest first.
	VerificationTokens []VerificationToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
