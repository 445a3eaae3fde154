package entity

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	AddressLine1 string `gorm:"type:varchar(512);not null" json:"address_line_1"`
	AddressLine2 string `gorm:"type:varchar(512)" json:"address_line_2"`
	City         string `gorm:"type:varchar(100);not null" json:"city"`
	Country      string `gorm:"type:varchar(75);not null" json:"country"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
