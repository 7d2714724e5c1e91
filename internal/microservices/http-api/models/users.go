package models

import (
	"time"
)

// User mirrors the identity provider's account. Rows are upserted from token
// claims; the provider stays the owner.
type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string    `gorm:"not null;default:''" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
