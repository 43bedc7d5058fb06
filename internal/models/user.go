package models

import (
	"time"
)

// User mirrors an account at the hosted identity provider. The primary key
// is the provider's subject identifier, not a local sequence: rows are
// created lazily on a user's first authenticated write and never deleted.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Email     string    `gorm:"not null" json:"email"`
	Username  string    `gorm:"not null;default:'Anonymous'" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
