package models

import (
	"time"
)

// Vote is one directed vote on an attempt. The composite unique index keeps
// at most one row per (user, attempt); the toggle logic in VoteService
// depends on it as the backstop against concurrent duplicate casts.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;size:64;uniqueIndex:idx_votes_user_attempt" json:"user_id"`
	AttemptID uint      `gorm:"not null;index;uniqueIndex:idx_votes_user_attempt" json:"attempt_id"`
	Attempt   Attempt   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}
