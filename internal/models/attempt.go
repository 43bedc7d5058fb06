package models

import (
	"time"
)

// Attempt is one published bottle-opening video. Immutable once published;
// there is no edit path, only delete-by-owner.
type Attempt struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	Aid           string    `gorm:"uniqueIndex;size:36;not null" json:"id"` // opaque public id
	UserID        string    `gorm:"not null;index;size:64" json:"user_id"`
	User          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ToolUsed      string    `gorm:"not null" json:"tool_used"`
	BeverageBrand string    `gorm:"not null" json:"beverage_brand"`
	VideoRef      string    `gorm:"not null" json:"video_ref"` // playback reference at the video host
	Description   string    `gorm:"type:text" json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}
