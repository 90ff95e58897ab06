package models

import "time"

// PublishAttempt is the append-only audit row for one publish invocation.
// Exactly one row is written per attempt against an existing connection,
// whether the post succeeded, was rejected by the platform, or never left
// the process (expired token).
type PublishAttempt struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UUID              string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	ExternalAccountID string    `gorm:"type:varchar(191);not null" json:"external_account_id"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	ExternalPostID    string    `gorm:"type:varchar(191);default:''" json:"external_post_id,omitempty"`
	PostURL           string    `gorm:"type:varchar(500);default:''" json:"post_url,omitempty"`
	Success           bool      `gorm:"not null;index" json:"success"`
	Error             string    `gorm:"type:text" json:"error,omitempty"`
	PublishedAt       time.Time `gorm:"type:timestamp;not null;index" json:"published_at"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}
