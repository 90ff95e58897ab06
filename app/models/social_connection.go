package models

import "time"

// Social platform constants used across connection-related models.
const (
	SocialProviderLinkedIn = "linkedin"
)

// SocialConnection stores the single active publishing authorization per
// user: the OAuth access token plus a profile snapshot. A reconnect replaces
// the record wholesale; disconnect deletes it. Whether a user can publish is
// decided from this row alone.
type SocialConnection struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Provider          string     `gorm:"type:varchar(50);not null;default:'linkedin'" json:"provider"`
	ExternalAccountID string     `gorm:"type:varchar(191);not null;index" json:"external_account_id"`
	AccessToken       string     `gorm:"type:text" json:"-"`
	ExpiresAt         time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	ProfileName       string     `gorm:"type:varchar(200);default:''" json:"profile_name"`
	ProfilePicture    string     `gorm:"type:varchar(500);default:''" json:"profile_picture,omitempty"`
	ConnectedAt       time.Time  `gorm:"type:timestamp;not null" json:"connected_at"`
	LastUsedAt        *time.Time `gorm:"type:timestamp;default:null" json:"last_used_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
