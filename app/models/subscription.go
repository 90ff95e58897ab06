package models

import "time"

const (
	BillingProviderStripe = "stripe"

	BillingIntervalMonth   = "month"
	BillingIntervalYear    = "year"
	BillingIntervalUnknown = "unknown"
)

const (
	BillingStatusActive     = "active"
	BillingStatusTrialing   = "trialing"
	BillingStatusPastDue    = "past_due"
	BillingStatusCanceled   = "canceled"
	BillingStatusIncomplete = "incomplete"
)

// Subscription is the single billing state record per user. The plan column
// always reflects the last successfully processed billing event; webhook
// handlers merge individual fields and never replace the whole row.
type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Plan             string     `gorm:"type:varchar(50);not null;default:'free';index" json:"plan"`
	Status           string     `gorm:"type:varchar(32);not null;default:''" json:"status"`
	CustomerRef      string     `gorm:"type:varchar(191);default:'';index" json:"customer_ref"`
	SubscriptionRef  string     `gorm:"type:varchar(191);default:'';index" json:"subscription_ref"`
	CurrentPeriodEnd *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
