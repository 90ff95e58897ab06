package models

import "time"

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// PaymentRecord is an append-only ledger row for one invoice outcome.
// Rows are never updated or deleted after creation.
type PaymentRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Amount      int64     `gorm:"not null" json:"amount"` // minor units
	Currency    string    `gorm:"type:varchar(3);not null" json:"currency"`
	Status      string    `gorm:"type:varchar(16);not null" json:"status"`
	Description string    `gorm:"type:varchar(255);default:''" json:"description"`
	InvoiceURL  string    `gorm:"type:varchar(255);default:''" json:"invoice_url,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
