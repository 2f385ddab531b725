package models

import "time"

// Payment is one deduplicated bank transaction. CreatedAt carries the
// transaction timestamp from the bank, not the insertion time; together with
// Amount it is the idempotency key of the reconciliation job.
type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	RestaurantID  uint       `gorm:"not null;index" json:"restaurant_id"`
	Amount        int        `gorm:"not null" json:"amount"`
	TransactionBy *string    `gorm:"type:varchar(100)" json:"transaction_by,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
