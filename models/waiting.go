package models

import "time"

// Waiting statuses
const (
	WaitingStatusWaiting  = "waiting"
	WaitingStatusNotified = "notified"
	WaitingStatusEntered  = "entered"
	WaitingStatusRejected = "rejected"
)

type Waiting struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	Name         string     `gorm:"type:varchar(50);not null;index" json:"name"`
	Phone        string     `gorm:"type:varchar(20);not null;index" json:"phone"`
	NotifiedAt   *time.Time `json:"notified_at,omitempty"`
	EnteredAt    *time.Time `json:"entered_at,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
	RejectReason *string    `gorm:"type:varchar(255)" json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (w *Waiting) Status() string {
	switch {
	case w.EnteredAt != nil:
		return WaitingStatusEntered
	case w.RejectedAt != nil:
		return WaitingStatusRejected
	case w.NotifiedAt != nil:
		return WaitingStatusNotified
	default:
		return WaitingStatusWaiting
	}
}

// IsActive: not yet entered and not yet rejected (notified still counts).
func (w *Waiting) IsActive() bool {
	return w.EnteredAt == nil && w.RejectedAt == nil
}
