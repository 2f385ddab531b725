package models

import "time"

// Table statuses
const (
	TableStatusIdle     = "idle"
	TableStatusInUse    = "in_use"
	TableStatusReserved = "reserved"
)

type Table struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	No           int       `gorm:"not null" json:"no"`
	Status       string    `gorm:"type:varchar(20);not null;default:'idle';index" json:"status"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
