package models

import "time"

// Team is one seating session at a table. EndedAt == nil means the party is
// still occupying the table; at most one active team may exist per table.
type Team struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	TableID      *uint      `gorm:"index" json:"table_id,omitempty"`
	Table        *Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	SessionKey   string     `gorm:"type:varchar(64)" json:"session_key"`
	Phone        *string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (t *Team) IsActive() bool {
	return t.EndedAt == nil
}
