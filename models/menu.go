package models

import "time"

type Menu struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	Name         string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Desc         *string   `gorm:"type:text" json:"desc,omitempty"`
	Price        int       `gorm:"not null" json:"price"` // price in won
	Image        *string   `gorm:"type:varchar(255)" json:"image,omitempty"`
	NoStock      bool      `gorm:"not null;default:false" json:"no_stock"`
	// Canned drinks etc. that skip the kitchen queue entirely.
	IsInstantServe bool      `gorm:"not null;default:false" json:"is_instant_serve"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
