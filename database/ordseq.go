package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderCounter backs the cyclic order-number sequence. Postgres could do this
// with a CYCLE sequence; MySQL and SQLite cannot, so the counter lives in a
// locked row instead.
type OrderCounter struct {
	RestaurantID uint      `gorm:"primaryKey"`
	Next         int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// NextOrderNo allocates the next order number for a restaurant, wrapping
// 0-999. Must be called inside the caller's transaction so the row lock
// serializes concurrent order creations.
func NextOrderNo(tx *gorm.DB, restaurantID uint) (int, error) {
	var counter OrderCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("restaurant_id = ?", restaurantID).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = OrderCounter{RestaurantID: restaurantID, Next: 0}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	no := counter.Next
	counter.Next = (counter.Next + 1) % 1000
	if err := tx.Save(&counter).Error; err != nil {
		return 0, err
	}
	return no, nil
}
