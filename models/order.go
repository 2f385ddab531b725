package models

import "time"

// Order statuses, derived from nullable fields (never stored).
const (
	OrderStatusOrdered  = "ordered"
	OrderStatusPaid     = "paid"
	OrderStatusRejected = "rejected"
	OrderStatusFinished = "finished"
)

type Order struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RestaurantID uint   `gorm:"not null;index" json:"restaurant_id"`
	// Cyclic 0-999 counter; the trailing two digits are the payment-matching key.
	No           int           `gorm:"not null" json:"no"`
	TeamID       uint          `gorm:"not null;index" json:"team_id"`
	Team         *Team         `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	PaymentID    *uint         `gorm:"index" json:"payment_id,omitempty"`
	Payment      *Payment      `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	RejectReason *string       `gorm:"type:varchar(255)" json:"reject_reason,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	OrderedMenus []OrderedMenu `gorm:"foreignKey:OrderID" json:"ordered_menus,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

// Status derives the order state from its nullable fields.
// finished_at wins over everything, including a reject reason.
func (o *Order) Status() string {
	switch {
	case o.FinishedAt != nil:
		return OrderStatusFinished
	case o.PaymentID != nil:
		return OrderStatusPaid
	case o.RejectReason != nil:
		return OrderStatusRejected
	default:
		return OrderStatusOrdered
	}
}

// TotalPrice sums every line row, rejected ones included.
func (o *Order) TotalPrice() int {
	total := 0
	for _, om := range o.OrderedMenus {
		total += om.Price
	}
	return total
}

// FinalPrice is the amount the customer is asked to transfer: the shortfall
// of no%100 won encodes the order number in the bank transaction amount.
func (o *Order) FinalPrice() int {
	return o.TotalPrice() - o.No%100
}
