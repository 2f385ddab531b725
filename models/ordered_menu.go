package models

import "time"

// Line item statuses
const (
	MenuOrderStatusOrdered  = "ordered"
	MenuOrderStatusCooking  = "cooking"
	MenuOrderStatusServed   = "served"
	MenuOrderStatusRejected = "rejected"
)

// OrderedMenu is one physical unit of a menu within an order. Quantity is
// expanded at order creation into independent rows so each unit can be
// cooked, served or rejected on its own.
type OrderedMenu struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	OrderID      uint       `gorm:"not null;index" json:"order_id"`
	Order        *Order     `gorm:"foreignKey:OrderID" json:"-"`
	MenuID       uint       `gorm:"not null;index" json:"menu_id"`
	Menu         *Menu      `gorm:"foreignKey:MenuID" json:"menu,omitempty"`
	Price        int        `gorm:"not null" json:"price"` // unit price at order time
	Cooked       bool       `gorm:"not null;default:false" json:"cooked"`
	ServedAt     *time.Time `json:"served_at,omitempty"`
	RejectReason *string    `gorm:"type:varchar(255)" json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (om *OrderedMenu) Status() string {
	switch {
	case om.ServedAt != nil:
		return MenuOrderStatusServed
	case om.Cooked:
		return MenuOrderStatusCooking
	case om.RejectReason != nil:
		return MenuOrderStatusRejected
	default:
		return MenuOrderStatusOrdered
	}
}

// IsTerminal reports whether the unit can no longer change state.
func (om *OrderedMenu) IsTerminal() bool {
	s := om.Status()
	return s == MenuOrderStatusServed || s == MenuOrderStatusRejected
}
