package models

import "time"

type Restaurant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(100);not null;default:'우리식당'" json:"name"`
	OpenTime       string    `gorm:"type:varchar(10)" json:"open_time"`
	CloseTime      string    `gorm:"type:varchar(10)" json:"close_time"`
	BreakStartTime *string   `gorm:"type:varchar(10)" json:"break_start_time,omitempty"`
	BreakEndTime   *string   `gorm:"type:varchar(10)" json:"break_end_time,omitempty"`
	BankName       string    `gorm:"type:varchar(50)" json:"bank_name"`
	BankAccountNo  string    `gorm:"type:varchar(50)" json:"bank_account_no"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
