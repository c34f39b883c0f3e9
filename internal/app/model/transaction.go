package model

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the durable record of one checkout. The referenced cart is
// emptied right after checkout, so this row (not the cart) is the purchase
// history entry. Immutable once created.
type Transaction struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	CartID             uint           `gorm:"not null;index" json:"cart_id"`
	TotalPrice         float64        `gorm:"not null" json:"total_price"`
	LoyaltyPointEarned int            `gorm:"not null;default:0" json:"loyalty_point_earned"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Cart Cart `gorm:"foreignKey:CartID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
