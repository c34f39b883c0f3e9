package model

import (
	"time"

	"gorm.io/gorm"
)

// Cart is the single active cart of a user. TotalPrice is denormalized and
// must always equal the sum of the item subtotals; every mutation touches the
// cart row and its items inside one transaction to keep that true.
type Cart struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	TotalPrice float64        `gorm:"not null;default:0" json:"total_price"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User  User       `gorm:"foreignKey:UserID" json:"-"`
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one line of a cart. Name, Price and ImageURL are snapshots of
// the product at the time it was added; Subtotal must equal Price * Quantity.
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CartID    uint           `gorm:"not null;index" json:"cart_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Name      string         `gorm:"not null" json:"name"`
	Price     float64        `gorm:"not null" json:"price"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	ImageURL  string         `json:"image_url"`
	Subtotal  float64        `gorm:"not null" json:"subtotal"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Cart    Cart    `gorm:"foreignKey:CartID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
