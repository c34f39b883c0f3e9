package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	FirstName    string         `gorm:"not null" json:"first_name"`
	LastName     string         `gorm:"not null" json:"last_name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Username     string         `gorm:"not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Phone        string         `json:"phone"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	LoyaltyPoint int            `gorm:"not null;default:0" json:"loyalty_point"` // accumulated, never spent here
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Carts        []Cart        `gorm:"foreignKey:UserID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
