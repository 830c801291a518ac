package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	FullName     string     `gorm:"not null" json:"fullName"`
	Phone        string     `json:"phone"`
	Role         string     `gorm:"not null;default:'customer'" json:"role"`
	Status       string     `gorm:"not null;default:'active'" json:"status"`
	TokenVersion int        `gorm:"not null;default:1" json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsActive() bool { return u.Status == UserStatusActive }
