package models

import "time"

// Operator roles. The first registered user becomes the owner.
const (
	RoleOwner   = "owner"
	RoleCashier = "cashier"
)

// User is a shop operator who can log in to the API.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	DisplayName  string    `gorm:"size:64" json:"display_name"`
	Role         string    `gorm:"size:16;not null;default:cashier" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	FailedLoginAttempts int        `gorm:"default:0" json:"failed_login_attempts"`
	LockedUntil         *time.Time `gorm:"index" json:"locked_until,omitempty"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP         string     `gorm:"size:64" json:"last_login_ip"`
}
