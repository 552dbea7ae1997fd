// Package domain contains core types for admin authentication.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const RoleAdmin = "admin"

// AdminUser is a back-office account. Only admins exist today.
type AdminUser struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name         string       `gorm:"not null" json:"name"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	Role         string       `gorm:"type:varchar(32);not null" json:"role"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (AdminUser) TableName() string { return "admin_users" }

// Claims is the verified identity carried by an access token.
type Claims struct {
	AdminID   snowflake.ID
	Email     string
	Role      string
	ExpiresAt time.Time
}
