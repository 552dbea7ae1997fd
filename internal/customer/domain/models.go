package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusPending   Status = "pending"
	StatusQuotation Status = "quotation"
	StatusConfirmed Status = "confirmed"
	StatusBooked    Status = "booked"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusActive, StatusInactive, StatusPending, StatusQuotation, StatusConfirmed, StatusBooked:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

type Customer struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	Email         string          `gorm:"not null;uniqueIndex" json:"email"`
	Name          string          `gorm:"not null" json:"name"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	Company       string          `json:"company,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	Status        Status          `gorm:"type:varchar(16);not null;index" json:"status"`
	BookingDate   *time.Time      `json:"booking_date,omitempty"`
	TotalBookings int             `gorm:"not null;default:0" json:"total_bookings"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_spent"`
	LastEventDate *time.Time      `json:"last_event_date,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// NormalizeEmail is the canonical stored form used for uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
