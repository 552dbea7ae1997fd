package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

const DefaultSource = "website"

// Message is an inbound enquiry from the public contact form.
type Message struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"not null" json:"name"`
	Email     string            `gorm:"not null;index" json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Status    Status            `gorm:"type:varchar(16);not null;index" json:"status"`
	Source    string            `gorm:"type:varchar(64);not null" json:"source"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

func (Message) TableName() string { return "contact_messages" }
