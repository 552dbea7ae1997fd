package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Quote struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Reference string       `gorm:"type:varchar(32);not null;uniqueIndex" json:"reference"`

	Name           string                      `gorm:"not null" json:"name"`
	Company        string                      `json:"company,omitempty"`
	Email          string                      `gorm:"not null;index" json:"email"`
	Phone          string                      `gorm:"not null" json:"phone"`
	EventDate      time.Time                   `gorm:"not null;index" json:"event_date"`
	EventType      EventType                   `gorm:"type:varchar(32);not null" json:"event_type"`
	EventTypeOther string                      `json:"event_type_other,omitempty"`
	Services       datatypes.JSONSlice[string] `gorm:"type:json" json:"services"`
	Guests         int                         `gorm:"not null;default:1" json:"guests"`
	Location       string                      `json:"location,omitempty"`
	Notes          string                      `gorm:"type:text" json:"notes,omitempty"`

	Items         []LineItem      `gorm:"serializer:json;type:json" json:"items"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(16);not null" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(32);not null;index" json:"payment_status"`
	Payment       *Payment        `gorm:"serializer:json;type:json" json:"payment,omitempty"`

	Status Status `gorm:"type:varchar(16);not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Quote) TableName() string { return "quotes" }

type LineItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Payment is populated once a payment has been processed.
type Payment struct {
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Reference     string          `json:"reference,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// RecomputeTotals derives every line total and the quote total from
// quantity and price. Client-supplied totals are overwritten.
func (q *Quote) RecomputeTotals() {
	total := decimal.Zero
	for i := range q.Items {
		item := &q.Items[i]
		item.Price = item.Price.Round(2)
		item.Total = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(item.Total)
	}
	q.TotalAmount = total.Round(2)
}
