package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
)

type Service interface {
	Submit(ctx context.Context, req SubmitQuoteRequest) (Quote, error)
	UpdateFields(ctx context.Context, id string, req UpdateQuoteRequest) (Quote, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (Quote, error)
	UpdatePaymentStatus(ctx context.Context, id string, req UpdatePaymentStatusRequest) (Quote, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Quote, error)
	GetByReference(ctx context.Context, reference string) (Quote, error)
	List(ctx context.Context, req ListQuoteRequest) (ListQuoteResponse, error)
	RenderDocument(ctx context.Context, id string) (Document, error)
}

type LineItemInput struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type SubmitQuoteRequest struct {
	Name           string          `json:"name"`
	Company        string          `json:"company"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	EventDate      string          `json:"event_date"`
	EventType      string          `json:"event_type"`
	EventTypeOther string          `json:"event_type_other"`
	Services       []string        `json:"services"`
	Guests         int             `json:"guests"`
	Location       string          `json:"location"`
	Notes          string          `json:"notes"`
	Items          []LineItemInput `json:"items"`
	PaymentMethod  string          `json:"payment_method"`
}

// UpdateQuoteRequest lists the fields an admin may change. Nil means untouched.
type UpdateQuoteRequest struct {
	Name           *string          `json:"name"`
	Company        *string          `json:"company"`
	Email          *string          `json:"email"`
	Phone          *string          `json:"phone"`
	EventDate      *string          `json:"event_date"`
	EventType      *string          `json:"event_type"`
	EventTypeOther *string          `json:"event_type_other"`
	Services       *[]string        `json:"services"`
	Guests         *int             `json:"guests"`
	Location       *string          `json:"location"`
	Notes          *string          `json:"notes"`
	Items          *[]LineItemInput `json:"items"`
	PaymentMethod  *string          `json:"payment_method"`
	Status         *string          `json:"status"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
	Reference     string `json:"reference"`
	TransactionID string `json:"transaction_id"`
}

type ListQuoteRequest struct {
	pagination.Pagination
	Status        string
	PaymentStatus string
	EventType     string
	Email         string
	Search        string
	EventDateFrom string
	EventDateTo   string
	SortBy        string
	SortDesc      *bool
}

type ListQuoteResponse struct {
	pagination.PageInfo
	Quotes []Quote `json:"quotes"`
}

type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}
