package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Update(ctx context.Context, id string, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error

	// Materialize makes sure exactly one customer represents the approved
	// quote's email. created reports whether a new record was inserted.
	Materialize(ctx context.Context, req MaterializeRequest) (customer Customer, created bool, err error)
	// SweepStaleQuotations removes quotation-status customers older than the retention window.
	SweepStaleQuotations(ctx context.Context, now time.Time) (int64, error)
}

type CreateCustomerRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address"`
	Company     string  `json:"company"`
	Notes       string  `json:"notes"`
	Status      string  `json:"status"`
	BookingDate *string `json:"booking_date"`
}

type UpdateCustomerRequest struct {
	Name          *string          `json:"name"`
	Email         *string          `json:"email"`
	Phone         *string          `json:"phone"`
	Address       *string          `json:"address"`
	Company       *string          `json:"company"`
	Notes         *string          `json:"notes"`
	Status        *string          `json:"status"`
	BookingDate   *string          `json:"booking_date"`
	TotalBookings *int             `json:"total_bookings"`
	TotalSpent    *decimal.Decimal `json:"total_spent"`
	LastEventDate *string          `json:"last_event_date"`
}

type ListCustomerRequest struct {
	pagination.Pagination
	Status string
	Search string
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type MaterializeRequest struct {
	Email          string
	Name           string
	Phone          string
	EventDate      time.Time
	Amount         decimal.Decimal
	QuoteID        string
	QuoteReference string
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidDate   = errors.New("invalid_date")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrDuplicateKey  = errors.New("duplicate_key")
	ErrNotFound      = errors.New("not_found")
)
