package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Customer, error)
	Save(ctx context.Context, db *gorm.DB, customer *Customer) error
	// RecordBooking applies one approved booking with in-database increments.
	RecordBooking(ctx context.Context, db *gorm.DB, id snowflake.ID, booking Booking) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	DeleteCreatedBefore(ctx context.Context, db *gorm.DB, status Status, cutoff time.Time) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, int64, error)
}

type Booking struct {
	Name      string
	Phone     string
	EventDate time.Time
	Amount    decimal.Decimal
	At        time.Time
}

type ListCustomerFilter struct {
	Status Status
	Search string
}
