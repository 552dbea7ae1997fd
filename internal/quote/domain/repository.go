package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert assigns id, reference, totals and pending statuses, and rejects
	// event dates that are not strictly in the future.
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Quote, error)
	// SaveDetails writes the editable fields and totals only.
	SaveDetails(ctx context.Context, db *gorm.DB, quote *Quote) error
	UpdatePayment(ctx context.Context, db *gorm.DB, id snowflake.ID, status PaymentStatus, payment *Payment) (int64, error)
	// CompareAndSetStatus moves a quote from one status to another and
	// reports zero rows when the stored status no longer equals from.
	CompareAndSetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListQuoteFilter, page pagination.Pagination, sort SortOrder) ([]*Quote, int64, error)
}

type ListQuoteFilter struct {
	Status        Status
	PaymentStatus PaymentStatus
	EventType     EventType
	Email         string
	Search        string
	EventDateFrom *time.Time
	EventDateTo   *time.Time
}

type SortOrder struct {
	Field string
	Desc  bool
}
