package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/customer/domain"
	"github.com/smallbiznis/rentaldesk/pkg/db"
	"github.com/smallbiznis/rentaldesk/pkg/db/option"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, customer *domain.Customer) error {
	err := conn.WithContext(ctx).Create(customer).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	return r.findOne(ctx, conn, "id = ?", id)
}

// FindByEmail matches the stored value exactly. Callers normalize first.
func (r *repo) FindByEmail(ctx context.Context, conn *gorm.DB, email string) (*domain.Customer, error) {
	return r.findOne(ctx, conn, "email = ?", email)
}

func (r *repo) findOne(ctx context.Context, conn *gorm.DB, query string, arg any) (*domain.Customer, error) {
	var customers []*domain.Customer
	if err := conn.WithContext(ctx).Where(query, arg).Limit(1).Find(&customers).Error; err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return customers[0], nil
}

func (r *repo) Save(ctx context.Context, conn *gorm.DB, customer *domain.Customer) error {
	err := conn.WithContext(ctx).
		Model(customer).
		Select("*").
		Omit("id", "created_at").
		Updates(customer).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

func (r *repo) RecordBooking(ctx context.Context, conn *gorm.DB, id snowflake.ID, booking domain.Booking) (int64, error) {
	fields := map[string]any{
		"status":          domain.StatusActive,
		"last_event_date": booking.EventDate,
		"total_spent":     gorm.Expr("total_spent + ?", booking.Amount),
		"total_bookings":  gorm.Expr("total_bookings + ?", 1),
		"updated_at":      booking.At,
	}
	if booking.Name != "" {
		fields["name"] = booking.Name
	}
	if booking.Phone != "" {
		fields["phone"] = booking.Phone
	}
	res := conn.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) (int64, error) {
	res := conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.Customer{})
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteCreatedBefore(ctx context.Context, conn *gorm.DB, status domain.Status, cutoff time.Time) (int64, error) {
	res := conn.WithContext(ctx).
		Where("status = ? AND created_at < ?", status, cutoff).
		Delete(&domain.Customer{})
	return res.RowsAffected, res.Error
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, int64, error) {
	stmt := conn.WithContext(ctx).Model(&domain.Customer{})
	if filter.Status != "" {
		stmt = option.ApplyOperator(option.Condition{Field: "status", Operator: option.EQ, Value: filter.Status}).Apply(stmt)
	}
	if filter.Search != "" {
		stmt = option.WithSearch(filter.Search, "name", "email", "company", "phone").Apply(stmt)
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*domain.Customer
	err := option.ApplyPagination(page).Apply(stmt).
		Order("created_at desc, id desc").
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}
