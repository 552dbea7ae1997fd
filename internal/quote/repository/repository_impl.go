package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/quote/domain"
	"github.com/smallbiznis/rentaldesk/pkg/db"
	"github.com/smallbiznis/rentaldesk/pkg/db/option"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"created_at":   true,
	"event_date":   true,
	"total_amount": true,
	"status":       true,
}

type Params struct {
	fx.In

	Clock        clock.Clock
	GenID        *snowflake.Node
	NewReference domain.ReferenceGenerator `optional:"true"`
}

type repo struct {
	clock        clock.Clock
	genID        *snowflake.Node
	newReference domain.ReferenceGenerator
}

func Provide(p Params) domain.Repository {
	return New(p.Clock, p.GenID, p.NewReference)
}

func New(clk clock.Clock, genID *snowflake.Node, newReference domain.ReferenceGenerator) domain.Repository {
	if newReference == nil {
		newReference = domain.NewReference
	}
	return &repo{clock: clk, genID: genID, newReference: newReference}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, quote *domain.Quote) error {
	now := r.clock.Now()
	if !quote.EventDate.After(now) {
		return domain.ErrEventDateNotFuture
	}
	if len(quote.Items) == 0 {
		return domain.ErrEmptyItems
	}

	quote.ID = r.genID.Generate()
	if quote.Reference == "" {
		quote.Reference = r.newReference(now)
	}
	quote.RecomputeTotals()
	quote.Status = domain.StatusPending
	quote.PaymentStatus = domain.PaymentStatusPending
	quote.CreatedAt = now
	quote.UpdatedAt = now

	if err := conn.WithContext(ctx).Create(quote).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	return r.findOne(ctx, conn, "id = ?", id)
}

func (r *repo) FindByReference(ctx context.Context, conn *gorm.DB, reference string) (*domain.Quote, error) {
	return r.findOne(ctx, conn, "reference = ?", reference)
}

func (r *repo) findOne(ctx context.Context, conn *gorm.DB, query string, arg any) (*domain.Quote, error) {
	var quotes []*domain.Quote
	err := conn.WithContext(ctx).
		Where(query, arg).
		Limit(1).
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, nil
	}
	return quotes[0], nil
}

// SaveDetails writes the editable columns. Identity, status and payment
// columns have their own guarded writes and are never touched here.
func (r *repo) SaveDetails(ctx context.Context, conn *gorm.DB, quote *domain.Quote) error {
	quote.RecomputeTotals()
	quote.UpdatedAt = r.clock.Now()
	err := conn.WithContext(ctx).
		Model(quote).
		Select("*").
		Omit("id", "reference", "created_at", "status", "payment_status", "payment").
		Updates(quote).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

func (r *repo) UpdatePayment(ctx context.Context, conn *gorm.DB, id snowflake.ID, status domain.PaymentStatus, payment *domain.Payment) (int64, error) {
	res := conn.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Select("payment_status", "payment", "updated_at").
		Updates(&domain.Quote{
			PaymentStatus: status,
			Payment:       payment,
			UpdatedAt:     r.clock.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *repo) CompareAndSetStatus(ctx context.Context, conn *gorm.DB, id snowflake.ID, from, to domain.Status) (int64, error) {
	res := conn.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": r.clock.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) (int64, error) {
	res := conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.Quote{})
	return res.RowsAffected, res.Error
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListQuoteFilter, page pagination.Pagination, sort domain.SortOrder) ([]*domain.Quote, int64, error) {
	stmt := conn.WithContext(ctx).Model(&domain.Quote{})
	for _, opt := range filterOptions(filter) {
		stmt = opt.Apply(stmt)
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotes []*domain.Quote
	stmt = option.WithSortBy(option.QuerySortBy{
		Field:   sort.Field,
		Desc:    sort.Desc,
		Allow:   sortable,
		Default: "created_at",
	}).Apply(stmt)
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&quotes).Error; err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func filterOptions(filter domain.ListQuoteFilter) []option.QueryOption {
	var opts []option.QueryOption
	if filter.Status != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "status", Operator: option.EQ, Value: filter.Status}))
	}
	if filter.PaymentStatus != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "payment_status", Operator: option.EQ, Value: filter.PaymentStatus}))
	}
	if filter.EventType != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "event_type", Operator: option.EQ, Value: filter.EventType}))
	}
	if email := strings.ToLower(strings.TrimSpace(filter.Email)); email != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "email", Operator: option.EQ, Value: email}))
	}
	if filter.EventDateFrom != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "event_date", Operator: option.GTE, Value: *filter.EventDateFrom}))
	}
	if filter.EventDateTo != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "event_date", Operator: option.LTE, Value: *filter.EventDateTo}))
	}
	if filter.Search != "" {
		opts = append(opts, option.WithSearch(filter.Search, "name", "email", "reference"))
	}
	return opts
}
