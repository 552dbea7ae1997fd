package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Clock   clock.Clock
	Config  config.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	clock     clock.Clock
	retention time.Duration
	metrics   *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	retention := p.Config.Retention.QuotationCustomerTTL
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("customer.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		clock:     p.Clock,
		retention: retention,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	email, err := validEmail(req.Email)
	if err != nil {
		return domain.Customer{}, err
	}

	status := domain.StatusActive
	if strings.TrimSpace(req.Status) != "" {
		if status, err = domain.ParseStatus(req.Status); err != nil {
			return domain.Customer{}, err
		}
	}
	bookingDate, err := parseOptionalDate(req.BookingDate)
	if err != nil {
		return domain.Customer{}, err
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:          s.genID.Generate(),
		Email:       email,
		Name:        name,
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		Company:     strings.TrimSpace(req.Company),
		Notes:       strings.TrimSpace(req.Notes),
		Status:      status,
		BookingDate: bookingDate,
		TotalSpent:  decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{Search: strings.TrimSpace(req.Search)}
	if strings.TrimSpace(req.Status) != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return domain.ListCustomerResponse{}, err
		}
		filter.Status = status
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}
	return domain.ListCustomerResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		Customers: customers,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Email != nil {
		if customer.Email, err = validEmail(*req.Email); err != nil {
			return domain.Customer{}, err
		}
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.Company != nil {
		customer.Company = strings.TrimSpace(*req.Company)
	}
	if req.Notes != nil {
		customer.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Status != nil {
		if customer.Status, err = domain.ParseStatus(*req.Status); err != nil {
			return domain.Customer{}, err
		}
	}
	if req.BookingDate != nil {
		if customer.BookingDate, err = parseOptionalDate(req.BookingDate); err != nil {
			return domain.Customer{}, err
		}
	}
	if req.LastEventDate != nil {
		if customer.LastEventDate, err = parseOptionalDate(req.LastEventDate); err != nil {
			return domain.Customer{}, err
		}
	}
	if req.TotalBookings != nil {
		if *req.TotalBookings < 0 {
			return domain.Customer{}, domain.ErrInvalidAmount
		}
		customer.TotalBookings = *req.TotalBookings
	}
	if req.TotalSpent != nil {
		if req.TotalSpent.IsNegative() {
			return domain.Customer{}, domain.ErrInvalidAmount
		}
		customer.TotalSpent = req.TotalSpent.Round(2)
	}

	customer.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.Delete(ctx, s.db, customerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Materialize(ctx context.Context, req domain.MaterializeRequest) (domain.Customer, bool, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" {
		return domain.Customer{}, false, domain.ErrInvalidEmail
	}
	booking := domain.Booking{
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		EventDate: req.EventDate,
		Amount:    req.Amount.Round(2),
		At:        s.clock.Now(),
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Customer{}, false, err
	}
	if existing != nil {
		customer, err := s.recordBooking(ctx, existing.ID, booking)
		return customer, false, err
	}

	eventDate := req.EventDate
	customer := domain.Customer{
		ID:            s.genID.Generate(),
		Email:         email,
		Name:          booking.Name,
		Phone:         booking.Phone,
		Status:        domain.StatusActive,
		TotalBookings: 1,
		TotalSpent:    booking.Amount,
		LastEventDate: &eventDate,
		Notes:         fmt.Sprintf("Created from quote %s (%s)", req.QuoteReference, req.QuoteID),
		CreatedAt:     booking.At,
		UpdatedAt:     booking.At,
	}
	// A concurrent approval for the same email can win the unique index; the
	// caller logs the ErrDuplicateKey and the booking is not counted.
	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, false, err
	}

	s.metrics.ObserveCustomerMaterialize("created")
	s.log.Info("customer materialized from quote",
		zap.String("customer_id", customer.ID.String()),
		zap.String("quote_reference", req.QuoteReference),
	)
	return customer, true, nil
}

func (s *Service) recordBooking(ctx context.Context, id snowflake.ID, booking domain.Booking) (domain.Customer, error) {
	affected, err := s.repo.RecordBooking(ctx, s.db, id, booking)
	if err != nil {
		return domain.Customer{}, err
	}
	if affected == 0 {
		return domain.Customer{}, domain.ErrNotFound
	}
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	s.metrics.ObserveCustomerMaterialize("updated")
	return *customer, nil
}

func (s *Service) SweepStaleQuotations(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.retention)
	deleted, err := s.repo.DeleteCreatedBefore(ctx, s.db, domain.StatusQuotation, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep quotation customers: %w", err)
	}
	s.metrics.ObserveSweep(deleted)
	if deleted > 0 {
		s.log.Info("removed stale quotation customers",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if email == "" || !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.ErrInvalidDate
}
