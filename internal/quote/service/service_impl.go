package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	customerdomain "github.com/smallbiznis/rentaldesk/internal/customer/domain"
	obslogger "github.com/smallbiznis/rentaldesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/smallbiznis/rentaldesk/internal/pipeline"
	"github.com/smallbiznis/rentaldesk/internal/providers/email"
	"github.com/smallbiznis/rentaldesk/internal/providers/pdf"
	"github.com/smallbiznis/rentaldesk/internal/quote/domain"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	workflowSubmit   = "quote_submit"
	workflowApproval = "quote_approval"

	maxTransitionAttempts = 3
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Repo          domain.Repository
	Customers     customerdomain.Service
	Mailer        email.Provider
	PDF           pdf.Provider
	Notifications *config.NotificationConfigHolder
	Clock         clock.Clock
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	repo          domain.Repository
	customers     customerdomain.Service
	mailer        email.Provider
	pdf           pdf.Provider
	notifications *config.NotificationConfigHolder
	clock         clock.Clock
	metrics       *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("quote.service"),
		repo:          p.Repo,
		customers:     p.Customers,
		mailer:        p.Mailer,
		pdf:           p.PDF,
		notifications: p.Notifications,
		clock:         p.Clock,
		metrics:       p.Metrics,
	}
}

// Submit persists a new quote and then, best effort, renders its document
// and sends the customer and admin notifications. Only persistence can fail
// the call.
func (s *Service) Submit(ctx context.Context, req domain.SubmitQuoteRequest) (domain.Quote, error) {
	quote, err := buildQuote(req)
	if err != nil {
		return domain.Quote{}, err
	}

	var doc *domain.Document
	log := obslogger.WithContext(ctx, s.log)
	runner := pipeline.NewRunner(workflowSubmit, log, s.metrics)
	_, err = runner.Run(ctx,
		pipeline.Step{
			Name:   "persist",
			Policy: pipeline.Fatal,
			Run: func(ctx context.Context) error {
				return s.repo.Insert(ctx, s.db, &quote)
			},
		},
		pipeline.Step{
			Name:   "render_document",
			Policy: pipeline.BestEffort,
			Run: func(ctx context.Context) (err error) {
				doc, err = s.render(ctx, quote)
				return err
			},
		},
		pipeline.Step{
			Name:   "customer_email",
			Policy: pipeline.BestEffort,
			Run: func(ctx context.Context) error {
				return s.notify(ctx, mailQuoteReceived, quote, []string{quote.Email}, doc)
			},
		},
		pipeline.Step{
			Name:   "admin_email",
			Policy: pipeline.BestEffort,
			Skip:   func() bool { return len(s.adminRecipients()) == 0 },
			Run: func(ctx context.Context) error {
				return s.notify(ctx, mailQuoteNewAdmin, quote, s.adminRecipients(), nil)
			},
		},
	)
	if err != nil {
		return domain.Quote{}, err
	}

	obslogger.WithQuote(log, quote.ID.String(), quote.Reference).Info("quote submitted",
		zap.String("event_type", string(quote.EventType)),
		zap.Int("items", len(quote.Items)),
	)
	return quote, nil
}

func (s *Service) UpdateFields(ctx context.Context, id string, req domain.UpdateQuoteRequest) (domain.Quote, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	updated := *current
	if err := applyUpdate(&updated, req); err != nil {
		return domain.Quote{}, err
	}
	if err := s.repo.SaveDetails(ctx, s.db, &updated); err != nil {
		return domain.Quote{}, err
	}
	if req.Status == nil {
		return s.reload(ctx, current.ID)
	}

	quote, approved, err := s.transition(ctx, current.ID, updated.Status)
	if err != nil {
		return domain.Quote{}, err
	}
	if approved {
		s.runApproval(ctx, quote)
	}
	return quote, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req domain.UpdateStatusRequest) (domain.Quote, error) {
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return domain.Quote{}, err
	}
	quoteID, err := parseID(id)
	if err != nil {
		return domain.Quote{}, err
	}

	quote, approved, err := s.transition(ctx, quoteID, status)
	if err != nil {
		return domain.Quote{}, err
	}
	if approved {
		s.runApproval(ctx, quote)
	}
	return quote, nil
}

// transition writes status conditionally on the stored status. When another
// writer moves the quote in between, it re-reads and tries again against the
// new value. The bool reports whether this write entered an approval status.
func (s *Service) transition(ctx context.Context, id snowflake.ID, to domain.Status) (domain.Quote, bool, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		current, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.Quote{}, false, err
		}
		if current == nil {
			return domain.Quote{}, false, domain.ErrNotFound
		}
		if strings.EqualFold(string(current.Status), string(to)) {
			return *current, false, nil
		}

		affected, err := s.repo.CompareAndSetStatus(ctx, s.db, id, current.Status, to)
		if err != nil {
			return domain.Quote{}, false, err
		}
		if affected == 0 {
			s.log.Debug("quote status moved during update, retrying",
				zap.String("quote_id", id.String()),
				zap.String("seen", string(current.Status)),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		quote, err := s.reload(ctx, id)
		if err != nil {
			return domain.Quote{}, false, err
		}
		return quote, domain.IsApprovalTransition(current.Status, to), nil
	}
	return domain.Quote{}, false, domain.ErrConcurrentUpdate
}

// runApproval fires the side effects of entering approved or confirmed.
// Every step is best effort; the status write is already committed.
func (s *Service) runApproval(ctx context.Context, quote domain.Quote) {
	var doc *domain.Document
	log := obslogger.WithQuote(obslogger.WithContext(ctx, s.log), quote.ID.String(), quote.Reference)
	runner := pipeline.NewRunner(workflowApproval, log, s.metrics)
	res, _ := runner.Run(ctx,
		pipeline.Step{
			Name:   "render_document",
			Policy: pipeline.BestEffort,
			Run: func(ctx context.Context) (err error) {
				doc, err = s.render(ctx, quote)
				return err
			},
		},
		pipeline.Step{
			Name:   "confirmation_email",
			Policy: pipeline.BestEffort,
			Run: func(ctx context.Context) error {
				return s.notify(ctx, mailQuoteApproved, quote, []string{quote.Email}, doc)
			},
		},
		pipeline.Step{
			Name:   "materialize_customer",
			Policy: pipeline.BestEffort,
			Run: func(ctx context.Context) error {
				_, _, err := s.customers.Materialize(ctx, customerdomain.MaterializeRequest{
					Email:          quote.Email,
					Name:           quote.Name,
					Phone:          quote.Phone,
					EventDate:      quote.EventDate,
					Amount:         quote.TotalAmount,
					QuoteID:        quote.ID.String(),
					QuoteReference: quote.Reference,
				})
				return err
			},
		},
		pipeline.Step{
			Name:   "admin_email",
			Policy: pipeline.BestEffort,
			Skip:   func() bool { return len(s.adminRecipients()) == 0 },
			Run: func(ctx context.Context) error {
				return s.notify(ctx, mailQuoteApprovedAdmin, quote, s.adminRecipients(), nil)
			},
		},
	)
	log.Info("quote approval processed",
		zap.String("status", string(quote.Status)),
		zap.Strings("completed", res.Completed),
		zap.Int("failed", len(res.Failed)),
	)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, req domain.UpdatePaymentStatusRequest) (domain.Quote, error) {
	status, err := domain.ParseSettablePaymentStatus(req.PaymentStatus)
	if err != nil {
		return domain.Quote{}, err
	}
	quote, err := s.load(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	quote.PaymentStatus = status
	switch {
	case status == domain.PaymentStatusPaid:
		paidAt := s.clock.Now()
		reference := strings.TrimSpace(req.Reference)
		if reference == "" {
			reference = quote.Reference
		}
		quote.Payment = &domain.Payment{
			Method:        quote.PaymentMethod,
			Status:        status,
			Amount:        quote.TotalAmount,
			Currency:      s.notifications.Get().Currency,
			Reference:     reference,
			TransactionID: strings.TrimSpace(req.TransactionID),
			PaidAt:        &paidAt,
		}
	case quote.Payment != nil:
		quote.Payment.Status = status
	}

	affected, err := s.repo.UpdatePayment(ctx, s.db, quote.ID, status, quote.Payment)
	if err != nil {
		return domain.Quote{}, err
	}
	if affected == 0 {
		return domain.Quote{}, domain.ErrNotFound
	}
	return s.reload(ctx, quote.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	quoteID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.Delete(ctx, s.db, quoteID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Quote, error) {
	quote, err := s.load(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}
	return *quote, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (domain.Quote, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if !domain.IsValidReference(reference) {
		return domain.Quote{}, domain.ErrInvalidReference
	}
	quote, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *quote, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuoteRequest) (domain.ListQuoteResponse, error) {
	filter, err := listFilter(req)
	if err != nil {
		return domain.ListQuoteResponse{}, err
	}
	sort := domain.SortOrder{Field: strings.ToLower(strings.TrimSpace(req.SortBy)), Desc: true}
	if req.SortDesc != nil {
		sort.Desc = *req.SortDesc
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, filter, page, sort)
	if err != nil {
		return domain.ListQuoteResponse{}, err
	}

	quotes := make([]domain.Quote, 0, len(items))
	for _, item := range items {
		if item != nil {
			quotes = append(quotes, *item)
		}
	}
	return domain.ListQuoteResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Quotes:   quotes,
	}, nil
}

func (s *Service) RenderDocument(ctx context.Context, id string) (domain.Document, error) {
	quote, err := s.load(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	doc, err := s.render(ctx, *quote)
	if err != nil {
		return domain.Document{}, fmt.Errorf("render quote %s: %w", quote.Reference, err)
	}
	return *doc, nil
}

func (s *Service) reload(ctx context.Context, id snowflake.ID) (domain.Quote, error) {
	quote, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *quote, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Quote, error) {
	quoteID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	quote, err := s.repo.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	return quote, nil
}

func listFilter(req domain.ListQuoteRequest) (domain.ListQuoteFilter, error) {
	filter := domain.ListQuoteFilter{
		Email:  strings.TrimSpace(req.Email),
		Search: strings.TrimSpace(req.Search),
	}
	var err error
	if strings.TrimSpace(req.Status) != "" {
		if filter.Status, err = domain.ParseStatus(req.Status); err != nil {
			return filter, err
		}
	}
	if strings.TrimSpace(req.PaymentStatus) != "" {
		if filter.PaymentStatus, err = domain.ParsePaymentStatus(req.PaymentStatus); err != nil {
			return filter, err
		}
	}
	if strings.TrimSpace(req.EventType) != "" {
		filter.EventType = domain.NormalizeEventType(req.EventType)
	}
	if strings.TrimSpace(req.EventDateFrom) != "" {
		from, err := parseEventDate(req.EventDateFrom)
		if err != nil {
			return filter, err
		}
		filter.EventDateFrom = &from
	}
	if strings.TrimSpace(req.EventDateTo) != "" {
		to, err := parseEventDate(req.EventDateTo)
		if err != nil {
			return filter, err
		}
		filter.EventDateTo = &to
	}
	return filter, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
