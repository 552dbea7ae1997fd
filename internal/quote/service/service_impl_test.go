package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	customerdomain "github.com/smallbiznis/rentaldesk/internal/customer/domain"
	customerrepository "github.com/smallbiznis/rentaldesk/internal/customer/repository"
	customerservice "github.com/smallbiznis/rentaldesk/internal/customer/service"
	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/smallbiznis/rentaldesk/internal/providers/email"
	"github.com/smallbiznis/rentaldesk/internal/providers/pdf"
	"github.com/smallbiznis/rentaldesk/internal/quote/domain"
	"github.com/smallbiznis/rentaldesk/internal/quote/repository"
	"github.com/smallbiznis/rentaldesk/pkg/db"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (f *fakeMailer) Name() string { return "fake" }

func (f *fakeMailer) Send(_ context.Context, msg email.Message) (email.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return email.SendResult{}, f.err
	}
	return email.SendResult{Provider: "fake", MessageID: "msg-1"}, nil
}

func (f *fakeMailer) messagesTo(addr string) []email.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []email.Message
	for _, msg := range f.sent {
		for _, to := range msg.To {
			if to == addr {
				out = append(out, msg)
			}
		}
	}
	return out
}

type fakePDF struct {
	err   error
	calls int
}

func (f *fakePDF) RenderQuote(_ context.Context, doc pdf.QuoteDocument) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-" + doc.Reference), nil
}

type harness struct {
	svc       *Service
	db        *gorm.DB
	clock     *clock.FakeClock
	mailer    *fakeMailer
	pdf       *fakePDF
	customers customerdomain.Service
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	notify       config.NotificationConfig
	newReference domain.ReferenceGenerator
	wrapRepo     func(domain.Repository) domain.Repository
}

func withNotifications(cfg config.NotificationConfig) harnessOption {
	return func(h *harnessConfig) { h.notify = cfg }
}

func withReferenceGenerator(gen domain.ReferenceGenerator) harnessOption {
	return func(h *harnessConfig) { h.newReference = gen }
}

func withRepository(wrap func(domain.Repository) domain.Repository) harnessOption {
	return func(h *harnessConfig) { h.wrapRepo = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{notify: config.NotificationConfig{
		NotifyAdmins:    true,
		AdminRecipients: []string{"ops@rentals.test"},
		Currency:        "ZAR",
		BusinessName:    "Rentals",
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Quote{}, &customerdomain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(testNow)
	log := zaptest.NewLogger(t)
	metrics := obsmetrics.New(prometheus.NewRegistry())

	customers := customerservice.New(customerservice.Params{
		DB:      conn,
		Log:     log,
		GenID:   node,
		Repo:    customerrepository.Provide(),
		Clock:   clk,
		Config:  config.Config{Retention: config.RetentionConfig{QuotationCustomerTTL: 30 * 24 * time.Hour}},
		Metrics: metrics,
	})

	repo := repository.New(clk, node, cfg.newReference)
	if cfg.wrapRepo != nil {
		repo = cfg.wrapRepo(repo)
	}

	mailer := &fakeMailer{}
	renderer := &fakePDF{}
	svc := New(Params{
		DB:            conn,
		Log:           log,
		Repo:          repo,
		Customers:     customers,
		Mailer:        mailer,
		PDF:           renderer,
		Notifications: config.NewStaticNotificationConfigHolder(cfg.notify),
		Clock:         clk,
		Metrics:       metrics,
	})
	return &harness{
		svc:       svc.(*Service),
		db:        conn,
		clock:     clk,
		mailer:    mailer,
		pdf:       renderer,
		customers: customers,
	}
}

func validRequest() domain.SubmitQuoteRequest {
	return domain.SubmitQuoteRequest{
		Name:          "Jane Doe",
		Email:         "Jane@Example.com ",
		Phone:         "0820000000",
		EventDate:     "2026-04-18",
		EventType:     "wedding",
		Guests:        80,
		Location:      "Stellenbosch",
		PaymentMethod: "eft",
		Items: []domain.LineItemInput{
			{Name: "Chair", Quantity: 2, Price: decimal.NewFromInt(10)},
			{Name: "Table", Quantity: 1, Price: decimal.NewFromInt(5)},
		},
	}
}

// racingRepo runs a hook just before a guarded write, standing in for a
// concurrent admin request that lands between our read and our write.
type racingRepo struct {
	domain.Repository
	beforeCompareAndSet func(from domain.Status)
	beforeSaveDetails   func()
	beforeUpdatePayment func()
	compareAndSetCalls  int
}

func (r *racingRepo) CompareAndSetStatus(ctx context.Context, conn *gorm.DB, id snowflake.ID, from, to domain.Status) (int64, error) {
	r.compareAndSetCalls++
	if r.beforeCompareAndSet != nil {
		r.beforeCompareAndSet(from)
	}
	return r.Repository.CompareAndSetStatus(ctx, conn, id, from, to)
}

func (r *racingRepo) SaveDetails(ctx context.Context, conn *gorm.DB, quote *domain.Quote) error {
	if hook := r.beforeSaveDetails; hook != nil {
		r.beforeSaveDetails = nil
		hook()
	}
	return r.Repository.SaveDetails(ctx, conn, quote)
}

func (r *racingRepo) UpdatePayment(ctx context.Context, conn *gorm.DB, id snowflake.ID, status domain.PaymentStatus, payment *domain.Payment) (int64, error) {
	if hook := r.beforeUpdatePayment; hook != nil {
		r.beforeUpdatePayment = nil
		hook()
	}
	return r.Repository.UpdatePayment(ctx, conn, id, status, payment)
}

func newRacingHarness(t *testing.T) (*harness, *racingRepo) {
	t.Helper()
	racing := &racingRepo{}
	h := newHarness(t, withRepository(func(repo domain.Repository) domain.Repository {
		racing.Repository = repo
		return racing
	}))
	return h, racing
}

func (h *harness) forceStatus(t *testing.T, id snowflake.ID, status domain.Status) {
	t.Helper()
	require.NoError(t, h.db.Model(&domain.Quote{}).Where("id = ?", id).Update("status", status).Error)
}

func (h *harness) bookingsFor(t *testing.T, addr string) int {
	t.Helper()
	resp, err := h.customers.List(context.Background(), customerdomain.ListCustomerRequest{})
	require.NoError(t, err)
	for _, c := range resp.Customers {
		if c.Email == addr {
			return c.TotalBookings
		}
	}
	return 0
}

func (h *harness) countQuotes(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&domain.Quote{}).Count(&n).Error)
	return n
}

func TestSubmitDerivesTotalsAndNormalizes(t *testing.T) {
	h := newHarness(t)

	req := validRequest()
	req.EventType = "Business"
	req.Notes = strings.Repeat("é", 1200)
	req.Items = append(req.Items, domain.LineItemInput{Name: "Tent", Quantity: 0, Price: decimal.NewFromInt(-3)})

	q, err := h.svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.NotZero(t, q.ID)
	assert.True(t, domain.IsValidReference(q.Reference), q.Reference)
	assert.True(t, strings.HasPrefix(q.Reference, "QTE-20260301-"))
	assert.Equal(t, "jane@example.com", q.Email)
	assert.Equal(t, domain.EventTypeCorporate, q.EventType)
	assert.Equal(t, domain.StatusPending, q.Status)
	assert.Equal(t, domain.PaymentStatusPending, q.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodEFT, q.PaymentMethod)
	assert.Equal(t, 1000, len([]rune(q.Notes)))
	assert.Equal(t, "25.00", q.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, q.Items[2].Quantity)
	assert.True(t, q.Items[2].Price.IsZero())

	stored, err := h.svc.Get(context.Background(), q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "25.00", stored.TotalAmount.StringFixed(2))
	assert.Equal(t, "20.00", stored.Items[0].Total.StringFixed(2))
	assert.Equal(t, q.Reference, stored.Reference)
}

func TestSubmitUnknownEventTypeBecomesOther(t *testing.T) {
	h := newHarness(t)

	req := validRequest()
	req.EventType = "xyz"
	req.EventTypeOther = "Graduation"
	q, err := h.svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeOther, q.EventType)
	assert.Equal(t, "Graduation", q.EventTypeOther)

	req.EventType = "Birthday"
	q, err = h.svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypePrivate, q.EventType)
	assert.Empty(t, q.EventTypeOther)
}

func TestSubmitRejectsEmptyItems(t *testing.T) {
	h := newHarness(t)

	req := validRequest()
	req.Items = nil
	_, err := h.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEmptyItems)
	assert.Equal(t, int64(0), h.countQuotes(t))
	assert.Empty(t, h.mailer.sent)
}

func TestSubmitRejectsNonFutureEventDate(t *testing.T) {
	h := newHarness(t)

	req := validRequest()
	req.EventDate = "2026-03-01"
	_, err := h.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEventDateNotFuture)
	assert.Equal(t, int64(0), h.countQuotes(t))
}

func TestSubmitRejectsUnknownPaymentMethod(t *testing.T) {
	h := newHarness(t)

	req := validRequest()
	req.PaymentMethod = "card"
	_, err := h.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	req.PaymentMethod = ""
	q, err := h.svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodCash, q.PaymentMethod)
}

func TestSubmitSurvivesGatewayAndRendererFailures(t *testing.T) {
	h := newHarness(t)
	h.mailer.err = errors.New("smtp down")
	h.pdf.err = errors.New("font missing")

	q, err := h.svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotZero(t, q.ID)
	assert.Equal(t, int64(1), h.countQuotes(t))

	// customer and admin were both still attempted, without attachment
	require.Len(t, h.mailer.sent, 2)
	assert.Empty(t, h.mailer.sent[0].Attachments)
}

func TestSubmitNotifiesCustomerWithDocumentAndAdmins(t *testing.T) {
	h := newHarness(t)

	q, err := h.svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	customerMail := h.mailer.messagesTo("jane@example.com")
	require.Len(t, customerMail, 1)
	require.Len(t, customerMail[0].Attachments, 1)
	assert.Equal(t, q.Reference+".pdf", customerMail[0].Attachments[0].Filename)
	assert.Contains(t, customerMail[0].Text, q.Reference)
	assert.Contains(t, customerMail[0].Text, "ZAR 25.00")

	adminMail := h.mailer.messagesTo("ops@rentals.test")
	require.Len(t, adminMail, 1)
	assert.Equal(t, "jane@example.com", adminMail[0].ReplyTo)
	assert.Contains(t, adminMail[0].Subject, q.Reference)
}

func TestSubmitSkipsAdminsWhenDisabled(t *testing.T) {
	h := newHarness(t, withNotifications(config.NotificationConfig{
		NotifyAdmins:    false,
		AdminRecipients: []string{"ops@rentals.test"},
		Currency:        "ZAR",
	}))

	_, err := h.svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Len(t, h.mailer.sent, 1)
	assert.Empty(t, h.mailer.messagesTo("ops@rentals.test"))
}

func TestSubmitSurfacesReferenceCollision(t *testing.T) {
	h := newHarness(t, withReferenceGenerator(func(time.Time) string { return "QTE-20260301-AAAAA" }))

	_, err := h.svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = h.svc.Submit(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.Equal(t, int64(1), h.countQuotes(t))
}

func TestSubmitReferencesAreUnique(t *testing.T) {
	h := newHarness(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		q, err := h.svc.Submit(context.Background(), validRequest())
		require.NoError(t, err)
		assert.False(t, seen[q.Reference], q.Reference)
		seen[q.Reference] = true
	}
}

func TestUpdateStatusFiresApprovalOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	before := len(h.mailer.messagesTo("jane@example.com"))

	updated, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "Confirmed"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	_, err = h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, before+1, len(h.mailer.messagesTo("jane@example.com")))
	resp, err := h.customers.List(ctx, customerdomain.ListCustomerRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, 1, resp.Customers[0].TotalBookings)
	assert.Equal(t, "25.00", resp.Customers[0].TotalSpent.StringFixed(2))
	assert.Equal(t, "Created from quote "+q.Reference+" ("+q.ID.String()+")", resp.Customers[0].Notes)
}

func TestRepeatedApprovalCountsAsOneBooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	_, err = h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "approved"})
	require.NoError(t, err)
	_, err = h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)

	assert.Equal(t, 1, h.bookingsFor(t, "jane@example.com"))
}

func TestApprovedThenConfirmedFiresApprovalAgain(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	before := len(h.mailer.messagesTo("jane@example.com"))

	_, err = h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "approved"})
	require.NoError(t, err)
	confirmed, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	// approved and confirmed are distinct statuses, so each entry fires once
	assert.Equal(t, before+2, len(h.mailer.messagesTo("jane@example.com")))
	assert.Equal(t, 2, h.bookingsFor(t, "jane@example.com"))
}

func TestUpdateStatusRetriesAgainstStoredStatus(t *testing.T) {
	h, racing := newRacingHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	racing.beforeCompareAndSet = func(domain.Status) {
		racing.beforeCompareAndSet = nil
		h.forceStatus(t, q.ID, domain.StatusRejected)
	}
	updated, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, 2, racing.compareAndSetCalls)
	assert.Equal(t, 1, h.bookingsFor(t, "jane@example.com"))

	stored, err := h.svc.Get(ctx, q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestUpdateStatusSettlesWhenRacerWritesSameStatus(t *testing.T) {
	h, racing := newRacingHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	// the other request confirms first and runs the approval itself
	racing.beforeCompareAndSet = func(domain.Status) {
		racing.beforeCompareAndSet = nil
		_, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
		require.NoError(t, err)
	}
	updated, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, 1, h.bookingsFor(t, "jane@example.com"))
}

func TestUpdateStatusGivesUpUnderContinuousContention(t *testing.T) {
	h, racing := newRacingHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	racing.beforeCompareAndSet = func(from domain.Status) {
		next := domain.StatusRejected
		if from == domain.StatusRejected {
			next = domain.StatusCompleted
		}
		h.forceStatus(t, q.ID, next)
	}
	_, err = h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "approved"})

	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Equal(t, maxTransitionAttempts, racing.compareAndSetCalls)
	assert.Equal(t, 0, h.bookingsFor(t, "jane@example.com"))
}

func TestUpdateFieldsStatusRacingUpdateStatusBooksOnce(t *testing.T) {
	h, racing := newRacingHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	racing.beforeSaveDetails = func() {
		_, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
		require.NoError(t, err)
	}
	location := "Franschhoek"
	status := "confirmed"
	updated, err := h.svc.UpdateFields(ctx, q.ID.String(), domain.UpdateQuoteRequest{Location: &location, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, "Franschhoek", updated.Location)
	assert.Equal(t, 1, h.bookingsFor(t, "jane@example.com"))
}

func TestUpdateFieldsLeavesStatusAlone(t *testing.T) {
	h, racing := newRacingHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	racing.beforeSaveDetails = func() { h.forceStatus(t, q.ID, domain.StatusApproved) }
	notes := "Deliver before noon"
	updated, err := h.svc.UpdateFields(ctx, q.ID.String(), domain.UpdateQuoteRequest{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.Equal(t, "Deliver before noon", updated.Notes)
	assert.Equal(t, 0, racing.compareAndSetCalls)
}

func TestUpdatePaymentStatusKeepsConcurrentConfirmation(t *testing.T) {
	h, racing := newRacingHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	racing.beforeUpdatePayment = func() {
		_, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
		require.NoError(t, err)
	}
	paid, err := h.svc.UpdatePaymentStatus(ctx, q.ID.String(), domain.UpdatePaymentStatusRequest{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, paid.Status)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)

	_, err = h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, 1, h.bookingsFor(t, "jane@example.com"))
}

func TestApprovalDedupsCustomerAcrossQuotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.Email = "JANE@example.com"
	second.Items = []domain.LineItemInput{{Name: "Marquee", Quantity: 1, Price: decimal.RequireFromString("100.50")}}
	q2, err := h.svc.Submit(ctx, second)
	require.NoError(t, err)

	_, err = h.svc.UpdateStatus(ctx, first.ID.String(), domain.UpdateStatusRequest{Status: "approved"})
	require.NoError(t, err)
	_, err = h.svc.UpdateStatus(ctx, q2.ID.String(), domain.UpdateStatusRequest{Status: "approved"})
	require.NoError(t, err)

	resp, err := h.customers.List(ctx, customerdomain.ListCustomerRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, 2, resp.Customers[0].TotalBookings)
	assert.Equal(t, "125.50", resp.Customers[0].TotalSpent.StringFixed(2))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	_, err = h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	stored, err := h.svc.Get(ctx, q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)

	_, err = h.svc.UpdateStatus(ctx, "123456789", domain.UpdateStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprovalSideEffectFailuresAreNonFatal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	h.mailer.err = errors.New("smtp down")
	h.pdf.err = errors.New("render failed")
	updated, err := h.svc.UpdateStatus(ctx, q.ID.String(), domain.UpdateStatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)

	resp, err := h.customers.List(ctx, customerdomain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 1)
}

func TestUpdateFieldsRecomputesTotalsAndDetectsTransition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	items := []domain.LineItemInput{{Name: "Stage", Quantity: 3, Price: decimal.RequireFromString("33.34")}}
	location := "Cape Town"
	status := "approved"
	updated, err := h.svc.UpdateFields(ctx, q.ID.String(), domain.UpdateQuoteRequest{
		Items:    &items,
		Location: &location,
		Status:   &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "100.02", updated.TotalAmount.StringFixed(2))
	assert.Equal(t, "Cape Town", updated.Location)
	assert.Equal(t, q.Reference, updated.Reference)
	assert.Equal(t, "Jane Doe", updated.Name)

	resp, err := h.customers.List(ctx, customerdomain.ListCustomerRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "100.02", resp.Customers[0].TotalSpent.StringFixed(2))

	// same status again through the general path is not a new transition
	_, err = h.svc.UpdateFields(ctx, q.ID.String(), domain.UpdateQuoteRequest{Status: &status})
	require.NoError(t, err)
	resp, err = h.customers.List(ctx, customerdomain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Customers[0].TotalBookings)

	empty := []domain.LineItemInput{}
	_, err = h.svc.UpdateFields(ctx, q.ID.String(), domain.UpdateQuoteRequest{Items: &empty})
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	bad := "lost"
	_, err = h.svc.UpdateFields(ctx, q.ID.String(), domain.UpdateQuoteRequest{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdatePaymentStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	sentBefore := len(h.mailer.sent)

	_, err = h.svc.UpdatePaymentStatus(ctx, q.ID.String(), domain.UpdatePaymentStatusRequest{PaymentStatus: "refunded"})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)

	paid, err := h.svc.UpdatePaymentStatus(ctx, q.ID.String(), domain.UpdatePaymentStatusRequest{PaymentStatus: "PAID", TransactionID: "tx-9"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.Payment)
	assert.Equal(t, "25.00", paid.Payment.Amount.StringFixed(2))
	assert.Equal(t, "ZAR", paid.Payment.Currency)
	assert.Equal(t, "tx-9", paid.Payment.TransactionID)
	assert.Equal(t, q.Reference, paid.Payment.Reference)

	stored, err := h.svc.Get(ctx, q.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored.Payment)
	assert.Equal(t, domain.PaymentStatusPaid, stored.Payment.Status)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, sentBefore, len(h.mailer.sent))
}

func TestDeleteGetAndReference(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	byRef, err := h.svc.GetByReference(ctx, strings.ToLower(q.Reference))
	require.NoError(t, err)
	assert.Equal(t, q.ID, byRef.ID)

	_, err = h.svc.GetByReference(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = h.svc.Get(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	require.NoError(t, h.svc.Delete(ctx, q.ID.String()))
	assert.ErrorIs(t, h.svc.Delete(ctx, q.ID.String()), domain.ErrNotFound)
	_, err = h.svc.Get(ctx, q.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFiltersSortsAndPages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cheap := validRequest()
	cheap.Name = "Alpha"
	cheap.Email = "alpha@example.com"
	cheap.EventDate = "2026-05-01"
	_, err := h.svc.Submit(ctx, cheap)
	require.NoError(t, err)
	h.clock.Advance(time.Minute)

	pricey := validRequest()
	pricey.Name = "Beta"
	pricey.Email = "beta@example.com"
	pricey.EventType = "concert"
	pricey.EventDate = "2026-06-01"
	pricey.Items = []domain.LineItemInput{{Name: "Stage", Quantity: 1, Price: decimal.NewFromInt(900)}}
	beta, err := h.svc.Submit(ctx, pricey)
	require.NoError(t, err)
	h.clock.Advance(time.Minute)

	third := validRequest()
	third.Name = "Gamma"
	third.Email = "gamma@example.com"
	third.EventDate = "2026-07-01"
	_, err = h.svc.Submit(ctx, third)
	require.NoError(t, err)

	all, err := h.svc.List(ctx, domain.ListQuoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, pagination.DefaultPageSize, all.PageSize)
	assert.Equal(t, "Gamma", all.Quotes[0].Name)

	asc := false
	byTotal, err := h.svc.List(ctx, domain.ListQuoteRequest{SortBy: "total_amount", SortDesc: &asc})
	require.NoError(t, err)
	assert.Equal(t, "Beta", byTotal.Quotes[2].Name)

	festivals, err := h.svc.List(ctx, domain.ListQuoteRequest{EventType: "Festival"})
	require.NoError(t, err)
	require.Len(t, festivals.Quotes, 1)
	assert.Equal(t, beta.ID, festivals.Quotes[0].ID)

	search, err := h.svc.List(ctx, domain.ListQuoteRequest{Search: beta.Reference[len(beta.Reference)-5:]})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, search.Total, int64(1))

	ranged, err := h.svc.List(ctx, domain.ListQuoteRequest{EventDateFrom: "2026-05-15", EventDateTo: "2026-06-15"})
	require.NoError(t, err)
	require.Len(t, ranged.Quotes, 1)
	assert.Equal(t, "Beta", ranged.Quotes[0].Name)

	paged, err := h.svc.List(ctx, domain.ListQuoteRequest{Pagination: pagination.Pagination{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Len(t, paged.Quotes, 1)
	assert.False(t, paged.HasMore)

	_, err = h.svc.List(ctx, domain.ListQuoteRequest{Status: "weird"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRenderDocument(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	doc, err := h.svc.RenderDocument(ctx, q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, []byte("%PDF-"+q.Reference), doc.Content)

	h.pdf.err = errors.New("broken")
	_, err = h.svc.RenderDocument(ctx, q.ID.String())
	assert.Error(t, err)
}
