package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/internal/contact/domain"
	"github.com/smallbiznis/rentaldesk/internal/providers/email"
	"github.com/smallbiznis/rentaldesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMailer struct {
	sent []email.Message
	err  error
}

func (r *recordingMailer) Name() string { return "recording" }

func (r *recordingMailer) Send(_ context.Context, msg email.Message) (email.SendResult, error) {
	r.sent = append(r.sent, msg)
	return email.SendResult{Provider: "recording"}, r.err
}

func newTestService(t *testing.T, notify config.NotificationConfig) (domain.Service, *recordingMailer, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Message{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	mailer := &recordingMailer{}

	svc := New(Params{
		DB:            conn,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clk,
		Mailer:        mailer,
		Notifications: config.NewStaticNotificationConfigHolder(notify),
	})
	return svc, mailer, clk
}

func adminNotifications() config.NotificationConfig {
	return config.NotificationConfig{NotifyAdmins: true, AdminRecipients: []string{"ops@rentals.test"}}
}

func TestSubmitStoresMessageWithDefaults(t *testing.T) {
	svc, mailer, _ := newTestService(t, adminNotifications())

	msg, err := svc.Submit(context.Background(), domain.SubmitRequest{
		Name:      " Sam ",
		Email:     "Sam@Example.com",
		Message:   "Do you rent marquees?",
		IP:        "10.0.0.1",
		UserAgent: "curl/8",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", msg.Name)
	assert.Equal(t, "sam@example.com", msg.Email)
	assert.Equal(t, domain.StatusNew, msg.Status)
	assert.Equal(t, domain.DefaultSource, msg.Source)
	assert.Equal(t, "10.0.0.1", msg.Metadata["ip"])
	_, hasReferer := msg.Metadata["referer"]
	assert.False(t, hasReferer)

	stored, err := svc.Get(context.Background(), msg.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Do you rent marquees?", stored.Message)
	assert.Equal(t, "curl/8", stored.Metadata["user_agent"])

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "sam@example.com", mailer.sent[0].ReplyTo)
}

func TestSubmitValidation(t *testing.T) {
	svc, mailer, _ := newTestService(t, adminNotifications())
	ctx := context.Background()

	_, err := svc.Submit(ctx, domain.SubmitRequest{Email: "a@b.c", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.Submit(ctx, domain.SubmitRequest{Name: "A", Email: "nope", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	_, err = svc.Submit(ctx, domain.SubmitRequest{Name: "A", Email: "a@b.c", Message: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)
	_, err = svc.Submit(ctx, domain.SubmitRequest{Name: "A", Email: "a@b.c", Message: strings.Repeat("x", maxMessageLength+1)})
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)

	_, err = svc.Submit(ctx, domain.SubmitRequest{Name: "A", Email: "a@b.c", Message: strings.Repeat("ü", maxMessageLength)})
	assert.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
}

func TestSubmitIgnoresNotificationFailure(t *testing.T) {
	svc, mailer, _ := newTestService(t, adminNotifications())
	mailer.err = errors.New("relay refused")

	msg, err := svc.Submit(context.Background(), domain.SubmitRequest{Name: "A", Email: "a@b.c", Message: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
}

func TestSubmitWithoutAdminsSendsNothing(t *testing.T) {
	svc, mailer, _ := newTestService(t, config.NotificationConfig{})

	_, err := svc.Submit(context.Background(), domain.SubmitRequest{Name: "A", Email: "a@b.c", Message: "hello"})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestStatusListAndDelete(t *testing.T) {
	svc, _, clk := newTestService(t, config.NotificationConfig{})
	ctx := context.Background()

	first, err := svc.Submit(ctx, domain.SubmitRequest{Name: "Ann", Email: "ann@x.io", Message: "tables"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	second, err := svc.Submit(ctx, domain.SubmitRequest{Name: "Bob", Email: "bob@x.io", Message: "chairs", Source: "instagram"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, first.ID.String(), "Replied")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReplied, updated.Status)

	_, err = svc.UpdateStatus(ctx, first.ID.String(), "spam")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = svc.UpdateStatus(ctx, "42", "read")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, second.ID, all.Messages[0].ID)

	replied, err := svc.List(ctx, domain.ListRequest{Status: "replied"})
	require.NoError(t, err)
	require.Len(t, replied.Messages, 1)
	assert.Equal(t, first.ID, replied.Messages[0].ID)

	found, err := svc.List(ctx, domain.ListRequest{Search: "CHAIR"})
	require.NoError(t, err)
	require.Len(t, found.Messages, 1)
	assert.Equal(t, "instagram", found.Messages[0].Source)

	require.NoError(t, svc.Delete(ctx, first.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID.String()), domain.ErrNotFound)
	_, err = svc.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
