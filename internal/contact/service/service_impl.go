package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/internal/contact/domain"
	obslogger "github.com/smallbiznis/rentaldesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/smallbiznis/rentaldesk/internal/providers/email"
	"github.com/smallbiznis/rentaldesk/pkg/db/option"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"github.com/smallbiznis/rentaldesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxMessageLength = 5000
	mailContactAdmin = "contact_new_admin"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Mailer        email.Provider
	Notifications *config.NotificationConfigHolder
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	messages      repository.Repository[domain.Message]
	mailer        email.Provider
	notifications *config.NotificationConfigHolder
	metrics       *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("contact.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		messages:      repository.ProvideStore[domain.Message](p.DB),
		mailer:        p.Mailer,
		notifications: p.Notifications,
		metrics:       p.Metrics,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.Message, error) {
	msg, err := s.build(req)
	if err != nil {
		return domain.Message{}, err
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return domain.Message{}, err
	}

	log := obslogger.WithContext(ctx, s.log)
	if err := s.notifyAdmins(ctx, msg); err != nil {
		log.Warn("contact notification failed",
			zap.String("contact_id", msg.ID.String()),
			zap.Error(err),
		)
	}
	log.Info("contact message received",
		zap.String("contact_id", msg.ID.String()),
		zap.String("source", msg.Source),
	)
	return msg, nil
}

func (s *Service) build(req domain.SubmitRequest) (domain.Message, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Message{}, domain.ErrInvalidName
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if addr == "" || !strings.Contains(addr, "@") {
		return domain.Message{}, domain.ErrInvalidEmail
	}
	body := strings.TrimSpace(req.Message)
	if body == "" || utf8.RuneCountInString(body) > maxMessageLength {
		return domain.Message{}, domain.ErrInvalidMessage
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = domain.DefaultSource
	}

	metadata := datatypes.JSONMap{}
	for key, value := range map[string]string{
		"ip":         req.IP,
		"user_agent": req.UserAgent,
		"referer":    req.Referer,
	} {
		if value = strings.TrimSpace(value); value != "" {
			metadata[key] = value
		}
	}

	now := s.clock.Now().UTC()
	return domain.Message{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     addr,
		Phone:     strings.TrimSpace(req.Phone),
		Message:   body,
		Status:    domain.StatusNew,
		Source:    source,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) notifyAdmins(ctx context.Context, msg domain.Message) error {
	cfg := s.notifications.Get()
	if !cfg.NotifyAdmins || len(cfg.AdminRecipients) == 0 {
		return nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "New contact message from %s <%s>\n", msg.Name, msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&text, "Phone: %s\n", msg.Phone)
	}
	fmt.Fprintf(&text, "Source: %s\n\n%s\n", msg.Source, msg.Message)

	_, err := s.mailer.Send(ctx, email.Message{
		To:      cfg.AdminRecipients,
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("New contact message from %s", msg.Name),
		Text:    text.String(),
	})
	s.metrics.ObserveNotification(mailContactAdmin, s.mailer.Name(), err)
	return err
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := &domain.Message{}
	if strings.TrimSpace(req.Status) != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.Status = status
	}

	page := req.Pagination.Normalize()
	search := option.WithSearch(req.Search, "name", "email", "message")
	total, err := s.messages.Count(ctx, filter, search)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, err := s.messages.Find(ctx, filter,
		search,
		option.WithSortBy(option.QuerySortBy{Desc: true, Default: "created_at"}),
		option.ApplyPagination(page),
	)
	if err != nil {
		return domain.ListResponse{}, err
	}

	messages := make([]domain.Message, 0, len(items))
	for _, item := range items {
		messages = append(messages, *item)
	}
	return domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Messages: messages,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Message, error) {
	messageID, err := parseID(id)
	if err != nil {
		return domain.Message{}, err
	}
	msg, err := s.messages.FindOne(ctx, &domain.Message{ID: messageID})
	if err != nil {
		return domain.Message{}, err
	}
	if msg == nil {
		return domain.Message{}, domain.ErrNotFound
	}
	return *msg, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (domain.Message, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Message{}, err
	}
	messageID, err := parseID(id)
	if err != nil {
		return domain.Message{}, err
	}
	affected, err := s.messages.Update(ctx, messageID, map[string]any{
		"status":     next,
		"updated_at": s.clock.Now().UTC(),
	})
	if err != nil {
		return domain.Message{}, err
	}
	if affected == 0 {
		return domain.Message{}, domain.ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	messageID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.messages.Delete(ctx, messageID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
