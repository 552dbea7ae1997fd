package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/internal/providers/email"
	"github.com/smallbiznis/rentaldesk/internal/quote/domain"
	"go.uber.org/zap"
)

const (
	mailQuoteReceived      = "quote_received"
	mailQuoteNewAdmin      = "quote_new_admin"
	mailQuoteApproved      = "quote_approved"
	mailQuoteApprovedAdmin = "quote_approved_admin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

type mailItem struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

type mailView struct {
	BusinessName  string
	BusinessEmail string
	BusinessPhone string

	Reference     string
	Status        string
	Name          string
	Company       string
	Email         string
	Phone         string
	EventType     string
	EventDate     string
	Location      string
	Guests        int
	PaymentMethod string
	Notes         string
	Items         []mailItem
	Total         string
	HasDocument   bool
}

func formatMoney(currency string, amount decimal.Decimal) string {
	return currency + " " + amount.StringFixed(2)
}

func eventTypeDisplay(q domain.Quote) string {
	if q.EventType == domain.EventTypeOther && q.EventTypeOther != "" {
		return q.EventTypeOther
	}
	return string(q.EventType)
}

func newMailView(q domain.Quote, cfg config.NotificationConfig, hasDocument bool) mailView {
	items := make([]mailItem, 0, len(q.Items))
	for _, item := range q.Items {
		items = append(items, mailItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    formatMoney(cfg.Currency, item.Price),
			Total:    formatMoney(cfg.Currency, item.Total),
		})
	}
	return mailView{
		BusinessName:  cfg.BusinessName,
		BusinessEmail: cfg.BusinessEmail,
		BusinessPhone: cfg.BusinessPhone,
		Reference:     q.Reference,
		Status:        string(q.Status),
		Name:          q.Name,
		Company:       q.Company,
		Email:         q.Email,
		Phone:         q.Phone,
		EventType:     eventTypeDisplay(q),
		EventDate:     q.EventDate.Format("02 Jan 2006"),
		Location:      q.Location,
		Guests:        q.Guests,
		PaymentMethod: string(q.PaymentMethod),
		Notes:         q.Notes,
		Items:         items,
		Total:         formatMoney(cfg.Currency, q.TotalAmount),
		HasDocument:   hasDocument,
	}
}

func renderMail(kind string, view mailView) (text string, html string, err error) {
	var textBuf, htmlBuf bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&textBuf, kind+".txt.tmpl", view); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", kind, err)
	}
	if err := htmlTemplates.ExecuteTemplate(&htmlBuf, kind+".html.tmpl", view); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", kind, err)
	}
	return textBuf.String(), htmlBuf.String(), nil
}

func subjectFor(kind string, q domain.Quote, businessName string) string {
	switch kind {
	case mailQuoteReceived:
		return fmt.Sprintf("%s: we received your quote request %s", businessName, q.Reference)
	case mailQuoteNewAdmin:
		return fmt.Sprintf("New quote request %s from %s", q.Reference, q.Name)
	case mailQuoteApproved:
		return fmt.Sprintf("%s: your quote %s has been %s", businessName, q.Reference, q.Status)
	case mailQuoteApprovedAdmin:
		return fmt.Sprintf("Quote %s %s", q.Reference, q.Status)
	default:
		return q.Reference
	}
}

// notify composes and sends one notification kind for q.
func (s *Service) notify(ctx context.Context, kind string, q domain.Quote, to []string, doc *domain.Document) error {
	cfg := s.notifications.Get()
	text, html, err := renderMail(kind, newMailView(q, cfg, doc != nil))
	if err != nil {
		return err
	}

	msg := email.Message{
		To:      to,
		Subject: subjectFor(kind, q, cfg.BusinessName),
		Text:    text,
		HTML:    html,
	}
	if kind == mailQuoteNewAdmin {
		msg.ReplyTo = q.Email
	}
	if doc != nil {
		msg.Attachments = []email.Attachment{{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Content:     doc.Content,
		}}
	}

	res, err := s.mailer.Send(ctx, msg)
	s.metrics.ObserveNotification(kind, s.mailer.Name(), err)
	if err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	s.log.Debug("notification sent",
		zap.String("kind", kind),
		zap.String("provider", res.Provider),
		zap.String("message_id", res.MessageID),
	)
	return nil
}

// adminRecipients is empty when admin notifications are switched off.
func (s *Service) adminRecipients() []string {
	cfg := s.notifications.Get()
	if !cfg.NotifyAdmins {
		return nil
	}
	return cfg.AdminRecipients
}
