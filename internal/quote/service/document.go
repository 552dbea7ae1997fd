package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/internal/providers/pdf"
	"github.com/smallbiznis/rentaldesk/internal/quote/domain"
)

var errEmptyDocument = errors.New("empty_document")

func documentView(q domain.Quote, cfg config.NotificationConfig) pdf.QuoteDocument {
	lines := make([]pdf.QuoteLine, 0, len(q.Items))
	for _, item := range q.Items {
		lines = append(lines, pdf.QuoteLine{
			Description: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   formatMoney(cfg.Currency, item.Price),
			Amount:      formatMoney(cfg.Currency, item.Total),
		})
	}
	return pdf.QuoteDocument{
		BusinessName:  cfg.BusinessName,
		BusinessEmail: cfg.BusinessEmail,
		BusinessPhone: cfg.BusinessPhone,
		Reference:     q.Reference,
		IssuedOn:      q.CreatedAt.Format("02 Jan 2006"),
		Status:        string(q.Status),
		CustomerName:  q.Name,
		CustomerEmail: q.Email,
		CustomerPhone: q.Phone,
		EventType:     eventTypeDisplay(q),
		EventDate:     q.EventDate.Format("02 Jan 2006"),
		EventLocation: q.Location,
		GuestCount:    strconv.Itoa(q.Guests),
		PaymentMethod: string(q.PaymentMethod),
		Notes:         q.Notes,
		Items:         lines,
		Total:         formatMoney(cfg.Currency, q.TotalAmount),
	}
}

func (s *Service) render(ctx context.Context, q domain.Quote) (*domain.Document, error) {
	content, err := s.pdf.RenderQuote(ctx, documentView(q, s.notifications.Get()))
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errEmptyDocument
	}
	return &domain.Document{
		Filename:    q.Reference + ".pdf",
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}
