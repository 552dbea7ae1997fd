package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldesk/internal/quote/domain"
)

const maxNotesLength = 1000

var eventDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseEventDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, domain.ErrInvalidEventDate
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.ErrInvalidEventDate
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func requiredText(raw string, err error) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", err
	}
	return value, nil
}

func truncateNotes(notes string) string {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) <= maxNotesLength {
		return notes
	}
	runes := []rune(notes)
	return string(runes[:maxNotesLength])
}

func normalizeServices(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeGuests(guests int) int {
	if guests < 1 {
		return 1
	}
	return guests
}

// normalizeItems coerces quantity to >= 1 and price to >= 0. Only an empty
// list or a nameless line is rejected.
func normalizeItems(in []domain.LineItemInput) ([]domain.LineItem, error) {
	if len(in) == 0 {
		return nil, domain.ErrEmptyItems
	}
	items := make([]domain.LineItem, 0, len(in))
	for _, raw := range in {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, domain.ErrInvalidItem
		}
		item := domain.LineItem{
			Name:     name,
			Quantity: raw.Quantity,
			Price:    raw.Price,
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.Price.IsNegative() {
			item.Price = decimal.Zero
		}
		items = append(items, item)
	}
	return items, nil
}

func eventTypeLabel(eventType domain.EventType, other string) string {
	if eventType != domain.EventTypeOther {
		return ""
	}
	return strings.TrimSpace(other)
}

// buildQuote turns a submission into an unsaved quote.
func buildQuote(req domain.SubmitQuoteRequest) (domain.Quote, error) {
	var (
		q   domain.Quote
		err error
	)
	if q.Name, err = requiredText(req.Name, domain.ErrInvalidName); err != nil {
		return q, err
	}
	if q.Email, err = normalizeEmail(req.Email); err != nil {
		return q, err
	}
	if q.Phone, err = requiredText(req.Phone, domain.ErrInvalidPhone); err != nil {
		return q, err
	}
	if q.EventDate, err = parseEventDate(req.EventDate); err != nil {
		return q, err
	}
	if q.Items, err = normalizeItems(req.Items); err != nil {
		return q, err
	}
	if q.PaymentMethod, err = domain.ParsePaymentMethod(req.PaymentMethod); err != nil {
		return q, err
	}

	q.Company = strings.TrimSpace(req.Company)
	q.EventType = domain.NormalizeEventType(req.EventType)
	q.EventTypeOther = eventTypeLabel(q.EventType, req.EventTypeOther)
	q.Services = normalizeServices(req.Services)
	q.Guests = normalizeGuests(req.Guests)
	q.Location = strings.TrimSpace(req.Location)
	q.Notes = truncateNotes(req.Notes)
	q.RecomputeTotals()
	return q, nil
}

// applyUpdate mutates q with the allow-listed fields present in req.
func applyUpdate(q *domain.Quote, req domain.UpdateQuoteRequest) error {
	var err error
	if req.Name != nil {
		if q.Name, err = requiredText(*req.Name, domain.ErrInvalidName); err != nil {
			return err
		}
	}
	if req.Company != nil {
		q.Company = strings.TrimSpace(*req.Company)
	}
	if req.Email != nil {
		if q.Email, err = normalizeEmail(*req.Email); err != nil {
			return err
		}
	}
	if req.Phone != nil {
		if q.Phone, err = requiredText(*req.Phone, domain.ErrInvalidPhone); err != nil {
			return err
		}
	}
	if req.EventDate != nil {
		if q.EventDate, err = parseEventDate(*req.EventDate); err != nil {
			return err
		}
	}
	if req.EventType != nil {
		q.EventType = domain.NormalizeEventType(*req.EventType)
	}
	if req.EventTypeOther != nil {
		q.EventTypeOther = strings.TrimSpace(*req.EventTypeOther)
	}
	q.EventTypeOther = eventTypeLabel(q.EventType, q.EventTypeOther)
	if req.Services != nil {
		q.Services = normalizeServices(*req.Services)
	}
	if req.Guests != nil {
		q.Guests = normalizeGuests(*req.Guests)
	}
	if req.Location != nil {
		q.Location = strings.TrimSpace(*req.Location)
	}
	if req.Notes != nil {
		q.Notes = truncateNotes(*req.Notes)
	}
	if req.Items != nil {
		if q.Items, err = normalizeItems(*req.Items); err != nil {
			return err
		}
	}
	if req.PaymentMethod != nil {
		if q.PaymentMethod, err = domain.ParsePaymentMethod(*req.PaymentMethod); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if q.Status, err = domain.ParseStatus(*req.Status); err != nil {
			return err
		}
	}
	q.RecomputeTotals()
	return nil
}
