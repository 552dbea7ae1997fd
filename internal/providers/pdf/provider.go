package pdf

import (
	"context"
	"errors"
)

var ErrInvalidDocument = errors.New("pdf_invalid_document")

// Provider renders printable quote documents.
type Provider interface {
	RenderQuote(ctx context.Context, doc QuoteDocument) ([]byte, error)
}

// QuoteDocument is the preformatted view of a quote. Amounts arrive
// already formatted with currency so the renderer stays locale-agnostic.
type QuoteDocument struct {
	BusinessName  string
	BusinessEmail string
	BusinessPhone string

	Reference string
	IssuedOn  string
	Status    string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	EventType     string
	EventDate     string
	EventLocation string
	GuestCount    string
	PaymentMethod string
	Notes         string

	Items []QuoteLine
	Total string
}

type QuoteLine struct {
	Description string
	Quantity    int
	UnitPrice   string
	Amount      string
}

type NoOpProvider struct{}

func (p *NoOpProvider) RenderQuote(ctx context.Context, doc QuoteDocument) ([]byte, error) {
	return nil, nil
}
