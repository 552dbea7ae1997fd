package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

var (
	labelStyle = props.Text{Size: 9, Style: fontstyle.Bold}
	valueStyle = props.Text{Size: 9}
	rightStyle = props.Text{Size: 9, Align: align.Right}
)

func (p *MarotoProvider) RenderQuote(ctx context.Context, doc QuoteDocument) ([]byte, error) {
	if strings.TrimSpace(doc.Reference) == "" {
		return nil, ErrInvalidDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(8, doc.BusinessName, props.Text{Size: 18, Style: fontstyle.Bold}),
		text.NewCol(4, "Quotation", props.Text{Size: 18, Align: align.Right}),
	)
	m.AddRow(12,
		col.New(8).Add(
			text.New(doc.BusinessEmail, valueStyle),
			text.New(doc.BusinessPhone, props.Text{Size: 9, Top: 4}),
		),
		col.New(4).Add(
			text.New("Reference: "+doc.Reference, rightStyle),
			text.New("Issued: "+doc.IssuedOn, props.Text{Size: 9, Top: 4, Align: align.Right}),
		),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(28,
		col.New(6).Add(
			text.New("Customer", labelStyle),
			text.New(doc.CustomerName, props.Text{Size: 9, Top: 5}),
			text.New(doc.CustomerEmail, props.Text{Size: 9, Top: 9}),
			text.New(doc.CustomerPhone, props.Text{Size: 9, Top: 13}),
		),
		col.New(6).Add(
			text.New("Event", labelStyle),
			text.New(fmt.Sprintf("%s on %s", doc.EventType, doc.EventDate), props.Text{Size: 9, Top: 5}),
			text.New(doc.EventLocation, props.Text{Size: 9, Top: 9}),
			text.New(guestLine(doc.GuestCount), props.Text{Size: 9, Top: 13}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Item", labelStyle),
		text.NewCol(2, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))
	m.AddRows(itemRows(doc.Items)...)
	m.AddRow(2, line.NewCol(12))

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", labelStyle),
		text.NewCol(2, doc.Total, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(12, "Payment method: "+doc.PaymentMethod, valueStyle),
	)
	if notes := strings.TrimSpace(doc.Notes); notes != "" {
		m.AddRow(6, text.NewCol(12, "Notes", labelStyle))
		m.AddAutoRow(text.NewCol(12, notes, valueStyle))
	}
	m.AddRow(12,
		text.NewCol(12, "This quotation is subject to availability until confirmed.", props.Text{Size: 8, Style: fontstyle.Italic, Top: 4}),
	)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render quote %s: %w", doc.Reference, err)
	}
	return out.GetBytes(), nil
}

func itemRows(items []QuoteLine) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, row.New(7).Add(
			text.NewCol(6, item.Description, valueStyle),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), rightStyle),
			text.NewCol(2, item.UnitPrice, rightStyle),
			text.NewCol(2, item.Amount, rightStyle),
		))
	}
	return rows
}

func guestLine(guests string) string {
	if strings.TrimSpace(guests) == "" {
		return ""
	}
	return guests + " guests"
}
