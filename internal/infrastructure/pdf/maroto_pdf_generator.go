// Package pdf renders the printable invoice document.
//
// A4 layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: business name        │  INVOICE number + dates     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BILL TO: client name + contact details                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: Qty | Description | Unit Price | Disc | Tax | Total │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALS: Subtotal / Discounts / Tax / Total / Balance Due   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: payment terms + payment instructions               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/application/billing"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 16, Green: 86, Blue: 62}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ billing.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implements billing.PDFGenerator using Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator builds the generator.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Generate renders the invoice and returns the PDF bytes.
func (g *MarotoPDFGenerator) Generate(invoice *entity.Invoice, business *entity.Business) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+invoice.InvoiceNumber, true).
		WithAuthor(business.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, business))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(billToRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range lineItemRows(invoice) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	if footer := footerRows(invoice); len(footer) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		for _, r := range footer {
			m.AddRows(r)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: business name (left), invoice number and dates (right).
func headerRow(invoice *entity.Invoice, business *entity.Business) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(business.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(business.Address, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
			text.New(contactLine(business.Phone, business.Email), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 8,
			}),
			text.New(fmt.Sprintf("Issued: %s   Due: %s",
				invoice.IssueDate.Format("Jan 2, 2006"),
				invoice.DueDate.Format("Jan 2, 2006"),
			), props.Text{Size: 8, Align: align.Right, Top: 15, Color: colorGray}),
		),
	)
}

// billToRow: client snapshot captured on the invoice.
func billToRow(invoice *entity.Invoice) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.ClientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(contactLine(invoice.ClientPhone, invoice.ClientEmail, invoice.ClientAddress), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Description", 5, align.Left),
		h("Unit Price", 2, align.Right),
		h("Disc.", 1, align.Right),
		h("Tax%", 1, align.Center),
		h("Amount", 2, align.Right),
	)
}

// lineItemRows: one row per line item, rounded amounts.
func lineItemRows(invoice *entity.Invoice) []core.Row {
	result := make([]core.Row, 0, len(invoice.LineItems))
	for _, li := range invoice.LineItems {
		qty := li.Quantity.String()
		if li.Unit != "" {
			qty += " " + li.Unit
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(qty,
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(li.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money(li.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(money(li.DiscountAmount()),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(li.TaxRate.String()+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(money(li.FinalTotal()),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: right-aligned roll-up ending in the outstanding balance.
func totalsRow(invoice *entity.Invoice) core.Row {
	summary := invoice.Summary()

	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	totalDiscount := summary.LineDiscountTotal.Add(summary.OverallDiscount)
	labels := []core.Component{label("Subtotal:")}
	values := []core.Component{value(money(summary.Subtotal))}
	if totalDiscount.IsPositive() {
		labels = append(labels, label("Discounts:"))
		values = append(values, value("-"+money(totalDiscount)))
	}
	labels = append(labels, label("Tax:"), label("Total:"))
	values = append(values, value(money(summary.TaxAmount)), value(money(summary.TotalAmount)))
	if invoice.TotalPayments().IsPositive() {
		labels = append(labels, label("Paid:"))
		values = append(values, value("-"+money(invoice.TotalPayments().Round(2))))
	}
	labels = append(labels, grandLabel("BALANCE DUE:"))
	values = append(values, grandValue(money(invoice.BalanceDue().Round(2))))

	return row.New(34).Add(
		col.New(4),
		col.New(4).Add(labels...),
		col.New(4).Add(values...),
	)
}

// footerRows: payment terms and instructions, when set.
func footerRows(invoice *entity.Invoice) []core.Row {
	var rows []core.Row

	terms := invoice.Terms
	termsLine := fmt.Sprintf("Payment due within %d days of the issue date.", terms.NetDays)
	if terms.DiscountPercentage.IsPositive() && terms.DiscountDays > 0 {
		termsLine += fmt.Sprintf(" %s%% discount if paid within %d days.",
			terms.DiscountPercentage.String(), terms.DiscountDays)
	}
	if terms.LateFeePercentage.IsPositive() {
		termsLine += fmt.Sprintf(" A %s%% late fee applies after a %d day grace period.",
			terms.LateFeePercentage.String(), terms.LateFeeGraceDays)
	}
	rows = append(rows,
		row.New(5).Add(col.New(12).Add(
			text.New("PAYMENT TERMS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New(termsLine, props.Text{Size: 8, Top: 1, Color: colorGray}),
		)),
	)

	if terms.PaymentInstructions != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New(terms.PaymentInstructions, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	return rows
}

// contactLine joins the non-empty parts with separators.
func contactLine(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "   |   "
		}
		out += p
	}
	return out
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
