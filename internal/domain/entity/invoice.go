package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/domain"
)

// TaxType of the header-level default tax.
type TaxType string

const (
	TaxPercentage TaxType = "percentage"
	TaxFixed      TaxType = "fixed"
)

// Invoice is the aggregate root of the billing engine. Line items and
// payments are loaded and persisted with it; every monetary figure is derived
// from them on demand, never cached on the struct.
//
// Client fields are a snapshot taken at creation time, not a live reference:
// renaming a contact later must not rewrite historical invoices.
type Invoice struct {
	ID            string
	BusinessID    string
	InvoiceNumber string

	Status     InvoiceStatus
	IssueDate  time.Time
	DueDate    time.Time
	SentDate   *time.Time
	ViewedDate *time.Time
	PaidDate   *time.Time

	ContactID     string
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	ClientAddress string

	Currency             string
	TaxRate              decimal.Decimal // header default, inherited by line items created without one
	TaxType              TaxType
	OverallDiscountType  DiscountType
	OverallDiscountValue decimal.Decimal

	LineItems []LineItem
	Payments  []Payment
	Terms     PaymentTerms

	EstimateID string
	ProjectID  string
	JobID      string

	Tags          []string
	CustomFields  map[string]string
	InternalNotes string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Version is compared-and-swapped on every write so concurrent
	// mutations of the same invoice cannot silently overwrite each other.
	Version int64
}

// FinancialSummary is the invoice-level roll-up of line items plus header
// adjustments, rounded to 2 decimals for presentation and persistence.
type FinancialSummary struct {
	Subtotal          decimal.Decimal
	LineDiscountTotal decimal.Decimal
	OverallDiscount   decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalAmount       decimal.Decimal
}

// Summary composes header-level adjustments with line items in one fixed
// order: line discounts first, then the overall discount on the pre-tax
// total, then line taxes added on top. The overall discount never
// retroactively reduces per-line tax, so tax attribution stays stable per
// item.
func (inv *Invoice) Summary() FinancialSummary {
	var subtotal, lineDiscounts, lineTaxes decimal.Decimal
	for _, li := range inv.LineItems {
		subtotal = subtotal.Add(li.LineTotal())
		lineDiscounts = lineDiscounts.Add(li.DiscountAmount())
		lineTaxes = lineTaxes.Add(li.TaxAmount())
	}
	preTax := subtotal.Sub(lineDiscounts)

	var overall decimal.Decimal
	switch inv.OverallDiscountType {
	case DiscountPercentage:
		overall = preTax.Mul(inv.OverallDiscountValue).Div(oneHundred)
	case DiscountFixed:
		overall = decimal.Min(inv.OverallDiscountValue, preTax)
	default:
		overall = decimal.Zero
	}

	total := preTax.Sub(overall).Add(lineTaxes)
	return FinancialSummary{
		Subtotal:          subtotal.Round(2),
		LineDiscountTotal: lineDiscounts.Round(2),
		OverallDiscount:   overall.Round(2),
		TaxAmount:         lineTaxes.Round(2),
		TotalAmount:       total.Round(2),
	}
}

// TotalAmount is the amount the client owes in full.
func (inv *Invoice) TotalAmount() decimal.Decimal {
	return inv.Summary().TotalAmount
}

// TotalPayments sums the effective (refund-adjusted) amounts of all
// completed and partially refunded payments.
func (inv *Invoice) TotalPayments() decimal.Decimal {
	var total decimal.Decimal
	for _, p := range inv.Payments {
		total = total.Add(p.EffectiveAmount())
	}
	return total.Round(2)
}

// BalanceDue is the outstanding amount. A negative result means the ledger
// invariant is broken; callers validate rather than clamp, clamping is for
// display only.
func (inv *Invoice) BalanceDue() decimal.Decimal {
	return inv.TotalAmount().Sub(inv.TotalPayments())
}

// IsSettled reports whether the balance has reached exactly zero.
func (inv *Invoice) IsSettled() bool {
	return inv.BalanceDue().IsZero()
}

// ApplyPayment validates the payment against the ledger, appends it and
// recomputes the payment-driven status. On error the invoice is unchanged.
func (inv *Invoice) ApplyPayment(p Payment, now time.Time) error {
	if inv.Status == StatusCancelled || inv.Status == StatusVoid {
		return domain.Violation(domain.RuleInvalidState, "cannot record a payment on a %s invoice", inv.Status)
	}
	if inv.Status == StatusPaid {
		return domain.Violation(domain.RuleAlreadySettled, "invoice %s is already paid in full", inv.InvoiceNumber)
	}
	if !p.Amount.GreaterThan(decimal.Zero) {
		return domain.Violation(domain.RuleInvalidAmount, "payment amount must be positive")
	}
	if balance := inv.BalanceDue(); p.Amount.GreaterThan(balance) {
		return domain.Violation(domain.RuleExceedsBalance,
			"payment of %s exceeds balance due of %s", p.Amount.StringFixed(2), balance.StringFixed(2))
	}
	if p.PaymentDate.After(now) {
		return domain.Violation(domain.RuleFutureDated, "payment date cannot be in the future")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	p.Status = PaymentStatusCompleted
	inv.Payments = append(inv.Payments, p)
	inv.refreshPaymentStatus(now)
	inv.UpdatedAt = now
	return nil
}

// Validate enforces the structural invariants that must hold after every
// mutation. It does not check state-machine rules; those live on the
// transition methods.
func (inv *Invoice) Validate() error {
	if inv.BusinessID == "" {
		return fmt.Errorf("%w: business id is required", domain.ErrInvalidInput)
	}
	if inv.InvoiceNumber == "" {
		return fmt.Errorf("%w: invoice number is required", domain.ErrInvalidInput)
	}
	if !inv.Status.Valid() {
		return fmt.Errorf("%w: unknown invoice status %q", domain.ErrInvalidInput, inv.Status)
	}
	if len(inv.LineItems) == 0 {
		return domain.Violation(domain.RuleEmptyLineItems, "an invoice needs at least one line item")
	}
	for i, li := range inv.LineItems {
		if err := li.Validate(); err != nil {
			return fmt.Errorf("line item %d: %w", i+1, err)
		}
	}
	if !inv.OverallDiscountType.Valid() {
		return fmt.Errorf("%w: unknown overall discount type %q", domain.ErrInvalidInput, inv.OverallDiscountType)
	}
	if inv.OverallDiscountValue.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: overall discount value cannot be negative", domain.ErrInvalidInput)
	}
	for i, p := range inv.Payments {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("payment %d: %w", i+1, err)
		}
	}
	if inv.BalanceDue().IsNegative() {
		return domain.Violation(domain.RuleNegativeBalance,
			"payments of %s exceed the invoice total of %s",
			inv.TotalPayments().StringFixed(2), inv.TotalAmount().StringFixed(2))
	}
	return nil
}

// CanDelete: hard deletes are only allowed while the invoice is still a
// draft that nobody has seen and no money has touched.
func (inv *Invoice) CanDelete() bool {
	return inv.Status == StatusDraft &&
		len(inv.Payments) == 0 &&
		inv.SentDate == nil &&
		inv.ViewedDate == nil
}
