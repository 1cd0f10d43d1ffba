package entity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/domain"
)

// DiscountType applies to line items and to the invoice header.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether dt is a known discount type.
func (dt DiscountType) Valid() bool {
	switch dt {
	case DiscountNone, DiscountPercentage, DiscountFixed:
		return true
	}
	return false
}

var oneHundred = decimal.NewFromInt(100)

// LineItem is one billable entry on an invoice. Derived amounts are never
// stored on the struct: they are computed from the inputs every time, so two
// calls with the same inputs always agree.
type LineItem struct {
	ID            string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Unit          string
	Category      string
	Notes         string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	TaxRate       decimal.Decimal // percentage, 0-100
}

// NewLineItem builds a validated line item. Quantity must be positive,
// unit price and discount value non-negative, tax rate within 0-100.
func NewLineItem(description string, quantity, unitPrice decimal.Decimal, discountType DiscountType, discountValue, taxRate decimal.Decimal) (LineItem, error) {
	if discountType == "" {
		discountType = DiscountNone
	}
	li := LineItem{
		ID:            uuid.New().String(),
		Description:   description,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		DiscountType:  discountType,
		DiscountValue: discountValue,
		TaxRate:       taxRate,
	}
	if err := li.Validate(); err != nil {
		return LineItem{}, err
	}
	return li, nil
}

// Validate checks the line-item preconditions.
func (li LineItem) Validate() error {
	if li.Description == "" {
		return fmt.Errorf("%w: line item description is required", domain.ErrInvalidInput)
	}
	if !li.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: line item quantity must be positive", domain.ErrInvalidInput)
	}
	if li.UnitPrice.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: line item unit price cannot be negative", domain.ErrInvalidInput)
	}
	if !li.DiscountType.Valid() {
		return fmt.Errorf("%w: unknown discount type %q", domain.ErrInvalidInput, li.DiscountType)
	}
	if li.DiscountValue.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: line item discount value cannot be negative", domain.ErrInvalidInput)
	}
	if li.TaxRate.LessThan(decimal.Zero) || li.TaxRate.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: line item tax rate must be between 0 and 100", domain.ErrInvalidInput)
	}
	return nil
}

// LineTotal is quantity x unit price, before discount and tax.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// DiscountAmount is capped at the line total so a fixed discount can never
// push the line negative.
func (li LineItem) DiscountAmount() decimal.Decimal {
	total := li.LineTotal()
	switch li.DiscountType {
	case DiscountPercentage:
		return total.Mul(li.DiscountValue).Div(oneHundred)
	case DiscountFixed:
		return decimal.Min(li.DiscountValue, total)
	default:
		return decimal.Zero
	}
}

// TaxableAmount is the line total net of its own discount.
func (li LineItem) TaxableAmount() decimal.Decimal {
	return li.LineTotal().Sub(li.DiscountAmount())
}

// TaxAmount applies the line's tax rate to its post-discount amount.
// Intermediate results keep full precision; rounding happens only at the
// persistence/presentation boundary.
func (li LineItem) TaxAmount() decimal.Decimal {
	return li.TaxableAmount().Mul(li.TaxRate).Div(oneHundred)
}

// FinalTotal is taxable amount plus tax.
func (li LineItem) FinalTotal() decimal.Decimal {
	return li.TaxableAmount().Add(li.TaxAmount())
}
