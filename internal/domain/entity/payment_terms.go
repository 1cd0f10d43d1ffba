package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTerms define when an invoice is due and the incentives/penalties
// around the due date. Early-payment discounts and late fees are reported to
// the client but never mutate the stored invoice totals.
type PaymentTerms struct {
	NetDays             int
	DiscountPercentage  decimal.Decimal
	DiscountDays        int
	LateFeePercentage   decimal.Decimal
	LateFeeGraceDays    int
	PaymentInstructions string
}

// DefaultPaymentTerms is Net 30 with no incentives.
func DefaultPaymentTerms() PaymentTerms {
	return PaymentTerms{NetDays: 30}
}

// DueDateFrom derives the due date from the issue date.
func (t PaymentTerms) DueDateFrom(issueDate time.Time) time.Time {
	return issueDate.AddDate(0, 0, t.NetDays)
}

// EarlyPaymentDiscount returns the discount earned when paying at paidAt,
// or zero when outside the discount window or no discount is configured.
func (t PaymentTerms) EarlyPaymentDiscount(total decimal.Decimal, issueDate, paidAt time.Time) decimal.Decimal {
	if t.DiscountDays <= 0 || !t.DiscountPercentage.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	deadline := issueDate.AddDate(0, 0, t.DiscountDays)
	if paidAt.After(deadline) {
		return decimal.Zero
	}
	return total.Mul(t.DiscountPercentage).Div(oneHundred)
}

// LateFee returns the fee accrued on the outstanding balance once the grace
// period after the due date has elapsed, or zero before that.
func (t PaymentTerms) LateFee(balance decimal.Decimal, dueDate, now time.Time) decimal.Decimal {
	if !t.LateFeePercentage.GreaterThan(decimal.Zero) || !balance.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	graceEnd := dueDate.AddDate(0, 0, t.LateFeeGraceDays)
	if !now.After(graceEnd) {
		return decimal.Zero
	}
	return balance.Mul(t.LateFeePercentage).Div(oneHundred)
}
