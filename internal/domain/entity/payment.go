package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/domain"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodOther        PaymentMethod = "other"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodCreditCard,
		PaymentMethodBankTransfer, PaymentMethodOnline, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentStatus tracks refund state on an applied payment.
type PaymentStatus string

const (
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// Payment is a recorded payment against an invoice.
type Payment struct {
	ID             string
	Amount         decimal.Decimal
	PaymentDate    time.Time
	Method         PaymentMethod
	Status         PaymentStatus
	Reference      string
	TransactionID  string
	Notes          string
	ProcessedBy    string
	RefundedAmount decimal.Decimal
	CreatedAt      time.Time
}

// Validate checks the payment preconditions.
func (p Payment) Validate() error {
	if !p.Amount.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: payment amount must be positive", domain.ErrInvalidInput)
	}
	if !p.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidInput, p.Method)
	}
	if p.RefundedAmount.LessThan(decimal.Zero) || p.RefundedAmount.GreaterThan(p.Amount) {
		return fmt.Errorf("%w: refunded amount must be between 0 and the payment amount", domain.ErrInvalidInput)
	}
	return nil
}

// EffectiveAmount is what the payment contributes to the balance: the amount
// net of refunds for completed or partially refunded payments, zero for fully
// refunded ones.
func (p Payment) EffectiveAmount() decimal.Decimal {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusPartiallyRefunded:
		return p.Amount.Sub(p.RefundedAmount)
	default:
		return decimal.Zero
	}
}
