package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/domain"
)

// InvoiceStatus is the stored lifecycle state of an invoice.
//
// Overdue is deliberately never stored: it is a display state derived from
// the due date and balance on top of sent/viewed/partially_paid (see
// EffectiveStatus), so a payment never has to "undo" an overdue transition.
type InvoiceStatus string

const (
	StatusDraft         InvoiceStatus = "draft"
	StatusSent          InvoiceStatus = "sent"
	StatusViewed        InvoiceStatus = "viewed"
	StatusPartiallyPaid InvoiceStatus = "partially_paid"
	StatusPaid          InvoiceStatus = "paid"
	StatusOverdue       InvoiceStatus = "overdue"
	StatusCancelled     InvoiceStatus = "cancelled"
	StatusVoid          InvoiceStatus = "void"
)

// Valid reports whether s is a storable status. Overdue is valid as a filter
// and display value but never persisted.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusPartiallyPaid,
		StatusPaid, StatusCancelled, StatusVoid:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s InvoiceStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusVoid
}

// canTransition is the single authority on legal status changes. Every
// stored status is matched explicitly so adding a status forces this table
// to be revisited.
func canTransition(from, to InvoiceStatus) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusSent:
		return from == StatusDraft
	case StatusViewed:
		return from == StatusSent
	case StatusPartiallyPaid:
		return from == StatusSent || from == StatusViewed || from == StatusPartiallyPaid
	case StatusPaid:
		// Any non-terminal state settles once the balance reaches zero.
		return true
	case StatusCancelled:
		return from == StatusDraft || from == StatusSent || from == StatusViewed
	case StatusVoid:
		return from == StatusDraft || from == StatusSent
	default:
		return false
	}
}

func (inv *Invoice) transition(to InvoiceStatus, now time.Time) error {
	if !canTransition(inv.Status, to) {
		return domain.Violation(domain.RuleIllegalTransition,
			"cannot move invoice %s from %s to %s", inv.InvoiceNumber, inv.Status, to)
	}
	inv.Status = to
	inv.UpdatedAt = now
	return nil
}

// MarkSent moves a draft to sent and stamps the sent date.
func (inv *Invoice) MarkSent(now time.Time) error {
	if err := inv.transition(StatusSent, now); err != nil {
		return err
	}
	if inv.SentDate == nil {
		t := now
		inv.SentDate = &t
	}
	return nil
}

// MarkViewed records that the client opened the invoice.
func (inv *Invoice) MarkViewed(now time.Time) error {
	if err := inv.transition(StatusViewed, now); err != nil {
		return err
	}
	if inv.ViewedDate == nil {
		t := now
		inv.ViewedDate = &t
	}
	return nil
}

// Cancel is only possible before any payment has been recorded.
func (inv *Invoice) Cancel(now time.Time) error {
	return inv.transition(StatusCancelled, now)
}

// Void is only possible while the invoice is draft or merely sent.
func (inv *Invoice) Void(now time.Time) error {
	return inv.transition(StatusVoid, now)
}

// refreshPaymentStatus recomputes the payment-driven portion of the state
// machine after the ledger changed. The paid date is stamped exactly once,
// the first time the balance reaches zero.
func (inv *Invoice) refreshPaymentStatus(now time.Time) {
	balance := inv.BalanceDue()
	switch {
	case balance.IsZero() && len(inv.Payments) > 0:
		if canTransition(inv.Status, StatusPaid) {
			inv.Status = StatusPaid
			if inv.PaidDate == nil {
				t := now
				inv.PaidDate = &t
			}
		}
	case balance.GreaterThan(decimal.Zero) && balance.LessThan(inv.TotalAmount()):
		if canTransition(inv.Status, StatusPartiallyPaid) {
			inv.Status = StatusPartiallyPaid
		}
	}
}

// RecalculateStatus re-derives the payment-driven status after anything
// that changes the totals (line-item edits, header discount changes).
func (inv *Invoice) RecalculateStatus(now time.Time) {
	inv.refreshPaymentStatus(now)
}

// IsOverdue reports whether the invoice is past due with money outstanding.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	switch inv.Status {
	case StatusSent, StatusViewed, StatusPartiallyPaid:
		return inv.DueDate.Before(now) && inv.BalanceDue().GreaterThan(decimal.Zero)
	}
	return false
}

// EffectiveStatus layers the derived overdue state over the stored status.
func (inv *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if inv.IsOverdue(now) {
		return StatusOverdue
	}
	return inv.Status
}
