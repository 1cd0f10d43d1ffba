package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// testInvoice: one line of 2 x $100 with 10% line discount and 8% tax
// (194.40) plus a fixed overall discount of $50, total 144.40.
func testInvoice(t *testing.T) *entity.Invoice {
	t.Helper()
	li, err := entity.NewLineItem("labor", dec("2"), dec("100"), entity.DiscountPercentage, dec("10"), dec("8"))
	require.NoError(t, err)

	return &entity.Invoice{
		ID:                   "inv-1",
		BusinessID:           "biz-1",
		InvoiceNumber:        "INV-000001",
		Status:               entity.StatusDraft,
		IssueDate:            testNow.AddDate(0, 0, -10),
		DueDate:              testNow.AddDate(0, 0, 20),
		ClientName:           "Acme Plumbing",
		Currency:             "USD",
		OverallDiscountType:  entity.DiscountFixed,
		OverallDiscountValue: dec("50"),
		LineItems:            []entity.LineItem{li},
		Terms:                entity.DefaultPaymentTerms(),
		Version:              1,
	}
}

func payment(amount string, daysAgo int) entity.Payment {
	return entity.Payment{
		ID:          "pay-" + amount,
		Amount:      dec(amount),
		PaymentDate: testNow.AddDate(0, 0, -daysAgo),
		Method:      entity.PaymentMethodCash,
		CreatedAt:   testNow,
	}
}

// The overall discount reduces the pre-tax amount but line taxes are added
// unchanged on top: 180 - 50 + 14.40 = 144.40.
func TestInvoice_SummaryWithOverallFixedDiscount(t *testing.T) {
	inv := testInvoice(t)
	s := inv.Summary()

	assert.True(t, dec("200").Equal(s.Subtotal), "subtotal")
	assert.True(t, dec("20").Equal(s.LineDiscountTotal), "line discounts")
	assert.True(t, dec("50").Equal(s.OverallDiscount), "overall discount")
	assert.True(t, dec("14.40").Equal(s.TaxAmount), "tax total")
	assert.True(t, dec("144.40").Equal(s.TotalAmount), "grand total")
}

func TestInvoice_SummaryOverallPercentageDiscount(t *testing.T) {
	inv := testInvoice(t)
	inv.OverallDiscountType = entity.DiscountPercentage
	inv.OverallDiscountValue = dec("10")

	s := inv.Summary()
	// 10% of the 180 pre-tax amount is 18; taxes still based on 180.
	assert.True(t, dec("18").Equal(s.OverallDiscount))
	assert.True(t, dec("176.40").Equal(s.TotalAmount))
}

// Recomputing the summary never drifts.
func TestInvoice_SummaryIsIdempotent(t *testing.T) {
	inv := testInvoice(t)
	first := inv.Summary()
	second := inv.Summary()
	assert.Equal(t, first, second)
}

func TestInvoice_PartialThenFinalPayment(t *testing.T) {
	inv := testInvoice(t)
	require.NoError(t, inv.MarkSent(testNow))

	// Partial payment of 100 leaves 44.40 outstanding.
	require.NoError(t, inv.ApplyPayment(payment("100", 1), testNow))
	assert.Equal(t, entity.StatusPartiallyPaid, inv.Status)
	assert.True(t, dec("44.40").Equal(inv.BalanceDue()))
	assert.Nil(t, inv.PaidDate)

	// Settling the rest flips to paid and stamps the paid date once.
	require.NoError(t, inv.ApplyPayment(payment("44.40", 0), testNow))
	assert.Equal(t, entity.StatusPaid, inv.Status)
	assert.True(t, inv.IsSettled())
	require.NotNil(t, inv.PaidDate)
	assert.Equal(t, testNow, *inv.PaidDate)
}

func TestInvoice_ApplyPaymentRejections(t *testing.T) {
	t.Run("on cancelled invoice", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.Cancel(testNow))
		err := inv.ApplyPayment(payment("10", 0), testNow)
		assert.True(t, domain.IsRule(err, domain.RuleInvalidState))
	})

	t.Run("on settled invoice", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent(testNow))
		require.NoError(t, inv.ApplyPayment(payment("144.40", 0), testNow))
		err := inv.ApplyPayment(payment("10", 0), testNow)
		assert.True(t, domain.IsRule(err, domain.RuleAlreadySettled))
	})

	t.Run("zero amount", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent(testNow))
		err := inv.ApplyPayment(payment("0", 0), testNow)
		assert.True(t, domain.IsRule(err, domain.RuleInvalidAmount))
	})

	t.Run("exceeds balance", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent(testNow))
		err := inv.ApplyPayment(payment("144.41", 0), testNow)
		assert.True(t, domain.IsRule(err, domain.RuleExceedsBalance))
	})

	t.Run("future dated", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent(testNow))
		p := payment("10", 0)
		p.PaymentDate = testNow.AddDate(0, 0, 1)
		err := inv.ApplyPayment(p, testNow)
		assert.True(t, domain.IsRule(err, domain.RuleFutureDated))
	})
}

// A rejected payment must leave the invoice untouched.
func TestInvoice_RejectedPaymentDoesNotMutate(t *testing.T) {
	inv := testInvoice(t)
	require.NoError(t, inv.MarkSent(testNow))
	before := len(inv.Payments)

	err := inv.ApplyPayment(payment("1000", 0), testNow)
	require.Error(t, err)
	assert.Len(t, inv.Payments, before)
	assert.Equal(t, entity.StatusSent, inv.Status)
}

// A fully refunded payment stops counting toward the balance.
func TestInvoice_RefundReopensBalance(t *testing.T) {
	inv := testInvoice(t)
	require.NoError(t, inv.MarkSent(testNow))
	require.NoError(t, inv.ApplyPayment(payment("100", 0), testNow))

	inv.Payments[0].Status = entity.PaymentStatusRefunded
	assert.True(t, dec("144.40").Equal(inv.BalanceDue()))

	inv.Payments[0].Status = entity.PaymentStatusPartiallyRefunded
	inv.Payments[0].RefundedAmount = dec("40")
	assert.True(t, dec("84.40").Equal(inv.BalanceDue()))
}

func TestInvoice_StatusTransitions(t *testing.T) {
	cases := []struct {
		name string
		from entity.InvoiceStatus
		move func(inv *entity.Invoice) error
		ok   bool
	}{
		{"draft can be sent", entity.StatusDraft, func(i *entity.Invoice) error { return i.MarkSent(testNow) }, true},
		{"sent cannot be sent again", entity.StatusSent, func(i *entity.Invoice) error { return i.MarkSent(testNow) }, false},
		{"sent can be viewed", entity.StatusSent, func(i *entity.Invoice) error { return i.MarkViewed(testNow) }, true},
		{"draft cannot be viewed", entity.StatusDraft, func(i *entity.Invoice) error { return i.MarkViewed(testNow) }, false},
		{"draft can be cancelled", entity.StatusDraft, func(i *entity.Invoice) error { return i.Cancel(testNow) }, true},
		{"viewed can be cancelled", entity.StatusViewed, func(i *entity.Invoice) error { return i.Cancel(testNow) }, true},
		{"partially paid cannot be cancelled", entity.StatusPartiallyPaid, func(i *entity.Invoice) error { return i.Cancel(testNow) }, false},
		{"draft can be voided", entity.StatusDraft, func(i *entity.Invoice) error { return i.Void(testNow) }, true},
		{"sent can be voided", entity.StatusSent, func(i *entity.Invoice) error { return i.Void(testNow) }, true},
		{"viewed cannot be voided", entity.StatusViewed, func(i *entity.Invoice) error { return i.Void(testNow) }, false},
		{"paid is terminal", entity.StatusPaid, func(i *entity.Invoice) error { return i.Cancel(testNow) }, false},
		{"cancelled is terminal", entity.StatusCancelled, func(i *entity.Invoice) error { return i.MarkSent(testNow) }, false},
		{"void is terminal", entity.StatusVoid, func(i *entity.Invoice) error { return i.MarkSent(testNow) }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := testInvoice(t)
			inv.Status = tc.from
			err := tc.move(inv)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, domain.IsRule(err, domain.RuleIllegalTransition), "expected illegal transition, got %v", err)
			}
		})
	}
}

func TestInvoice_SentDateStampedOnce(t *testing.T) {
	inv := testInvoice(t)
	require.NoError(t, inv.MarkSent(testNow))
	first := *inv.SentDate

	// Resending after edits must not move the original sent date.
	inv.Status = entity.StatusDraft
	require.NoError(t, inv.MarkSent(testNow.AddDate(0, 0, 5)))
	assert.Equal(t, first, *inv.SentDate)
}

// Overdue is derived, never stored: the stored status stays sent while the
// effective status reports overdue, and paying clears it with no transition.
func TestInvoice_OverdueIsDerived(t *testing.T) {
	inv := testInvoice(t)
	require.NoError(t, inv.MarkSent(testNow))
	inv.DueDate = testNow.AddDate(0, 0, -1)

	assert.True(t, inv.IsOverdue(testNow))
	assert.Equal(t, entity.StatusOverdue, inv.EffectiveStatus(testNow))
	assert.Equal(t, entity.StatusSent, inv.Status, "stored status must not change")

	require.NoError(t, inv.ApplyPayment(payment("144.40", 0), testNow))
	assert.False(t, inv.IsOverdue(testNow))
	assert.Equal(t, entity.StatusPaid, inv.EffectiveStatus(testNow))
}

func TestInvoice_DraftIsNeverOverdue(t *testing.T) {
	inv := testInvoice(t)
	inv.DueDate = testNow.AddDate(0, 0, -30)
	assert.False(t, inv.IsOverdue(testNow))
	assert.Equal(t, entity.StatusDraft, inv.EffectiveStatus(testNow))
}

func TestInvoice_Validate(t *testing.T) {
	t.Run("valid invoice passes", func(t *testing.T) {
		assert.NoError(t, testInvoice(t).Validate())
	})

	t.Run("needs at least one line item", func(t *testing.T) {
		inv := testInvoice(t)
		inv.LineItems = nil
		err := inv.Validate()
		assert.True(t, domain.IsRule(err, domain.RuleEmptyLineItems))
	})

	t.Run("overpayment breaks the ledger", func(t *testing.T) {
		inv := testInvoice(t)
		inv.Payments = []entity.Payment{payment("200", 0)}
		inv.Payments[0].Status = entity.PaymentStatusCompleted
		err := inv.Validate()
		assert.True(t, domain.IsRule(err, domain.RuleNegativeBalance))
	})

	t.Run("missing business id", func(t *testing.T) {
		inv := testInvoice(t)
		inv.BusinessID = ""
		assert.ErrorIs(t, inv.Validate(), domain.ErrInvalidInput)
	})
}

func TestInvoice_CanDelete(t *testing.T) {
	inv := testInvoice(t)
	assert.True(t, inv.CanDelete(), "fresh draft is deletable")

	t.Run("not after sending", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent(testNow))
		assert.False(t, inv.CanDelete())
	})

	t.Run("not with payments", func(t *testing.T) {
		inv := testInvoice(t)
		inv.Payments = []entity.Payment{payment("10", 0)}
		assert.False(t, inv.CanDelete())
	})
}
