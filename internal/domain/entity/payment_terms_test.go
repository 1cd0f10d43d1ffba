package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

func TestPaymentTerms_DueDateFrom(t *testing.T) {
	issued := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, issued.AddDate(0, 0, 30), entity.DefaultPaymentTerms().DueDateFrom(issued))

	terms := entity.PaymentTerms{NetDays: 15}
	assert.Equal(t, issued.AddDate(0, 0, 15), terms.DueDateFrom(issued))

	// Net 0 means due on receipt.
	assert.Equal(t, issued, entity.PaymentTerms{}.DueDateFrom(issued))
}

func TestPaymentTerms_EarlyPaymentDiscount(t *testing.T) {
	issued := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	terms := entity.PaymentTerms{
		NetDays:            30,
		DiscountPercentage: dec("2"),
		DiscountDays:       10,
	}
	total := dec("500")

	t.Run("inside the window", func(t *testing.T) {
		paidAt := issued.AddDate(0, 0, 7)
		assert.True(t, dec("10").Equal(terms.EarlyPaymentDiscount(total, issued, paidAt)))
	})

	t.Run("on the last day", func(t *testing.T) {
		paidAt := issued.AddDate(0, 0, 10)
		assert.True(t, dec("10").Equal(terms.EarlyPaymentDiscount(total, issued, paidAt)))
	})

	t.Run("after the window", func(t *testing.T) {
		paidAt := issued.AddDate(0, 0, 11)
		assert.True(t, terms.EarlyPaymentDiscount(total, issued, paidAt).IsZero())
	})

	t.Run("not configured", func(t *testing.T) {
		assert.True(t, entity.DefaultPaymentTerms().EarlyPaymentDiscount(total, issued, issued).IsZero())
	})
}

func TestPaymentTerms_LateFee(t *testing.T) {
	due := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)
	terms := entity.PaymentTerms{
		NetDays:           30,
		LateFeePercentage: dec("5"),
		LateFeeGraceDays:  3,
	}
	balance := dec("200")

	t.Run("inside the grace period", func(t *testing.T) {
		assert.True(t, terms.LateFee(balance, due, due.AddDate(0, 0, 3)).IsZero())
	})

	t.Run("after the grace period", func(t *testing.T) {
		assert.True(t, dec("10").Equal(terms.LateFee(balance, due, due.AddDate(0, 0, 4))))
	})

	t.Run("no balance, no fee", func(t *testing.T) {
		assert.True(t, terms.LateFee(dec("0"), due, due.AddDate(0, 0, 30)).IsZero())
	})

	t.Run("not configured", func(t *testing.T) {
		assert.True(t, entity.DefaultPaymentTerms().LateFee(balance, due, due.AddDate(0, 0, 30)).IsZero())
	})
}
