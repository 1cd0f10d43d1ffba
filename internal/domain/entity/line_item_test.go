package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// 2 x $100 with a 10% discount and 8% tax: the tax applies to the
// post-discount amount, so the line ends at 194.40, not 196.
func TestLineItem_PercentageDiscountThenTax(t *testing.T) {
	li, err := entity.NewLineItem("labor", dec("2"), dec("100"), entity.DiscountPercentage, dec("10"), dec("8"))
	require.NoError(t, err)

	assert.True(t, dec("200").Equal(li.LineTotal()), "line total")
	assert.True(t, dec("20").Equal(li.DiscountAmount()), "discount")
	assert.True(t, dec("180").Equal(li.TaxableAmount()), "taxable amount")
	assert.True(t, dec("14.40").Equal(li.TaxAmount().Round(2)), "tax on post-discount amount")
	assert.True(t, dec("194.40").Equal(li.FinalTotal().Round(2)), "final total")
}

// A fixed discount larger than the line total is capped: the line bottoms
// out at zero instead of going negative.
func TestLineItem_FixedDiscountCappedAtLineTotal(t *testing.T) {
	li, err := entity.NewLineItem("small part", dec("1"), dec("30"), entity.DiscountFixed, dec("50"), dec("0"))
	require.NoError(t, err)

	assert.True(t, dec("30").Equal(li.DiscountAmount()), "discount capped at line total")
	assert.True(t, li.TaxableAmount().IsZero())
	assert.True(t, li.FinalTotal().IsZero())
}

func TestLineItem_NoDiscount(t *testing.T) {
	li, err := entity.NewLineItem("materials", dec("3"), dec("25.50"), entity.DiscountNone, decimal.Zero, dec("5"))
	require.NoError(t, err)

	assert.True(t, dec("76.50").Equal(li.LineTotal()))
	assert.True(t, li.DiscountAmount().IsZero())
	assert.True(t, dec("3.83").Equal(li.TaxAmount().Round(2)))
}

// Derived amounts are pure functions of the inputs: calling them twice
// always yields the same result.
func TestLineItem_DerivedAmountsAreStable(t *testing.T) {
	li, err := entity.NewLineItem("labor", dec("1.5"), dec("80"), entity.DiscountPercentage, dec("12.5"), dec("19"))
	require.NoError(t, err)

	first := li.FinalTotal()
	second := li.FinalTotal()
	assert.True(t, first.Equal(second))
	assert.True(t, li.TaxableAmount().Add(li.TaxAmount()).Equal(li.FinalTotal()))
	assert.True(t, li.LineTotal().Sub(li.DiscountAmount()).Equal(li.TaxableAmount()))
}

func TestNewLineItem_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		quantity string
		price    string
		discType entity.DiscountType
		discVal  string
		taxRate  string
	}{
		{"zero quantity", "0", "100", entity.DiscountNone, "0", "0"},
		{"negative quantity", "-1", "100", entity.DiscountNone, "0", "0"},
		{"negative unit price", "1", "-5", entity.DiscountNone, "0", "0"},
		{"negative discount", "1", "100", entity.DiscountPercentage, "-10", "0"},
		{"tax rate above 100", "1", "100", entity.DiscountNone, "0", "101"},
		{"negative tax rate", "1", "100", entity.DiscountNone, "0", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := entity.NewLineItem("x", dec(tc.quantity), dec(tc.price), tc.discType, dec(tc.discVal), dec(tc.taxRate))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestNewLineItem_EmptyDiscountTypeDefaultsToNone(t *testing.T) {
	li, err := entity.NewLineItem("labor", dec("1"), dec("10"), "", decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, entity.DiscountNone, li.DiscountType)
}

func TestNewLineItem_RejectsUnknownDiscountType(t *testing.T) {
	_, err := entity.NewLineItem("labor", dec("1"), dec("10"), "coupon", dec("1"), decimal.Zero)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
