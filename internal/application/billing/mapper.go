package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/application/dto"
	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD request field.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// toInvoiceResponse maps the aggregate to its API view. All derived money
// figures come from the entity so every caller reports the same numbers.
func toInvoiceResponse(inv *entity.Invoice, now time.Time) *dto.InvoiceResponse {
	summary := inv.Summary()

	items := make([]dto.LineItemResponse, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		items = append(items, dto.LineItemResponse{
			ID:             li.ID,
			Description:    li.Description,
			Quantity:       li.Quantity,
			UnitPrice:      li.UnitPrice,
			Unit:           li.Unit,
			Category:       li.Category,
			Notes:          li.Notes,
			DiscountType:   string(li.DiscountType),
			DiscountValue:  li.DiscountValue,
			TaxRate:        li.TaxRate,
			LineTotal:      li.LineTotal().Round(2),
			DiscountAmount: li.DiscountAmount().Round(2),
			TaxAmount:      li.TaxAmount().Round(2),
			FinalTotal:     li.FinalTotal().Round(2),
		})
	}

	payments := make([]dto.PaymentResponse, 0, len(inv.Payments))
	for _, p := range inv.Payments {
		payments = append(payments, dto.PaymentResponse{
			ID:              p.ID,
			Amount:          p.Amount,
			PaymentDate:     p.PaymentDate.Format(dateLayout),
			Method:          string(p.Method),
			Status:          string(p.Status),
			Reference:       p.Reference,
			TransactionID:   p.TransactionID,
			Notes:           p.Notes,
			ProcessedBy:     p.ProcessedBy,
			RefundedAmount:  p.RefundedAmount,
			EffectiveAmount: p.EffectiveAmount(),
		})
	}

	balance := inv.BalanceDue()
	return &dto.InvoiceResponse{
		ID:              inv.ID,
		BusinessID:      inv.BusinessID,
		InvoiceNumber:   inv.InvoiceNumber,
		Status:          string(inv.Status),
		EffectiveStatus: string(inv.EffectiveStatus(now)),

		IssueDate:  inv.IssueDate.Format(dateLayout),
		DueDate:    inv.DueDate.Format(dateLayout),
		SentDate:   formatDatePtr(inv.SentDate),
		ViewedDate: formatDatePtr(inv.ViewedDate),
		PaidDate:   formatDatePtr(inv.PaidDate),

		ContactID:     inv.ContactID,
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientPhone:   inv.ClientPhone,
		ClientAddress: inv.ClientAddress,

		Currency:             inv.Currency,
		TaxRate:              inv.TaxRate,
		TaxType:              string(inv.TaxType),
		OverallDiscountType:  string(inv.OverallDiscountType),
		OverallDiscountValue: inv.OverallDiscountValue,

		LineItems: items,
		Payments:  payments,

		Summary: dto.FinancialSummaryResponse{
			Subtotal:          summary.Subtotal,
			LineDiscountTotal: summary.LineDiscountTotal,
			OverallDiscount:   summary.OverallDiscount,
			TaxAmount:         summary.TaxAmount,
			TotalAmount:       summary.TotalAmount,
		},
		AmountPaid: inv.TotalPayments(),
		BalanceDue: balance.Round(2),

		EarlyPaymentDiscount: inv.Terms.EarlyPaymentDiscount(summary.TotalAmount, inv.IssueDate, now).Round(2),
		LateFee:              inv.Terms.LateFee(balance, inv.DueDate, now).Round(2),

		Terms: dto.PaymentTermsResponse{
			NetDays:             inv.Terms.NetDays,
			DiscountPercentage:  inv.Terms.DiscountPercentage,
			DiscountDays:        inv.Terms.DiscountDays,
			LateFeePercentage:   inv.Terms.LateFeePercentage,
			LateFeeGraceDays:    inv.Terms.LateFeeGraceDays,
			PaymentInstructions: inv.Terms.PaymentInstructions,
		},

		EstimateID: inv.EstimateID,
		ProjectID:  inv.ProjectID,
		JobID:      inv.JobID,

		Tags:          inv.Tags,
		CustomFields:  inv.CustomFields,
		InternalNotes: inv.InternalNotes,
		CreatedBy:     inv.CreatedBy,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
		Version:       inv.Version,
	}
}

// termsFromRequest maps a terms request, falling back to Net 30.
func termsFromRequest(in *dto.PaymentTermsRequest) entity.PaymentTerms {
	if in == nil {
		return entity.DefaultPaymentTerms()
	}
	terms := entity.PaymentTerms{
		NetDays:             in.NetDays,
		DiscountPercentage:  in.DiscountPercentage,
		DiscountDays:        in.DiscountDays,
		LateFeePercentage:   in.LateFeePercentage,
		LateFeeGraceDays:    in.LateFeeGraceDays,
		PaymentInstructions: in.PaymentInstructions,
	}
	if terms.NetDays <= 0 {
		terms.NetDays = entity.DefaultPaymentTerms().NetDays
	}
	return terms
}

// lineItemsFromRequest builds validated line items, inheriting the header
// tax rate where a line does not set its own.
func lineItemsFromRequest(items []dto.LineItemRequest, headerTaxRate decimal.Decimal) ([]entity.LineItem, error) {
	out := make([]entity.LineItem, 0, len(items))
	for i, in := range items {
		taxRate := headerTaxRate
		if in.TaxRate != nil {
			taxRate = *in.TaxRate
		}
		li, err := entity.NewLineItem(in.Description, in.Quantity, in.UnitPrice,
			entity.DiscountType(in.DiscountType), in.DiscountValue, taxRate)
		if err != nil {
			return nil, fmt.Errorf("line item %d: %w", i+1, err)
		}
		li.Unit = in.Unit
		li.Category = in.Category
		li.Notes = in.Notes
		out = append(out, li)
	}
	return out, nil
}
