package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/tradeflow/fieldops-api/internal/application/dto"
	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

// UpdateInvoiceUseCase mutates an invoice in place. Cancelled and void
// invoices are locked. Line-item replacement is allowed even when payments
// exist, but the aggregate must still validate: shrinking the total below
// what was already paid is rejected, not clamped.
type UpdateInvoiceUseCase struct {
	txRunner InvoiceTxRunner
}

// NewUpdateInvoiceUseCase wires the use case.
func NewUpdateInvoiceUseCase(txRunner InvoiceTxRunner) *UpdateInvoiceUseCase {
	return &UpdateInvoiceUseCase{txRunner: txRunner}
}

// UpdateInvoice applies the requested changes and recomputes derived state.
func (uc *UpdateInvoiceUseCase) UpdateInvoice(ctx context.Context, businessID, invoiceID string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	now := time.Now()

	var inv *entity.Invoice
	err := uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		loaded, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if loaded == nil || loaded.BusinessID != businessID {
			return fmt.Errorf("invoice %s: %w", invoiceID, domain.ErrNotFound)
		}
		if loaded.Status == entity.StatusCancelled || loaded.Status == entity.StatusVoid {
			return domain.Violation(domain.RuleLocked, "a %s invoice cannot be modified", loaded.Status)
		}
		if in.Version > 0 && in.Version != loaded.Version {
			return domain.ErrVersionConflict
		}

		if in.ClientName != nil {
			loaded.ClientName = *in.ClientName
		}
		if in.ClientEmail != nil {
			loaded.ClientEmail = *in.ClientEmail
		}
		if in.ClientPhone != nil {
			loaded.ClientPhone = *in.ClientPhone
		}
		if in.ClientAddress != nil {
			loaded.ClientAddress = *in.ClientAddress
		}
		if in.DueDate != nil {
			d, err := parseDate(*in.DueDate)
			if err != nil {
				return err
			}
			loaded.DueDate = d
		}
		if in.TaxRate != nil {
			loaded.TaxRate = *in.TaxRate
		}
		if in.OverallDiscountType != nil {
			loaded.OverallDiscountType = entity.DiscountType(*in.OverallDiscountType)
		}
		if in.OverallDiscountValue != nil {
			loaded.OverallDiscountValue = *in.OverallDiscountValue
		}
		if in.LineItems != nil {
			items, err := lineItemsFromRequest(in.LineItems, loaded.TaxRate)
			if err != nil {
				return err
			}
			loaded.LineItems = items
		}
		if in.Terms != nil {
			loaded.Terms = termsFromRequest(in.Terms)
		}
		if in.Tags != nil {
			loaded.Tags = in.Tags
		}
		if in.CustomFields != nil {
			loaded.CustomFields = in.CustomFields
		}
		if in.InternalNotes != nil {
			loaded.InternalNotes = *in.InternalNotes
		}

		if err := loaded.Validate(); err != nil {
			return err
		}
		// Totals may have moved; the payment-driven status moves with them.
		loaded.RecalculateStatus(now)
		loaded.UpdatedAt = now

		if err := invoiceRepo.Update(ctx, loaded); err != nil {
			return err
		}
		inv = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(inv, now), nil
}
