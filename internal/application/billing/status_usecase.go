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

// InvoiceStatusUseCase drives the manual lifecycle actions: send, viewed,
// cancel, void and hard deletion. Each action locks the invoice row for the
// duration of its transaction.
type InvoiceStatusUseCase struct {
	txRunner InvoiceTxRunner
}

// NewInvoiceStatusUseCase wires the use case.
func NewInvoiceStatusUseCase(txRunner InvoiceTxRunner) *InvoiceStatusUseCase {
	return &InvoiceStatusUseCase{txRunner: txRunner}
}

// mutate loads the invoice with a row lock, applies fn and persists.
func (uc *InvoiceStatusUseCase) mutate(ctx context.Context, businessID, invoiceID string, fn func(inv *entity.Invoice) error) (*dto.InvoiceResponse, error) {
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
		if err := fn(loaded); err != nil {
			return err
		}
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

// Send marks a draft as sent and stamps the sent date.
func (uc *InvoiceStatusUseCase) Send(ctx context.Context, businessID, invoiceID string) (*dto.InvoiceResponse, error) {
	return uc.mutate(ctx, businessID, invoiceID, func(inv *entity.Invoice) error {
		return inv.MarkSent(time.Now())
	})
}

// MarkViewed records that the client opened the invoice.
func (uc *InvoiceStatusUseCase) MarkViewed(ctx context.Context, businessID, invoiceID string) (*dto.InvoiceResponse, error) {
	return uc.mutate(ctx, businessID, invoiceID, func(inv *entity.Invoice) error {
		return inv.MarkViewed(time.Now())
	})
}

// Cancel cancels an invoice that has received no payments.
func (uc *InvoiceStatusUseCase) Cancel(ctx context.Context, businessID, invoiceID string) (*dto.InvoiceResponse, error) {
	return uc.mutate(ctx, businessID, invoiceID, func(inv *entity.Invoice) error {
		return inv.Cancel(time.Now())
	})
}

// Void voids a draft or sent invoice.
func (uc *InvoiceStatusUseCase) Void(ctx context.Context, businessID, invoiceID string) (*dto.InvoiceResponse, error) {
	return uc.mutate(ctx, businessID, invoiceID, func(inv *entity.Invoice) error {
		return inv.Void(time.Now())
	})
}

// Delete hard-deletes an invoice, only allowed while it is an unsent,
// unviewed draft with no payments. Anything else keeps its paper trail.
func (uc *InvoiceStatusUseCase) Delete(ctx context.Context, businessID, invoiceID string) error {
	return uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		loaded, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if loaded == nil || loaded.BusinessID != businessID {
			return fmt.Errorf("invoice %s: %w", invoiceID, domain.ErrNotFound)
		}
		if !loaded.CanDelete() {
			return domain.Violation(domain.RuleNotDeletable,
				"only unsent draft invoices without payments can be deleted")
		}
		return invoiceRepo.Delete(ctx, loaded.ID)
	})
}
