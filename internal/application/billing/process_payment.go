package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradeflow/fieldops-api/internal/application/dto"
	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

// ProcessPaymentUseCase applies a payment to an invoice. The whole
// read-modify-write runs inside one transaction with the invoice row locked,
// so two concurrent payments cannot both pass the balance check against a
// stale balance.
type ProcessPaymentUseCase struct {
	txRunner InvoiceTxRunner
}

// NewProcessPaymentUseCase wires the use case.
func NewProcessPaymentUseCase(txRunner InvoiceTxRunner) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{txRunner: txRunner}
}

// ProcessPayment records a payment and recomputes the invoice status.
func (uc *ProcessPaymentUseCase) ProcessPayment(ctx context.Context, businessID, invoiceID, userID string, in dto.ProcessPaymentRequest) (*dto.InvoiceResponse, error) {
	now := time.Now()

	paymentDate := now
	if in.PaymentDate != "" {
		d, err := parseDate(in.PaymentDate)
		if err != nil {
			return nil, err
		}
		paymentDate = d
	}

	method := entity.PaymentMethod(in.Method)
	if method == "" {
		method = entity.PaymentMethodOther
	}

	payment := entity.Payment{
		ID:            uuid.New().String(),
		Amount:        in.Amount,
		PaymentDate:   paymentDate,
		Method:        method,
		Reference:     in.Reference,
		TransactionID: in.TransactionID,
		Notes:         in.Notes,
		ProcessedBy:   userID,
		CreatedAt:     now,
	}

	var inv *entity.Invoice
	err := uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		loaded, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if loaded == nil || loaded.BusinessID != businessID {
			return fmt.Errorf("invoice %s: %w", invoiceID, domain.ErrNotFound)
		}
		if err := loaded.ApplyPayment(payment, now); err != nil {
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
