package billing

import (
	"context"
	"fmt"

	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

// PDFUseCase renders the printable invoice.
type PDFUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	businessRepo repository.BusinessRepository
	generator    PDFGenerator
}

// NewPDFUseCase wires the use case.
func NewPDFUseCase(invoiceRepo repository.InvoiceRepository, businessRepo repository.BusinessRepository, generator PDFGenerator) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, businessRepo: businessRepo, generator: generator}
}

// InvoicePDF returns the rendered document and a suggested filename.
func (uc *PDFUseCase) InvoicePDF(ctx context.Context, businessID, invoiceID string) ([]byte, string, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv == nil || inv.BusinessID != businessID {
		return nil, "", fmt.Errorf("invoice %s: %w", invoiceID, domain.ErrNotFound)
	}
	business, err := uc.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, "", err
	}
	if business == nil {
		return nil, "", fmt.Errorf("business %s: %w", businessID, domain.ErrNotFound)
	}
	pdf, err := uc.generator.Generate(inv, business)
	if err != nil {
		return nil, "", fmt.Errorf("render invoice pdf: %w", err)
	}
	return pdf, fmt.Sprintf("invoice-%s.pdf", inv.InvoiceNumber), nil
}
