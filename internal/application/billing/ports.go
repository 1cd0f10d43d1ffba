package billing

import (
	"context"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

// InvoiceTxRunner runs a callback with an invoice repository bound to a
// single transaction. Mutating use cases lock the invoice row inside the
// callback (GetByIDForUpdate) so read-modify-write sequences cannot
// interleave.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error
}

// PDFGenerator renders the printable representation of an invoice.
type PDFGenerator interface {
	Generate(invoice *entity.Invoice, business *entity.Business) ([]byte, error)
}
