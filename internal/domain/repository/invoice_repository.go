package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

// InvoiceFilter narrows invoice listings. Zero values mean "no filter".
// Overdue is translated by the adapter into a due-date + balance predicate,
// since overdue is never a stored status.
type InvoiceFilter struct {
	Status     entity.InvoiceStatus
	ContactID  string
	ProjectID  string
	JobID      string
	Overdue    bool
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

// InvoiceSearchCriteria is the free-form search contract: Query matches
// invoice number and client name/email, the rest are range filters.
type InvoiceSearchCriteria struct {
	Query      string
	Statuses   []entity.InvoiceStatus
	MinTotal   *decimal.Decimal
	MaxTotal   *decimal.Decimal
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	Tags       []string
}

// InvoiceRepository is the persistence port for the invoice aggregate,
// including its line items and payments.
//
// Update is a compare-and-swap on (id, version): implementations must return
// domain.ErrVersionConflict when the stored version no longer matches.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByIDForUpdate locks the invoice row for the rest of the
	// transaction. Only meaningful on a tx-bound repository.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id string) error
	ListByBusiness(ctx context.Context, businessID string, filter InvoiceFilter, limit, offset int) ([]*entity.Invoice, int, error)
	Search(ctx context.Context, businessID string, criteria InvoiceSearchCriteria, limit, offset int) ([]*entity.Invoice, int, error)
	// NextInvoiceNumber atomically advances the per-business sequence for
	// the given prefix and returns the formatted number. Must be called in
	// the same transaction as the invoice insert.
	NextInvoiceNumber(ctx context.Context, businessID, prefix string) (string, error)
	// HasDuplicateNumber is an advisory pre-check; the unique constraint on
	// (business_id, invoice_number) is the authoritative guard.
	HasDuplicateNumber(ctx context.Context, businessID, number string) (bool, error)
}
