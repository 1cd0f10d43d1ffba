package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/application/dto"
	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

// InvoiceQueryUseCase serves reads: get, list and search. Reads run on the
// pool-bound repository, no locking involved.
type InvoiceQueryUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceQueryUseCase wires the use case.
func NewInvoiceQueryUseCase(invoiceRepo repository.InvoiceRepository) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{invoiceRepo: invoiceRepo}
}

// GetInvoice returns the full aggregate view.
func (uc *InvoiceQueryUseCase) GetInvoice(ctx context.Context, businessID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.BusinessID != businessID {
		return nil, fmt.Errorf("invoice %s: %w", invoiceID, domain.ErrNotFound)
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// ListInvoices returns a filtered page of the business's invoices.
func (uc *InvoiceQueryUseCase) ListInvoices(ctx context.Context, businessID string, status, contactID, projectID, jobID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()

	filter := repository.InvoiceFilter{
		ContactID: contactID,
		ProjectID: projectID,
		JobID:     jobID,
	}
	// "overdue" is a derived state: the adapter turns it into a date and
	// balance predicate instead of matching a stored status.
	if status == string(entity.StatusOverdue) {
		filter.Overdue = true
	} else if status != "" {
		s := entity.InvoiceStatus(status)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status filter %q", domain.ErrInvalidInput, status)
		}
		filter.Status = s
	}

	items, total, err := uc.invoiceRepo.ListByBusiness(ctx, businessID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return uc.toListResponse(items, total, page), nil
}

// SearchInvoices runs the free-form search contract.
func (uc *InvoiceQueryUseCase) SearchInvoices(ctx context.Context, businessID string, in dto.SearchInvoicesRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()

	criteria := repository.InvoiceSearchCriteria{
		Query: strings.TrimSpace(in.Query),
	}
	for _, raw := range strings.Split(in.Status, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		s := entity.InvoiceStatus(raw)
		if !s.Valid() && s != entity.StatusOverdue {
			return nil, fmt.Errorf("%w: unknown status filter %q", domain.ErrInvalidInput, raw)
		}
		criteria.Statuses = append(criteria.Statuses, s)
	}
	if in.MinTotal != "" {
		d, err := decimal.NewFromString(in.MinTotal)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid min_total", domain.ErrInvalidInput)
		}
		criteria.MinTotal = &d
	}
	if in.MaxTotal != "" {
		d, err := decimal.NewFromString(in.MaxTotal)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid max_total", domain.ErrInvalidInput)
		}
		criteria.MaxTotal = &d
	}
	if in.IssuedFrom != "" {
		d, err := parseDate(in.IssuedFrom)
		if err != nil {
			return nil, err
		}
		criteria.IssuedFrom = &d
	}
	if in.IssuedTo != "" {
		d, err := parseDate(in.IssuedTo)
		if err != nil {
			return nil, err
		}
		criteria.IssuedTo = &d
	}
	if in.Tag != "" {
		criteria.Tags = []string{in.Tag}
	}

	items, total, err := uc.invoiceRepo.Search(ctx, businessID, criteria, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return uc.toListResponse(items, total, in.PageRequest), nil
}

func (uc *InvoiceQueryUseCase) toListResponse(items []*entity.Invoice, total int, page dto.PageRequest) *dto.InvoiceListResponse {
	now := time.Now()
	out := make([]dto.InvoiceResponse, 0, len(items))
	for _, inv := range items {
		out = append(out, *toInvoiceResponse(inv, now))
	}
	return &dto.InvoiceListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
}
