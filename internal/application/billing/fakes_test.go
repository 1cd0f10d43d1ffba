package billing_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

var testNow = time.Now()

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakeInvoiceRepo is an in-memory repository with the same contract as the
// PostgreSQL adapter: compare-and-swap on version, sequence allocation,
// overdue translated into a predicate.
type fakeInvoiceRepo struct {
	invoices  map[string]*entity.Invoice
	sequences map[string]int64
}

var _ repository.InvoiceRepository = (*fakeInvoiceRepo)(nil)

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices:  make(map[string]*entity.Invoice),
		sequences: make(map[string]int64),
	}
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	for _, existing := range r.invoices {
		if existing.BusinessID == inv.BusinessID && existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.invoices[id], nil
}

func (r *fakeInvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored != inv && stored.Version != inv.Version {
		return domain.ErrVersionConflict
	}
	inv.Version++
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) ListByBusiness(_ context.Context, businessID string, filter repository.InvoiceFilter, limit, offset int) ([]*entity.Invoice, int, error) {
	var matched []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.BusinessID != businessID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.Overdue && !inv.IsOverdue(testNow) {
			continue
		}
		if filter.ContactID != "" && inv.ContactID != filter.ContactID {
			continue
		}
		if filter.ProjectID != "" && inv.ProjectID != filter.ProjectID {
			continue
		}
		if filter.JobID != "" && inv.JobID != filter.JobID {
			continue
		}
		matched = append(matched, inv)
	}
	return page(matched, limit, offset), len(matched), nil
}

func (r *fakeInvoiceRepo) Search(_ context.Context, businessID string, criteria repository.InvoiceSearchCriteria, limit, offset int) ([]*entity.Invoice, int, error) {
	var matched []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.BusinessID != businessID {
			continue
		}
		if criteria.Query != "" {
			q := strings.ToLower(criteria.Query)
			if !strings.Contains(strings.ToLower(inv.InvoiceNumber), q) &&
				!strings.Contains(strings.ToLower(inv.ClientName), q) &&
				!strings.Contains(strings.ToLower(inv.ClientEmail), q) {
				continue
			}
		}
		if len(criteria.Statuses) > 0 && !matchesStatuses(inv, criteria.Statuses) {
			continue
		}
		if criteria.MinTotal != nil && inv.TotalAmount().LessThan(*criteria.MinTotal) {
			continue
		}
		if criteria.MaxTotal != nil && inv.TotalAmount().GreaterThan(*criteria.MaxTotal) {
			continue
		}
		if len(criteria.Tags) > 0 && !containsAll(inv.Tags, criteria.Tags) {
			continue
		}
		matched = append(matched, inv)
	}
	return page(matched, limit, offset), len(matched), nil
}

func matchesStatuses(inv *entity.Invoice, statuses []entity.InvoiceStatus) bool {
	for _, s := range statuses {
		if s == entity.StatusOverdue {
			if inv.IsOverdue(testNow) {
				return true
			}
			continue
		}
		if inv.Status == s {
			return true
		}
	}
	return false
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func page(items []*entity.Invoice, limit, offset int) []*entity.Invoice {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (r *fakeInvoiceRepo) NextInvoiceNumber(_ context.Context, businessID, prefix string) (string, error) {
	key := businessID + "/" + prefix
	r.sequences[key]++
	return fmt.Sprintf("%s-%06d", prefix, r.sequences[key]), nil
}

func (r *fakeInvoiceRepo) HasDuplicateNumber(_ context.Context, businessID, number string) (bool, error) {
	for _, inv := range r.invoices {
		if inv.BusinessID == businessID && inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

// fakeTxRunner hands the callback the shared in-memory repository. There is
// no real transaction to roll back; tests assert on returned errors instead.
type fakeTxRunner struct {
	repo *fakeInvoiceRepo
}

func (r *fakeTxRunner) RunInvoice(_ context.Context, fn func(repository.InvoiceRepository) error) error {
	return fn(r.repo)
}

type fakeContactRepo struct {
	contacts map[string]*entity.Contact
}

var _ repository.ContactRepository = (*fakeContactRepo)(nil)

func newFakeContactRepo(contacts ...*entity.Contact) *fakeContactRepo {
	r := &fakeContactRepo{contacts: make(map[string]*entity.Contact)}
	for _, c := range contacts {
		r.contacts[c.ID] = c
	}
	return r
}

func (r *fakeContactRepo) Create(_ context.Context, c *entity.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.contacts[c.ID] = c
	return nil
}

func (r *fakeContactRepo) GetByID(_ context.Context, id string) (*entity.Contact, error) {
	return r.contacts[id], nil
}

func (r *fakeContactRepo) ListByBusiness(_ context.Context, businessID string, _, _ int) ([]*entity.Contact, error) {
	var out []*entity.Contact
	for _, c := range r.contacts {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) Update(_ context.Context, c *entity.Contact) error {
	r.contacts[c.ID] = c
	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id string) error {
	delete(r.contacts, id)
	return nil
}

// seedInvoice puts a sent invoice into the repo: one line of 2 x $100 with a
// 10% line discount and 8% tax plus a $50 fixed overall discount, total
// 144.40, due in 20 days.
func seedInvoice(repo *fakeInvoiceRepo, businessID string) *entity.Invoice {
	li, err := entity.NewLineItem("labor", dec("2"), dec("100"), entity.DiscountPercentage, dec("10"), dec("8"))
	if err != nil {
		panic(err)
	}
	sent := testNow.AddDate(0, 0, -5)
	inv := &entity.Invoice{
		ID:                   uuid.New().String(),
		BusinessID:           businessID,
		InvoiceNumber:        fmt.Sprintf("INV-%06d", len(repo.invoices)+1),
		Status:               entity.StatusSent,
		IssueDate:            testNow.AddDate(0, 0, -10),
		DueDate:              testNow.AddDate(0, 0, 20),
		SentDate:             &sent,
		ClientName:           "Acme Plumbing",
		Currency:             "USD",
		OverallDiscountType:  entity.DiscountFixed,
		OverallDiscountValue: dec("50"),
		LineItems:            []entity.LineItem{li},
		Terms:                entity.DefaultPaymentTerms(),
		CreatedAt:            testNow.AddDate(0, 0, -10),
		UpdatedAt:            testNow.AddDate(0, 0, -5),
		Version:              1,
	}
	if err := repo.Create(context.Background(), inv); err != nil {
		panic(err)
	}
	return inv
}

type fakeProjectRepo struct {
	projects map[string]*entity.Project
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	return r.projects[id], nil
}

type fakeJobRepo struct {
	jobs map[string]*entity.Job
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*entity.Job, error) {
	return r.jobs[id], nil
}
