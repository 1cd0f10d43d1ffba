package billing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeflow/fieldops-api/internal/application/billing"
	"github.com/tradeflow/fieldops-api/internal/application/dto"
	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

const (
	testBusinessID = "biz-1"
	testUserID     = "user-1"
)

func newCreateUseCase(repo *fakeInvoiceRepo, contacts *fakeContactRepo) *billing.CreateInvoiceUseCase {
	return billing.NewCreateInvoiceUseCase(
		&fakeTxRunner{repo: repo},
		contacts,
		&fakeProjectRepo{projects: map[string]*entity.Project{
			"proj-1": {ID: "proj-1", BusinessID: testBusinessID, Name: "Bathroom remodel"},
			"proj-2": {ID: "proj-2", BusinessID: "other-biz", Name: "Not ours"},
		}},
		&fakeJobRepo{jobs: map[string]*entity.Job{}},
		billing.Defaults{InvoicePrefix: "INV", NetDays: 30},
	)
}

func basicCreateRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientName: "Acme Plumbing",
		LineItems: []dto.LineItemRequest{
			{
				Description:   "labor",
				Quantity:      dec("2"),
				UnitPrice:     dec("100"),
				DiscountType:  "percentage",
				DiscountValue: dec("10"),
			},
		},
		TaxRate:              dec("8"),
		OverallDiscountType:  "fixed",
		OverallDiscountValue: dec("50"),
	}
}

func TestCreateInvoice_AllocatesNumberAndComputesTotals(t *testing.T) {
	repo := newFakeInvoiceRepo()
	uc := newCreateUseCase(repo, newFakeContactRepo())

	out, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, basicCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", out.InvoiceNumber)
	assert.Equal(t, string(entity.StatusDraft), out.Status)
	assert.Equal(t, testUserID, out.CreatedBy)
	assert.Equal(t, int64(1), out.Version)

	// Line inherits the header tax rate; totals follow the fixed rollup
	// order: 200 - 20 line discount, 8% tax on 180, minus 50 overall.
	require.Len(t, out.LineItems, 1)
	assert.True(t, dec("8").Equal(out.LineItems[0].TaxRate))
	assert.True(t, dec("144.40").Equal(out.Summary.TotalAmount))
	assert.True(t, dec("144.40").Equal(out.BalanceDue))

	// Numbers keep counting per business and prefix.
	out2, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, basicCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", out2.InvoiceNumber)
}

func TestCreateInvoice_SnapshotsContact(t *testing.T) {
	contacts := newFakeContactRepo(&entity.Contact{
		ID:         "contact-1",
		BusinessID: testBusinessID,
		Name:       "Jordan Reyes",
		Email:      "jordan@example.com",
		Phone:      "555-0100",
	})
	uc := newCreateUseCase(newFakeInvoiceRepo(), contacts)

	in := basicCreateRequest()
	in.ClientName = ""
	in.ContactID = "contact-1"

	out, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Reyes", out.ClientName)
	assert.Equal(t, "jordan@example.com", out.ClientEmail)
	assert.Equal(t, "contact-1", out.ContactID)
}

func TestCreateInvoice_ContactFromAnotherBusinessIsNotFound(t *testing.T) {
	contacts := newFakeContactRepo(&entity.Contact{
		ID:         "contact-9",
		BusinessID: "other-biz",
		Name:       "Someone Else",
	})
	uc := newCreateUseCase(newFakeInvoiceRepo(), contacts)

	in := basicCreateRequest()
	in.ContactID = "contact-9"

	_, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoice_ProjectOwnershipChecked(t *testing.T) {
	uc := newCreateUseCase(newFakeInvoiceRepo(), newFakeContactRepo())

	in := basicCreateRequest()
	in.ProjectID = "proj-1"
	_, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	assert.NoError(t, err)

	in.ProjectID = "proj-2"
	_, err = uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoice_RequiresLineItems(t *testing.T) {
	uc := newCreateUseCase(newFakeInvoiceRepo(), newFakeContactRepo())

	in := basicCreateRequest()
	in.LineItems = nil

	_, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	assert.True(t, domain.IsRule(err, domain.RuleEmptyLineItems))
}

func TestCreateInvoice_RequiresClientNameOrContact(t *testing.T) {
	uc := newCreateUseCase(newFakeInvoiceRepo(), newFakeContactRepo())

	in := basicCreateRequest()
	in.ClientName = ""

	_, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateInvoice_ExplicitNumberDuplicateRejected(t *testing.T) {
	repo := newFakeInvoiceRepo()
	uc := newCreateUseCase(repo, newFakeContactRepo())

	in := basicCreateRequest()
	in.InvoiceNumber = "CUSTOM-42"
	_, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	require.NoError(t, err)

	_, err = uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	assert.True(t, domain.IsRule(err, domain.RuleDuplicateNumber))
}

func TestCreateInvoice_DueDateFromTerms(t *testing.T) {
	uc := newCreateUseCase(newFakeInvoiceRepo(), newFakeContactRepo())

	in := basicCreateRequest()
	in.IssueDate = "2025-03-01"
	in.Terms = &dto.PaymentTermsRequest{NetDays: 15}

	out, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", out.IssueDate)
	assert.Equal(t, "2025-03-16", out.DueDate)
}

func TestCreateInvoice_ExplicitDueDateWins(t *testing.T) {
	uc := newCreateUseCase(newFakeInvoiceRepo(), newFakeContactRepo())

	in := basicCreateRequest()
	in.IssueDate = "2025-03-01"
	in.DueDate = "2025-03-10"

	out, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", out.DueDate)
}

func TestCreateInvoice_RejectsBadDate(t *testing.T) {
	uc := newCreateUseCase(newFakeInvoiceRepo(), newFakeContactRepo())

	in := basicCreateRequest()
	in.IssueDate = "03/01/2025"

	_, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateInvoice_LineTaxRateOverridesHeader(t *testing.T) {
	uc := newCreateUseCase(newFakeInvoiceRepo(), newFakeContactRepo())

	zero := decimal.Zero
	in := basicCreateRequest()
	in.LineItems[0].TaxRate = &zero

	out, err := uc.CreateInvoice(context.Background(), testBusinessID, testUserID, in)
	require.NoError(t, err)
	assert.True(t, out.LineItems[0].TaxRate.IsZero())
	assert.True(t, out.Summary.TaxAmount.IsZero())
}
