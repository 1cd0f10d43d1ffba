package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradeflow/fieldops-api/internal/application/dto"
	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

// Defaults are the business-level invoice defaults from configuration.
type Defaults struct {
	InvoicePrefix string
	NetDays       int
}

func (d Defaults) withFallbacks() Defaults {
	if d.InvoicePrefix == "" {
		d.InvoicePrefix = "INV"
	}
	if d.NetDays <= 0 {
		d.NetDays = 30
	}
	return d
}

// CreateInvoiceUseCase builds a draft invoice: snapshots the contact,
// validates cross-references, allocates the invoice number and persists the
// aggregate in one transaction.
type CreateInvoiceUseCase struct {
	txRunner    InvoiceTxRunner
	contactRepo repository.ContactRepository
	projectRepo repository.ProjectRepository
	jobRepo     repository.JobRepository
	defaults    Defaults
}

// NewCreateInvoiceUseCase wires the use case.
func NewCreateInvoiceUseCase(
	txRunner InvoiceTxRunner,
	contactRepo repository.ContactRepository,
	projectRepo repository.ProjectRepository,
	jobRepo repository.JobRepository,
	defaults Defaults,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		txRunner:    txRunner,
		contactRepo: contactRepo,
		projectRepo: projectRepo,
		jobRepo:     jobRepo,
		defaults:    defaults.withFallbacks(),
	}
}

// CreateInvoice creates a draft invoice for the business.
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, businessID, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if len(in.LineItems) == 0 {
		return nil, domain.Violation(domain.RuleEmptyLineItems, "an invoice needs at least one line item")
	}

	now := time.Now()

	// Client snapshot: copied once at creation, never a live reference.
	clientName, clientEmail := in.ClientName, in.ClientEmail
	clientPhone, clientAddress := in.ClientPhone, in.ClientAddress
	if in.ContactID != "" {
		contact, err := uc.contactRepo.GetByID(ctx, in.ContactID)
		if err != nil {
			return nil, err
		}
		if contact == nil || contact.BusinessID != businessID {
			return nil, fmt.Errorf("contact %s: %w", in.ContactID, domain.ErrNotFound)
		}
		if clientName == "" {
			clientName = contact.Name
		}
		if clientEmail == "" {
			clientEmail = contact.Email
		}
		if clientPhone == "" {
			clientPhone = contact.Phone
		}
		if clientAddress == "" {
			clientAddress = contact.Address
		}
	}
	if clientName == "" {
		return nil, fmt.Errorf("%w: client name or contact_id is required", domain.ErrInvalidInput)
	}

	if in.ProjectID != "" {
		project, err := uc.projectRepo.GetByID(ctx, in.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil || project.BusinessID != businessID {
			return nil, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrNotFound)
		}
	}
	if in.JobID != "" {
		job, err := uc.jobRepo.GetByID(ctx, in.JobID)
		if err != nil {
			return nil, err
		}
		if job == nil || job.BusinessID != businessID {
			return nil, fmt.Errorf("job %s: %w", in.JobID, domain.ErrNotFound)
		}
	}

	issueDate := now.Truncate(24 * time.Hour)
	if in.IssueDate != "" {
		d, err := parseDate(in.IssueDate)
		if err != nil {
			return nil, err
		}
		issueDate = d
	}

	terms := termsFromRequest(in.Terms)
	if in.Terms == nil {
		terms.NetDays = uc.defaults.NetDays
	}

	dueDate := terms.DueDateFrom(issueDate)
	if in.DueDate != "" {
		d, err := parseDate(in.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = d
	}

	taxType := entity.TaxType(in.TaxType)
	if taxType == "" {
		taxType = entity.TaxPercentage
	}
	discountType := entity.DiscountType(in.OverallDiscountType)
	if discountType == "" {
		discountType = entity.DiscountNone
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	items, err := lineItemsFromRequest(in.LineItems, in.TaxRate)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		BusinessID:    businessID,
		InvoiceNumber: in.InvoiceNumber,
		Status:        entity.StatusDraft,
		IssueDate:     issueDate,
		DueDate:       dueDate,

		ContactID:     in.ContactID,
		ClientName:    clientName,
		ClientEmail:   clientEmail,
		ClientPhone:   clientPhone,
		ClientAddress: clientAddress,

		Currency:             currency,
		TaxRate:              in.TaxRate,
		TaxType:              taxType,
		OverallDiscountType:  discountType,
		OverallDiscountValue: in.OverallDiscountValue,

		LineItems: items,
		Terms:     terms,

		EstimateID: in.EstimateID,
		ProjectID:  in.ProjectID,
		JobID:      in.JobID,

		Tags:          in.Tags,
		CustomFields:  in.CustomFields,
		InternalNotes: in.InternalNotes,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}

	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		if inv.InvoiceNumber == "" {
			prefix := in.Prefix
			if prefix == "" {
				prefix = uc.defaults.InvoicePrefix
			}
			number, err := invoiceRepo.NextInvoiceNumber(ctx, businessID, prefix)
			if err != nil {
				return err
			}
			inv.InvoiceNumber = number
		} else {
			// Advisory only: the unique constraint on
			// (business_id, invoice_number) is the real guard.
			dup, err := invoiceRepo.HasDuplicateNumber(ctx, businessID, inv.InvoiceNumber)
			if err != nil {
				return err
			}
			if dup {
				return domain.Violation(domain.RuleDuplicateNumber,
					"invoice number %s already exists", inv.InvoiceNumber)
			}
		}
		if err := inv.Validate(); err != nil {
			return err
		}
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.Violation(domain.RuleDuplicateNumber,
					"invoice number %s already exists", inv.InvoiceNumber)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(inv, now), nil
}
