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

// ContactUseCase manages the clients invoices are issued to.
type ContactUseCase struct {
	repo repository.ContactRepository
}

// NewContactUseCase wires the use case.
func NewContactUseCase(repo repository.ContactRepository) *ContactUseCase {
	return &ContactUseCase{repo: repo}
}

// Create registers a new contact.
func (uc *ContactUseCase) Create(ctx context.Context, businessID string, in dto.CreateContactRequest) (*dto.ContactResponse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: contact name is required", domain.ErrInvalidInput)
	}
	now := time.Now()
	contact := &entity.Contact{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return toContactResponse(contact), nil
}

// GetByID returns a contact of the business.
func (uc *ContactUseCase) GetByID(ctx context.Context, businessID, id string) (*dto.ContactResponse, error) {
	contact, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact == nil || contact.BusinessID != businessID {
		return nil, fmt.Errorf("contact %s: %w", id, domain.ErrNotFound)
	}
	return toContactResponse(contact), nil
}

// List returns a page of the business's contacts.
func (uc *ContactUseCase) List(ctx context.Context, businessID string, page dto.PageRequest) ([]*dto.ContactResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByBusiness(ctx, businessID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ContactResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toContactResponse(c))
	}
	return out, nil
}

func toContactResponse(c *entity.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:         c.ID,
		BusinessID: c.BusinessID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
	}
}
