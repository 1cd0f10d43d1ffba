package repository

import (
	"context"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

// ContactRepository is the persistence port for clients.
type ContactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	GetByID(ctx context.Context, id string) (*entity.Contact, error)
	ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entity.Contact, error)
	Update(ctx context.Context, contact *entity.Contact) error
	Delete(ctx context.Context, id string) error
}
