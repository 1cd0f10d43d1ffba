package repository

import (
	"context"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

// UserRepository is the persistence port for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmailAndBusiness(ctx context.Context, email, businessID string) (*entity.User, error)
}
