package repository

import (
	"context"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

// BusinessRepository is the persistence port for tenants.
type BusinessRepository interface {
	Create(ctx context.Context, business *entity.Business) error
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Business, error)
}
