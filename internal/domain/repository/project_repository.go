package repository

import (
	"context"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

// ProjectRepository: the billing engine only needs lookups to validate
// references, so the port stays read-only.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Project, error)
}
