package repository

import (
	"context"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

// JobRepository: read-only port, invoices only validate job references.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Job, error)
}
