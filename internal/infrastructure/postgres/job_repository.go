package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo is read-only: invoicing only validates job references.
type JobRepo struct {
	q Querier
}

func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

func (r *JobRepo) GetByID(ctx context.Context, id string) (*entity.Job, error) {
	query := `
		SELECT id, business_id, project_id, contact_id, title, status, scheduled_at, created_at, updated_at
		FROM jobs WHERE id = $1`
	var j entity.Job
	var projectID, contactID *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&j.ID, &j.BusinessID, &projectID, &contactID, &j.Title, &j.Status, &j.ScheduledAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	j.ProjectID = derefStr(projectID)
	j.ContactID = derefStr(contactID)
	return &j, nil
}
