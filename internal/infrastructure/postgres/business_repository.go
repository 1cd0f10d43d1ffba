package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

var _ repository.BusinessRepository = (*BusinessRepo)(nil)

// BusinessRepo persists tenants.
type BusinessRepo struct {
	q Querier
}

func NewBusinessRepository(q Querier) *BusinessRepo {
	return &BusinessRepo{q: q}
}

func (r *BusinessRepo) Create(ctx context.Context, b *entity.Business) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO businesses (id, name, tax_id, email, phone, address, currency, invoice_prefix, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.Name, nullIfEmpty(b.TaxID), nullIfEmpty(b.Email), nullIfEmpty(b.Phone), nullIfEmpty(b.Address),
		b.Currency, b.InvoicePrefix, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	query := `
		SELECT id, name, tax_id, email, phone, address, currency, invoice_prefix, created_at, updated_at
		FROM businesses WHERE id = $1`
	b, err := scanBusiness(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

func (r *BusinessRepo) List(ctx context.Context, limit, offset int) ([]*entity.Business, error) {
	query := `
		SELECT id, name, tax_id, email, phone, address, currency, invoice_prefix, created_at, updated_at
		FROM businesses ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var businesses []*entity.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

func scanBusiness(row pgx.Row) (*entity.Business, error) {
	var b entity.Business
	var taxID, email, phone, address *string
	err := row.Scan(&b.ID, &b.Name, &taxID, &email, &phone, &address,
		&b.Currency, &b.InvoicePrefix, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.TaxID = derefStr(taxID)
	b.Email = derefStr(email)
	b.Phone = derefStr(phone)
	b.Address = derefStr(address)
	return &b, nil
}
