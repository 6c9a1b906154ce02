package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
)

// ServiceKindRepository reads the service catalog.
type ServiceKindRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.ServiceKind, error)
	ListActive(ctx context.Context) ([]domain.ServiceKind, error)
}

type serviceKindRepository struct {
	pool *pgxpool.Pool
}

// NewServiceKindRepository returns a Postgres-backed implementation.
func NewServiceKindRepository(pool *pgxpool.Pool) ServiceKindRepository {
	return &serviceKindRepository{pool: pool}
}

func (r *serviceKindRepository) GetByCode(ctx context.Context, code string) (*domain.ServiceKind, error) {
	const query = `
        SELECT id, code, name, description, status, created_at, updated_at
        FROM service_kinds WHERE code=$1`
	var kind domain.ServiceKind
	if err := r.pool.QueryRow(ctx, query, code).Scan(
		&kind.ID,
		&kind.Code,
		&kind.Name,
		&kind.Description,
		&kind.Status,
		&kind.CreatedAt,
		&kind.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &kind, nil
}

func (r *serviceKindRepository) ListActive(ctx context.Context) ([]domain.ServiceKind, error) {
	const query = `
        SELECT id, code, name, description, status, created_at, updated_at
        FROM service_kinds WHERE status='active' ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceKind
	for rows.Next() {
		var kind domain.ServiceKind
		if err := rows.Scan(
			&kind.ID,
			&kind.Code,
			&kind.Name,
			&kind.Description,
			&kind.Status,
			&kind.CreatedAt,
			&kind.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, kind)
	}
	return result, rows.Err()
}
