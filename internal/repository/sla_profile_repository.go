package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/sla"
)

// ErrProfileNotFound signals a service kind without a configured SLA profile.
var ErrProfileNotFound = errors.New("sla profile not found")

// SLAProfileRepository reads per-service-kind SLA configuration.
type SLAProfileRepository interface {
	GetByServiceKind(ctx context.Context, serviceKind string) (*sla.Profile, error)
	List(ctx context.Context) ([]sla.Profile, error)
}

type slaProfileRepository struct {
	pool *pgxpool.Pool
}

// NewSLAProfileRepository builds the Postgres-backed repository.
func NewSLAProfileRepository(pool *pgxpool.Pool) SLAProfileRepository {
	return &slaProfileRepository{pool: pool}
}

func (r *slaProfileRepository) GetByServiceKind(ctx context.Context, serviceKind string) (*sla.Profile, error) {
	const query = `
        SELECT service_kind, target_hours, warning_threshold_percent
        FROM sla_profiles WHERE service_kind=$1`
	var profile sla.Profile
	if err := r.pool.QueryRow(ctx, query, serviceKind).Scan(
		&profile.ServiceKind,
		&profile.TargetHours,
		&profile.WarningThresholdPercent,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *slaProfileRepository) List(ctx context.Context) ([]sla.Profile, error) {
	const query = `
        SELECT service_kind, target_hours, warning_threshold_percent
        FROM sla_profiles ORDER BY service_kind`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sla.Profile
	for rows.Next() {
		var profile sla.Profile
		if err := rows.Scan(&profile.ServiceKind, &profile.TargetHours, &profile.WarningThresholdPercent); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
