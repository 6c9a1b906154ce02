package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
)

// LifecycleEventRepository stores the append-only audit trail. There is no
// update or delete by design: corrections are appended as compensating events.
type LifecycleEventRepository interface {
	Append(ctx context.Context, event *domain.LifecycleEvent) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.LifecycleEvent, error)
}

type lifecycleEventRepository struct {
	pool *pgxpool.Pool
}

// NewLifecycleEventRepository builds the repository.
func NewLifecycleEventRepository(pool *pgxpool.Pool) LifecycleEventRepository {
	return &lifecycleEventRepository{pool: pool}
}

func (r *lifecycleEventRepository) Append(ctx context.Context, event *domain.LifecycleEvent) error {
	return appendEvent(ctx, r.pool, event)
}

// eventWriter is satisfied by both pgxpool.Pool and pgx.Tx, so the same
// insert serves standalone appends and the orchestrator's transactional path.
type eventWriter interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func appendEvent(ctx context.Context, db eventWriter, event *domain.LifecycleEvent) error {
	const query = `
        INSERT INTO lifecycle_events (request_id, event_type, actor_type, actor_id, notes, data)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return db.QueryRow(ctx, query,
		event.RequestID,
		event.EventType,
		event.Actor.Type,
		event.Actor.ID,
		event.Notes,
		event.Data,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *lifecycleEventRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.LifecycleEvent, error) {
	const query = `
        SELECT id, request_id, event_type, actor_type, actor_id, notes, data, created_at
        FROM lifecycle_events WHERE request_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LifecycleEvent
	for rows.Next() {
		var event domain.LifecycleEvent
		if err := rows.Scan(
			&event.ID,
			&event.RequestID,
			&event.EventType,
			&event.Actor.Type,
			&event.Actor.ID,
			&event.Notes,
			&event.Data,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
