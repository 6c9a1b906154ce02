package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
)

// RequestFilter captures listing parameters for staff views.
type RequestFilter struct {
	CustomerID    *string
	AssignedTo    *string
	ServiceKind   *string
	Statuses      []domain.Status
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time
	Limit         int
	Offset        int
}

// RequestRepository encapsulates service request persistence, including the
// transactional guarantees the lifecycle orchestrator relies on: the status
// write and its audit event either both commit or neither does, and the
// status write is guarded by the status observed at read time.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.ServiceRequest, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
	ListOpen(ctx context.Context) ([]domain.ServiceRequest, error)
	ApplyTransition(ctx context.Context, requestID string, from, to domain.Status, submittedAt *time.Time, event *domain.LifecycleEvent) error
	UpdateAssignee(ctx context.Context, requestID string, assignee *string, event *domain.LifecycleEvent) error
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the Postgres-backed repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, order_number, customer_id, service_kind, title, status,
               assigned_to, payload, submitted_at, created_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (order_number, customer_id, service_kind, title, status, payload)
        VALUES ('REQ-' || LPAD(nextval('request_order_seq')::text, 6, '0'), $1, $2, $3, $4, $5)
        RETURNING id, order_number, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.CustomerID,
		request.ServiceKind,
		request.Title,
		request.Status,
		request.Payload,
	).Scan(&request.ID, &request.OrderNumber, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_requests WHERE id=$1`, requestColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *requestRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_requests WHERE order_number=$1`, requestColumns)
	return r.fetchSingle(ctx, query, orderNumber)
}

func (r *requestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ServiceRequest, error) {
	var request domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&request.ID,
		&request.OrderNumber,
		&request.CustomerID,
		&request.ServiceKind,
		&request.Title,
		&request.Status,
		&request.AssignedTo,
		&request.Payload,
		&request.SubmittedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	base := fmt.Sprintf(`SELECT %s FROM service_requests`, requestColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.ServiceKind != nil {
		args = append(args, *filter.ServiceKind)
		clauses = append(clauses, fmt.Sprintf("service_kind=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SubmittedFrom != nil {
		args = append(args, *filter.SubmittedFrom)
		clauses = append(clauses, fmt.Sprintf("submitted_at >= $%d", len(args)))
	}
	if filter.SubmittedTo != nil {
		args = append(args, *filter.SubmittedTo)
		clauses = append(clauses, fmt.Sprintf("submitted_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) ListOpen(ctx context.Context) ([]domain.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_requests
        WHERE submitted_at IS NOT NULL
          AND status NOT IN ('completed','archived','rejected','cancelled')
        ORDER BY submitted_at ASC`, requestColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// ApplyTransition commits the status write and its audit event as one unit.
// The UPDATE is guarded by the status the caller read; zero affected rows
// means another writer got there first.
func (r *requestRepository) ApplyTransition(ctx context.Context, requestID string, from, to domain.Status, submittedAt *time.Time, event *domain.LifecycleEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE service_requests
        SET status=$1, submitted_at=COALESCE(submitted_at, $2), updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := tx.Exec(ctx, update, to, submittedAt, requestID, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM service_requests WHERE id=$1)`, requestID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrRequestNotFound
		}
		return domain.ErrConcurrentModification
	}

	if err := appendEvent(ctx, tx, event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateAssignee writes the assignee and its audit event as one unit. The
// status field is untouched; assignment does not pass through the state
// machine.
func (r *requestRepository) UpdateAssignee(ctx context.Context, requestID string, assignee *string, event *domain.LifecycleEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE service_requests SET assigned_to=$1, updated_at=NOW() WHERE id=$2`, assignee, requestID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	if err := appendEvent(ctx, tx, event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for rows.Next() {
		var request domain.ServiceRequest
		if err := rows.Scan(
			&request.ID,
			&request.OrderNumber,
			&request.CustomerID,
			&request.ServiceKind,
			&request.Title,
			&request.Status,
			&request.AssignedTo,
			&request.Payload,
			&request.SubmittedAt,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
