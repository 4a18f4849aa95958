package repository

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ActivityRepository stores immutable ticket audit entries.
type ActivityRepository interface {
	WithTx(q Querier) ActivityRepository
	Create(ctx context.Context, activity *domain.TicketActivity) error
	ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.TicketActivity, error)
}

type activityRepository struct {
	db Querier
}

// NewActivityRepository builds the repository.
func NewActivityRepository(db Querier) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) WithTx(q Querier) ActivityRepository {
	return &activityRepository{db: q}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.TicketActivity) error {
	const query = `
        INSERT INTO ticket_activities (ticket_id, user_id, action, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		activity.TicketID,
		activity.UserID,
		activity.Action,
		activity.Description,
	).Scan(&activity.ID, &activity.CreatedAt)
}

// ListByTicket returns the newest entries first, capped at limit.
func (r *activityRepository) ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.TicketActivity, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, ticket_id, user_id, action, description, created_at
        FROM ticket_activities WHERE ticket_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketActivity
	for rows.Next() {
		var activity domain.TicketActivity
		if err := rows.Scan(
			&activity.ID,
			&activity.TicketID,
			&activity.UserID,
			&activity.Action,
			&activity.Description,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
