package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CategoryCount is one row of the category rollup.
type CategoryCount struct {
	Category domain.TicketCategory `json:"category"`
	Count    int                   `json:"count"`
}

// PriorityCount is one row of the priority rollup.
type PriorityCount struct {
	Priority domain.TicketPriority `json:"priority"`
	Count    int                   `json:"count"`
}

// ActivityFeedEntry is a system-wide activity joined with its actor profile
// and the parent ticket's id and title.
type ActivityFeedEntry struct {
	Activity domain.TicketActivity
	Actor    domain.Profile
	TicketID string
	Title    string
}

// AnalyticsRepository exposes the read-only aggregate queries behind the
// admin analytics snapshot.
type AnalyticsRepository interface {
	CountTickets(ctx context.Context, statuses []domain.TicketStatus) (int, error)
	TicketsByCategory(ctx context.Context) ([]CategoryCount, error)
	TicketsByPriority(ctx context.Context) ([]PriorityCount, error)
	FirstResponseDelays(ctx context.Context) ([]time.Duration, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityFeedEntry, error)
}

type analyticsRepository struct {
	db Querier
}

// NewAnalyticsRepository builds the repository.
func NewAnalyticsRepository(db Querier) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// CountTickets counts tickets, optionally restricted to a status set. An
// empty set counts everything.
func (r *analyticsRepository) CountTickets(ctx context.Context, statuses []domain.TicketStatus) (int, error) {
	query := "SELECT COUNT(*) FROM tickets"
	args := []any{}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" WHERE status IN (%s)", strings.Join(placeholders, ","))
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *analyticsRepository) TicketsByCategory(ctx context.Context) ([]CategoryCount, error) {
	const query = `
        SELECT category, COUNT(*) FROM tickets GROUP BY category ORDER BY category`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryCount
	for rows.Next() {
		var row CategoryCount
		if err := rows.Scan(&row.Category, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) TicketsByPriority(ctx context.Context) ([]PriorityCount, error) {
	const query = `
        SELECT priority, COUNT(*) FROM tickets GROUP BY priority ORDER BY priority`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PriorityCount
	for rows.Next() {
		var row PriorityCount
		if err := rows.Scan(&row.Priority, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// FirstResponseDelays returns, for every ticket with at least one comment,
// the time between ticket creation and its earliest comment. Tickets without
// comments are absent from the result.
func (r *analyticsRepository) FirstResponseDelays(ctx context.Context) ([]time.Duration, error) {
	const query = `
        SELECT t.created_at, MIN(c.created_at)
        FROM tickets t
        JOIN comments c ON c.ticket_id = t.id
        GROUP BY t.id, t.created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []time.Duration
	for rows.Next() {
		var created, firstComment time.Time
		if err := rows.Scan(&created, &firstComment); err != nil {
			return nil, err
		}
		result = append(result, firstComment.Sub(created))
	}
	return result, rows.Err()
}

func (r *analyticsRepository) RecentActivity(ctx context.Context, limit int) ([]ActivityFeedEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT a.id, a.ticket_id, a.user_id, a.action, a.description, a.created_at,
               u.id, u.name, u.email, u.image, u.role,
               t.id, t.title
        FROM ticket_activities a
        JOIN users u ON u.id = a.user_id
        JOIN tickets t ON t.id = a.ticket_id
        ORDER BY a.created_at DESC
        LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ActivityFeedEntry
	for rows.Next() {
		var entry ActivityFeedEntry
		if err := rows.Scan(
			&entry.Activity.ID,
			&entry.Activity.TicketID,
			&entry.Activity.UserID,
			&entry.Activity.Action,
			&entry.Activity.Description,
			&entry.Activity.CreatedAt,
			&entry.Actor.ID,
			&entry.Actor.Name,
			&entry.Actor.Email,
			&entry.Actor.Image,
			&entry.Actor.Role,
			&entry.TicketID,
			&entry.Title,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
