package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// In-memory repository doubles. WithTx returns the receiver so transactional
// code paths exercise the same store.

type fakeTxRunner struct{}

func (fakeTxRunner) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	return fn(nil)
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) WithTx(repository.Querier) repository.TicketRepository { return r }

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, t := range r.tickets {
		if filter.CreatedByID != nil && t.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.ParticipantID != nil {
			id := *filter.ParticipantID
			if t.CreatedByID != id && (t.AssignedToID == nil || *t.AssignedToID != id) {
				continue
			}
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		if filter.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) &&
				!strings.Contains(strings.ToLower(t.ID), needle) {
				continue
			}
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) Touch(_ context.Context, id string) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo { return &fakeCommentRepo{} }

func (r *fakeCommentRepo) WithTx(repository.Querier) repository.CommentRepository { return r }

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.nextID++
	comment.ID = fmt.Sprintf("comment-%d", r.nextID)
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, c := range r.comments {
		if c.TicketID == ticketID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeCommentRepo) LatestByTicket(_ context.Context, ticketID string) (*domain.Comment, error) {
	var latest *domain.Comment
	for i := range r.comments {
		c := r.comments[i]
		if c.TicketID != ticketID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = &c
		}
	}
	return latest, nil
}

type fakeActivityRepo struct {
	activities []domain.TicketActivity
	nextID     int
}

func newFakeActivityRepo() *fakeActivityRepo { return &fakeActivityRepo{} }

func (r *fakeActivityRepo) WithTx(repository.Querier) repository.ActivityRepository { return r }

func (r *fakeActivityRepo) Create(_ context.Context, activity *domain.TicketActivity) error {
	r.nextID++
	activity.ID = fmt.Sprintf("activity-%d", r.nextID)
	activity.CreatedAt = time.Now()
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *fakeActivityRepo) ListByTicket(_ context.Context, ticketID string, limit int) ([]domain.TicketActivity, error) {
	if limit <= 0 {
		limit = 20
	}
	var result []domain.TicketActivity
	for i := len(r.activities) - 1; i >= 0 && len(result) < limit; i-- {
		if r.activities[i].TicketID == ticketID {
			result = append(result, r.activities[i])
		}
	}
	return result, nil
}

func (r *fakeActivityRepo) forTicket(ticketID string) []domain.TicketActivity {
	var result []domain.TicketActivity
	for _, a := range r.activities {
		if a.TicketID == ticketID {
			result = append(result, a)
		}
	}
	return result
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*domain.User{}}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) ProfilesByIDs(_ context.Context, ids []string) (map[string]domain.Profile, error) {
	result := make(map[string]domain.Profile, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result[id] = u.Profile()
		}
	}
	return result, nil
}

type fakeAnalyticsRepo struct {
	total      int
	open       int
	closed     int
	byCategory []repository.CategoryCount
	byPriority []repository.PriorityCount
	delays     []time.Duration
	recent     []repository.ActivityFeedEntry
}

func (r *fakeAnalyticsRepo) CountTickets(_ context.Context, statuses []domain.TicketStatus) (int, error) {
	if len(statuses) == 0 {
		return r.total, nil
	}
	for _, status := range statuses {
		if status == domain.TicketStatusOpen {
			return r.open, nil
		}
	}
	return r.closed, nil
}

func (r *fakeAnalyticsRepo) TicketsByCategory(context.Context) ([]repository.CategoryCount, error) {
	return r.byCategory, nil
}

func (r *fakeAnalyticsRepo) TicketsByPriority(context.Context) ([]repository.PriorityCount, error) {
	return r.byPriority, nil
}

func (r *fakeAnalyticsRepo) FirstResponseDelays(context.Context) ([]time.Duration, error) {
	return r.delays, nil
}

func (r *fakeAnalyticsRepo) RecentActivity(_ context.Context, limit int) ([]repository.ActivityFeedEntry, error) {
	if len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

// fixture wires the ticket and comment services against the fakes with a few
// seeded users.
type fixture struct {
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	activities *fakeActivityRepo
	users      *fakeUserRepo

	ticketSvc  *TicketService
	commentSvc *CommentService
}

func newFixture() *fixture {
	f := &fixture{
		tickets:    newFakeTicketRepo(),
		comments:   newFakeCommentRepo(),
		activities: newFakeActivityRepo(),
		users: newFakeUserRepo(
			domain.User{ID: "customer-1", Name: "Casey", Email: "casey@example.com", Role: domain.RoleCustomer},
			domain.User{ID: "customer-2", Name: "Drew", Email: "drew@example.com", Role: domain.RoleCustomer},
			domain.User{ID: "agent-1", Name: "Alex", Email: "alex@example.com", Role: domain.RoleAgent},
			domain.User{ID: "admin-1", Name: "Avery", Email: "avery@example.com", Role: domain.RoleAdmin},
		),
	}
	f.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:   f.tickets,
		CommentRepo:  f.comments,
		ActivityRepo: f.activities,
		UserRepo:     f.users,
		Tx:           fakeTxRunner{},
	})
	f.commentSvc = NewCommentService(CommentDependencies{
		TicketRepo:   f.tickets,
		CommentRepo:  f.comments,
		ActivityRepo: f.activities,
		UserRepo:     f.users,
		Tx:           fakeTxRunner{},
	})
	return f
}
