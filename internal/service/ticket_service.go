package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// TicketService coordinates the ticket lifecycle: creation, enumeration,
// field updates with audit-trail appends, and deletion.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	activities repository.ActivityRepository
	users      repository.UserRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	ActivityRepo repository.ActivityRepository
	UserRepo     repository.UserRepository
	Tx           repository.TxRunner
	Dispatcher   events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		activities: deps.ActivityRepo,
		users:      deps.UserRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes the ticket creation payload. CreatedByID is
// always taken from the principal, never from the payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// AssigneePatch distinguishes "leave assignment alone" (Set false) from
// "assign to Value" and "unassign" (Set true, Value nil).
type AssigneePatch struct {
	Set   bool
	Value *string
}

// TicketPatch carries optional field updates; nil means the field is absent
// from the request.
type TicketPatch struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *domain.TicketCategory
	Title       *string
	Description *string
	Assignee    AssigneePatch
}

// ListFilter narrows ticket enumeration. All fields are optional and combine
// as an AND; Search matches title, description or id case-insensitively.
type ListFilter struct {
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	Category     *domain.TicketCategory
	AssignedToID *string
	Search       string
	Limit        int
	Offset       int
}

// Create validates and persists a new ticket in status open, appending the
// creation activity.
func (s *TicketService) Create(ctx context.Context, principal authz.Principal, input TicketCreateInput) (*TicketView, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.Category == "" {
		return nil, apperrors.NewValidationError("title, description, category required", nil)
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    input.Category,
		CreatedByID: principal.ID,
	}

	err := s.tx.InTx(ctx, func(q repository.Querier) error {
		tickets := s.tickets.WithTx(q)
		activities := s.activities.WithTx(q)

		if err := tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return activities.Create(ctx, &domain.TicketActivity{
			TicketID:    ticket.ID,
			UserID:      principal.ID,
			Action:      domain.ActionCreated,
			Description: fmt.Sprintf("Ticket created: %s", ticket.Title),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: principal.ID, Role: principal.Role},
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})

	return s.ticketView(ctx, ticket, false)
}

// Get returns a single ticket with its comment thread and recent activities.
// Existence is checked before permission: a missing id reports not found to
// every caller.
func (s *TicketService) Get(ctx context.Context, principal authz.Principal, id string) (*TicketDetail, error) {
	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Allows(principal, authz.CapabilityView, ticket) {
		return nil, apperrors.NewForbidden("no access to this ticket")
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByTicket(ctx, ticket.ID, 20)
	if err != nil {
		return nil, err
	}

	ids := []string{ticket.CreatedByID}
	if ticket.AssignedToID != nil {
		ids = append(ids, *ticket.AssignedToID)
	}
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	for _, a := range activities {
		ids = append(ids, a.UserID)
	}
	profiles, err := s.users.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	detail := &TicketDetail{
		TicketView: assembleView(ticket, profiles),
		Comments:   make([]CommentView, 0, len(comments)),
		Activities: make([]ActivityView, 0, len(activities)),
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, CommentView{Comment: c, User: profiles[c.UserID]})
	}
	for _, a := range activities {
		detail.Activities = append(detail.Activities, ActivityView{Activity: a, User: profiles[a.UserID]})
	}
	return detail, nil
}

// List enumerates tickets within the principal's scope, newest first, each
// with its latest comment for preview.
func (s *TicketService) List(ctx context.Context, principal authz.Principal, filter ListFilter) ([]TicketView, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *filter.Status})
	}
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *filter.Priority})
	}
	if filter.Category != nil && !filter.Category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": *filter.Category})
	}

	repoFilter := repository.TicketFilter{
		Status:       filter.Status,
		Priority:     filter.Priority,
		Category:     filter.Category,
		AssignedToID: filter.AssignedToID,
		Search:       filter.Search,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	scope := authz.ScopeFor(principal)
	repoFilter.CreatedByID = scope.CreatedByID
	repoFilter.ParticipantID = scope.ParticipantID

	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	lastComments := make(map[string]*domain.Comment, len(tickets))
	ids := make([]string, 0, len(tickets)*2)
	for i := range tickets {
		ids = append(ids, tickets[i].CreatedByID)
		if tickets[i].AssignedToID != nil {
			ids = append(ids, *tickets[i].AssignedToID)
		}
		last, err := s.comments.LatestByTicket(ctx, tickets[i].ID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			lastComments[tickets[i].ID] = last
			ids = append(ids, last.UserID)
		}
	}
	profiles, err := s.users.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		view := assembleView(&tickets[i], profiles)
		if last := lastComments[tickets[i].ID]; last != nil {
			view.LastComment = &CommentView{Comment: *last, User: profiles[last.UserID]}
		}
		views = append(views, view)
	}
	return views, nil
}

// Update applies a patch to a ticket. Each changed field appends exactly one
// activity; a patch that changes nothing is a successful no-op. The ticket
// row and all activity rows are written in one transaction, ticket first.
func (s *TicketService) Update(ctx context.Context, principal authz.Principal, id string, patch TicketPatch) (*TicketView, error) {
	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Allows(principal, authz.CapabilityEditFields, ticket) {
		return nil, apperrors.NewForbidden("no access to this ticket")
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	canAssign := authz.Allows(principal, authz.CapabilityAssign, ticket)
	changes := buildChanges(ticket, patch, canAssign)
	if len(changes) == 0 {
		return s.ticketView(ctx, ticket, true)
	}

	now := time.Now()
	for _, change := range changes {
		change.apply(ticket, now)
	}
	ticket.UpdatedAt = now

	err = s.tx.InTx(ctx, func(q repository.Querier) error {
		tickets := s.tickets.WithTx(q)
		activities := s.activities.WithTx(q)

		if err := tickets.Update(ctx, ticket); err != nil {
			return err
		}
		for _, change := range changes {
			entry := &domain.TicketActivity{
				TicketID:    ticket.ID,
				UserID:      principal.ID,
				Action:      domain.ActionUpdated,
				Description: change.describe(),
			}
			if err := activities.Create(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	descriptions := make([]string, 0, len(changes))
	var assigned *assigneeChange
	for _, change := range changes {
		descriptions = append(descriptions, change.describe())
		if ac, ok := change.(assigneeChange); ok {
			assigned = &ac
		}
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: principal.ID, Role: principal.Role},
		Payload:  events.TicketUpdatedPayload{Changes: descriptions},
	})
	if assigned != nil {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    events.Actor{UserID: principal.ID, Role: principal.Role},
			Payload:  events.TicketAssignedPayload{AssignedToID: assigned.to},
		})
	}

	return s.ticketView(ctx, ticket, true)
}

// Delete hard-deletes a ticket; comments and activities cascade away with
// it. The role is checked before the ticket is looked up, so non-admins get
// a forbidden answer regardless of the id.
func (s *TicketService) Delete(ctx context.Context, principal authz.Principal, id string) error {
	if !authz.CanDelete(principal.Role) {
		return apperrors.NewForbidden("admin role required")
	}
	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.InTx(ctx, func(q repository.Querier) error {
		return s.tickets.WithTx(q).Delete(ctx, ticket.ID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: principal.ID, Role: principal.Role},
	})
	return nil
}

// buildChanges diffs the patch against the current ticket. Absent fields and
// values equal to the current ones produce no change. Assignment changes
// from callers without the assign capability are dropped, not rejected.
func buildChanges(t *domain.Ticket, patch TicketPatch, canAssign bool) []fieldChange {
	var changes []fieldChange

	if patch.Status != nil && *patch.Status != t.Status {
		changes = append(changes, statusChange{from: t.Status, to: *patch.Status})
	}
	if patch.Priority != nil && *patch.Priority != t.Priority {
		changes = append(changes, priorityChange{from: t.Priority, to: *patch.Priority})
	}
	if patch.Category != nil && *patch.Category != t.Category {
		changes = append(changes, categoryChange{from: t.Category, to: *patch.Category})
	}
	if patch.Title != nil {
		if title := strings.TrimSpace(*patch.Title); title != "" && title != t.Title {
			changes = append(changes, titleChange{to: title})
		}
	}
	if patch.Description != nil {
		if desc := strings.TrimSpace(*patch.Description); desc != "" && desc != t.Description {
			changes = append(changes, descriptionChange{to: desc})
		}
	}
	if patch.Assignee.Set && canAssign && !equalRef(patch.Assignee.Value, t.AssignedToID) {
		changes = append(changes, assigneeChange{to: patch.Assignee.Value})
	}

	return changes
}

func validatePatch(patch TicketPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *patch.Priority})
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return apperrors.NewValidationError("invalid category", map[string]any{"category": *patch.Category})
	}
	return nil
}

func equalRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// fetch loads a ticket, translating a missing row into a not-found error.
func (s *TicketService) fetch(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ticketView builds the response projection for a single ticket. When
// withAssignee is false only the creator profile is needed.
func (s *TicketService) ticketView(ctx context.Context, ticket *domain.Ticket, withAssignee bool) (*TicketView, error) {
	ids := []string{ticket.CreatedByID}
	if withAssignee && ticket.AssignedToID != nil {
		ids = append(ids, *ticket.AssignedToID)
	}
	profiles, err := s.users.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	view := assembleView(ticket, profiles)
	return &view, nil
}

func assembleView(ticket *domain.Ticket, profiles map[string]domain.Profile) TicketView {
	view := TicketView{
		Ticket:    *ticket,
		CreatedBy: profiles[ticket.CreatedByID],
	}
	if ticket.AssignedToID != nil {
		if p, ok := profiles[*ticket.AssignedToID]; ok {
			view.AssignedTo = &p
		}
	}
	return view
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	fillEvent(&event)
	_ = s.dispatcher.Publish(ctx, event)
}
