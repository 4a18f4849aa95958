package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// CommentService appends comments to tickets.
type CommentService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	activities repository.ActivityRepository
	users      repository.UserRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// CommentDependencies bundles requirements for the comment service.
type CommentDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	ActivityRepo repository.ActivityRepository
	UserRepo     repository.UserRepository
	Tx           repository.TxRunner
	Dispatcher   events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		activities: deps.ActivityRepo,
		users:      deps.UserRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
	}
}

// Add appends a comment to a ticket the principal may participate in. The
// comment, its activity entry and the ticket's updated_at touch are written
// in one transaction; the touch emits no activity of its own.
func (s *CommentService) Add(ctx context.Context, principal authz.Principal, ticketID, content string) (*CommentView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if err != nil {
		return nil, err
	}
	if !authz.Allows(principal, authz.CapabilityComment, ticket) {
		return nil, apperrors.NewForbidden("no access to this ticket")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		UserID:   principal.ID,
		Content:  content,
	}

	err = s.tx.InTx(ctx, func(q repository.Querier) error {
		comments := s.comments.WithTx(q)
		activities := s.activities.WithTx(q)
		tickets := s.tickets.WithTx(q)

		if err := comments.Create(ctx, comment); err != nil {
			return err
		}
		entry := &domain.TicketActivity{
			TicketID:    ticket.ID,
			UserID:      principal.ID,
			Action:      domain.ActionCommented,
			Description: "Added a comment",
		}
		if err := activities.Create(ctx, entry); err != nil {
			return err
		}
		return tickets.Touch(ctx, ticket.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: principal.ID, Role: principal.Role},
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			BodyPreview: stringPreview(comment.Content, 120),
		},
	})

	profiles, err := s.users.ProfilesByIDs(ctx, []string{principal.ID})
	if err != nil {
		return nil, err
	}
	return &CommentView{Comment: *comment, User: profiles[principal.ID]}, nil
}

func (s *CommentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	fillEvent(&event)
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
