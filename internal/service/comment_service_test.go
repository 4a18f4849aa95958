package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestAddComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view := mustCreate(t, f, asCustomer, defaultInput())
	beforeTouch := f.tickets.tickets[view.Ticket.ID].UpdatedAt
	time.Sleep(time.Millisecond)

	comment, err := f.commentSvc.Add(ctx, asCustomer, view.Ticket.ID, "  Is anyone looking at this?  ")
	require.NoError(t, err)
	require.Equal(t, "Is anyone looking at this?", comment.Comment.Content)
	require.Equal(t, "customer-1", comment.Comment.UserID)
	require.Equal(t, "Casey", comment.User.Name)

	activities := f.activities.forTicket(view.Ticket.ID)
	last := activities[len(activities)-1]
	require.Equal(t, domain.ActionCommented, last.Action)
	require.Equal(t, "Added a comment", last.Description)

	require.True(t, f.tickets.tickets[view.Ticket.ID].UpdatedAt.After(beforeTouch))
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view := mustCreate(t, f, asCustomer, defaultInput())

	_, err := f.commentSvc.Add(ctx, asCustomer, view.Ticket.ID, "   ")
	requireStatus(t, err, 400)
	require.Empty(t, f.comments.comments)
}

func TestAddCommentPermissions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view := mustCreate(t, f, asCustomer, defaultInput())

	_, err := f.commentSvc.Add(ctx, asOtherCustomer, view.Ticket.ID, "let me in")
	requireStatus(t, err, 403)

	_, err = f.commentSvc.Add(ctx, asAgent, view.Ticket.ID, "not mine yet")
	requireStatus(t, err, 403)

	agentID := "agent-1"
	_, err = f.ticketSvc.Update(ctx, asAdmin, view.Ticket.ID, TicketPatch{
		Assignee: AssigneePatch{Set: true, Value: &agentID},
	})
	require.NoError(t, err)

	_, err = f.commentSvc.Add(ctx, asAgent, view.Ticket.ID, "on it")
	require.NoError(t, err)

	_, err = f.commentSvc.Add(ctx, asAdmin, view.Ticket.ID, "escalating")
	require.NoError(t, err)
}

func TestAddCommentUnknownTicket(t *testing.T) {
	f := newFixture()

	_, err := f.commentSvc.Add(context.Background(), asAdmin, "missing", "hello")
	requireStatus(t, err, 404)
}

func TestStringPreview(t *testing.T) {
	require.Equal(t, "short", stringPreview("short", 120))
	long := strings.Repeat("x", 200)
	preview := stringPreview(long, 120)
	require.Len(t, preview, 120)
	require.True(t, strings.HasSuffix(preview, "..."))
}
