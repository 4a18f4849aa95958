package service

import "github.com/spec-kit/support-desk/internal/domain"

// TicketView is a ticket with its embedded participant profiles, the shape
// every ticket-returning operation responds with.
type TicketView struct {
	Ticket     domain.Ticket
	CreatedBy  domain.Profile
	AssignedTo *domain.Profile
	// LastComment is populated on list responses for preview purposes.
	LastComment *CommentView
}

// CommentView is a comment with its author profile.
type CommentView struct {
	Comment domain.Comment
	User    domain.Profile
}

// ActivityView is an audit entry with its actor profile.
type ActivityView struct {
	Activity domain.TicketActivity
	User     domain.Profile
}

// TicketDetail is the full single-ticket projection: the ticket, its comment
// thread oldest first, and the most recent activities newest first.
type TicketDetail struct {
	TicketView
	Comments   []CommentView
	Activities []ActivityView
}
