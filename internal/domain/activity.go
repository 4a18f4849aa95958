package domain

import "time"

// ActivityAction tags what kind of event an activity records.
type ActivityAction string

const (
	ActionCreated   ActivityAction = "created"
	ActionUpdated   ActivityAction = "updated"
	ActionCommented ActivityAction = "commented"
)

// TicketActivity is an immutable audit entry appended whenever a tracked
// ticket field changes or a comment is posted. Never mutated or deleted
// except by ticket-delete cascade.
type TicketActivity struct {
	ID          string
	TicketID    string
	UserID      string
	Action      ActivityAction
	Description string
	CreatedAt   time.Time
}
