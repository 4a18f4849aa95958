package domain

import "time"

// Comment is an append-only annotation on a ticket, immutable once created.
type Comment struct {
	ID        string
	TicketID  string
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
