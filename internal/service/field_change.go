package service

import (
	"fmt"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// fieldChange is one mutation of a tracked ticket field, carrying its old and
// new value. Each change applies itself and yields exactly one activity
// description, so the diff-and-log step is exhaustive per field.
type fieldChange interface {
	apply(t *domain.Ticket, now time.Time)
	describe() string
}

type statusChange struct {
	from, to domain.TicketStatus
}

func (c statusChange) apply(t *domain.Ticket, now time.Time) {
	t.Status = c.to
	// Entry timestamps are stamped here and never cleared by a later
	// transition away from the state.
	switch c.to {
	case domain.TicketStatusResolved:
		t.ResolvedAt = &now
	case domain.TicketStatusClosed:
		t.ClosedAt = &now
	}
}

func (c statusChange) describe() string {
	return fmt.Sprintf("Status changed from %s to %s", c.from, c.to)
}

type priorityChange struct {
	from, to domain.TicketPriority
}

func (c priorityChange) apply(t *domain.Ticket, _ time.Time) {
	t.Priority = c.to
}

func (c priorityChange) describe() string {
	return fmt.Sprintf("Priority changed from %s to %s", c.from, c.to)
}

type categoryChange struct {
	from, to domain.TicketCategory
}

func (c categoryChange) apply(t *domain.Ticket, _ time.Time) {
	t.Category = c.to
}

func (c categoryChange) describe() string {
	return fmt.Sprintf("Category changed from %s to %s", c.from, c.to)
}

type titleChange struct {
	to string
}

func (c titleChange) apply(t *domain.Ticket, _ time.Time) {
	t.Title = c.to
}

// Content is never echoed into the audit trail.
func (c titleChange) describe() string { return "Title updated" }

type descriptionChange struct {
	to string
}

func (c descriptionChange) apply(t *domain.Ticket, _ time.Time) {
	t.Description = c.to
}

func (c descriptionChange) describe() string { return "Description updated" }

type assigneeChange struct {
	to *string
}

func (c assigneeChange) apply(t *domain.Ticket, _ time.Time) {
	t.AssignedToID = c.to
}

func (c assigneeChange) describe() string {
	if c.to != nil {
		return "Ticket assigned"
	}
	return "Ticket unassigned"
}
