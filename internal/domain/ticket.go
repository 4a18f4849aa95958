package domain

import "time"

// TicketStatus enumerates ticket lifecycle states. Transitions are not
// restricted; a closed ticket may be reopened.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory enumerates request categories.
type TicketCategory string

const (
	TicketCategoryTechnicalIssue TicketCategory = "technical_issue"
	TicketCategoryBilling        TicketCategory = "billing"
	TicketCategoryFeatureRequest TicketCategory = "feature_request"
	TicketCategoryGeneralInquiry TicketCategory = "general_inquiry"
)

// Valid reports whether the category is a known value.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryTechnicalIssue, TicketCategoryBilling, TicketCategoryFeatureRequest, TicketCategoryGeneralInquiry:
		return true
	}
	return false
}

// Ticket is the aggregate for a support request. CreatedByID is immutable
// after creation. ResolvedAt/ClosedAt are stamped when the status enters the
// respective state and are never cleared on a later transition away.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	Category     TicketCategory
	CreatedByID  string
	AssignedToID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}
