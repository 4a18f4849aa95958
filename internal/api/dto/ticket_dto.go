package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
}

// UpdateTicketRequest carries optional field updates. Absent fields leave
// the ticket untouched; assigned_to_id accepts null to unassign.
type UpdateTicketRequest struct {
	Status       *domain.TicketStatus   `json:"status"`
	Priority     *domain.TicketPriority `json:"priority"`
	Category     *domain.TicketCategory `json:"category"`
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	AssignedToID OptionalString         `json:"assigned_to_id"`
}

// TicketResponse is the ticket projection with embedded profiles.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
	CreatedBy   domain.Profile        `json:"created_by"`
	AssignedTo  *domain.Profile       `json:"assigned_to,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	ResolvedAt  *time.Time            `json:"resolved_at,omitempty"`
	ClosedAt    *time.Time            `json:"closed_at,omitempty"`
	LastComment *CommentResponse      `json:"last_comment,omitempty"`
}

// TicketDetailResponse adds the comment thread and recent activities.
type TicketDetailResponse struct {
	TicketResponse
	Comments   []CommentResponse  `json:"comments"`
	Activities []ActivityResponse `json:"activities"`
}

// ActivityResponse represents one audit entry.
type ActivityResponse struct {
	ID          string                `json:"id"`
	Action      domain.ActivityAction `json:"action"`
	Description string                `json:"description"`
	User        domain.Profile        `json:"user"`
	CreatedAt   time.Time             `json:"created_at"`
}
