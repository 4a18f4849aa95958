package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	TicketID string `json:"ticket_id"`
	Content  string `json:"content"`
}

// CommentResponse represents one comment with its author.
type CommentResponse struct {
	ID        string         `json:"id"`
	TicketID  string         `json:"ticket_id"`
	Content   string         `json:"content"`
	User      domain.Profile `json:"user"`
	CreatedAt time.Time      `json:"created_at"`
}
