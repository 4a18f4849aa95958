package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.tickets.Create(c.UserContext(), principal, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"ticket": ticketResponse(view)})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return err
	}

	views, err := h.tickets.List(c.UserContext(), principal, parseListFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(views))
	for i := range views {
		items = append(items, ticketResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"tickets": items})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return err
	}
	detail, err := h.tickets.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticketDetailResponse(detail)})
}

// Update PATCH /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.TicketPatch{
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Assignee: service.AssigneePatch{
			Set:   req.AssignedToID.Set,
			Value: req.AssignedToID.Value,
		},
	}
	view, err := h.tickets.Update(c.UserContext(), principal, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticketResponse(view)})
}

// Delete DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "ticket deleted"})
}

func principalFromContext(c *fiber.Ctx) (authz.Principal, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return authz.Principal{}, apperrors.NewUnauthorized("authentication required")
	}
	return session.Principal, nil
}

func parseListFilter(c *fiber.Ctx) service.ListFilter {
	filter := service.ListFilter{
		Search: c.Query("search"),
	}
	if status := c.Query("status"); status != "" {
		s := domain.TicketStatus(strings.TrimSpace(status))
		filter.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.TicketPriority(strings.TrimSpace(priority))
		filter.Priority = &p
	}
	if category := c.Query("category"); category != "" {
		cat := domain.TicketCategory(strings.TrimSpace(category))
		filter.Category = &cat
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		filter.AssignedToID = &assignedTo
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(view *service.TicketView) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:          view.Ticket.ID,
		Title:       view.Ticket.Title,
		Description: view.Ticket.Description,
		Status:      view.Ticket.Status,
		Priority:    view.Ticket.Priority,
		Category:    view.Ticket.Category,
		CreatedBy:   view.CreatedBy,
		AssignedTo:  view.AssignedTo,
		CreatedAt:   view.Ticket.CreatedAt,
		UpdatedAt:   view.Ticket.UpdatedAt,
		ResolvedAt:  view.Ticket.ResolvedAt,
		ClosedAt:    view.Ticket.ClosedAt,
	}
	if view.LastComment != nil {
		last := commentResponse(view.LastComment)
		resp.LastComment = &last
	}
	return resp
}

func ticketDetailResponse(detail *service.TicketDetail) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketResponse: ticketResponse(&detail.TicketView),
		Comments:       make([]dto.CommentResponse, 0, len(detail.Comments)),
		Activities:     make([]dto.ActivityResponse, 0, len(detail.Activities)),
	}
	for i := range detail.Comments {
		resp.Comments = append(resp.Comments, commentResponse(&detail.Comments[i]))
	}
	for _, activity := range detail.Activities {
		resp.Activities = append(resp.Activities, dto.ActivityResponse{
			ID:          activity.Activity.ID,
			Action:      activity.Activity.Action,
			Description: activity.Activity.Description,
			User:        activity.User,
			CreatedAt:   activity.Activity.CreatedAt,
		})
	}
	return resp
}

func commentResponse(view *service.CommentView) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        view.Comment.ID,
		TicketID:  view.Comment.TicketID,
		Content:   view.Comment.Content,
		User:      view.User,
		CreatedAt: view.Comment.CreatedAt,
	}
}
