package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/service"
)

// AnalyticsHandler serves the admin analytics snapshot.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Snapshot GET /api/analytics. Admin-only, enforced at the route.
func (h *AnalyticsHandler) Snapshot(c *fiber.Ctx) error {
	snapshot, err := h.analytics.Snapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"analytics": snapshot})
}
