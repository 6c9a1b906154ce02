package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/service"
)

// DashboardHandler exposes staff compliance aggregates.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// SLASummary GET /staff/dashboard/summary.
func (h *DashboardHandler) SLASummary(c *fiber.Ctx) error {
	summary, err := h.dashboard.SummarizeOpenRequests(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
