package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/repository"
)

// ServiceKindsHandler exposes the service catalog.
type ServiceKindsHandler struct {
	kinds repository.ServiceKindRepository
}

// NewServiceKindsHandler constructs handler.
func NewServiceKindsHandler(kinds repository.ServiceKindRepository) *ServiceKindsHandler {
	return &ServiceKindsHandler{kinds: kinds}
}

// ListActive GET /service-kinds. Retired kinds are hidden; they remain valid
// on existing requests.
func (h *ServiceKindsHandler) ListActive(c *fiber.Ctx) error {
	kinds, err := h.kinds.ListActive(c.Context())
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(kinds))
	for _, kind := range kinds {
		items = append(items, fiber.Map{
			"code":        kind.Code,
			"name":        kind.Name,
			"description": kind.Description,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
