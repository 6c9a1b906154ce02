package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/dto"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/service"
	"github.com/spec-kit/request-service/internal/sla"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// RequestsHandler manages customer request endpoints.
type RequestsHandler struct {
	service *service.LifecycleService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(lifecycle *service.LifecycleService) *RequestsHandler {
	return &RequestsHandler{service: lifecycle}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return apperrors.NewUnauthorized("customer required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ServiceKind == "" || strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("service_kind and title required", nil)
	}

	request, err := h.service.CreateDraft(c.Context(), principal.Customer.ID, service.DraftInput{
		ServiceKind: req.ServiceKind,
		Title:       req.Title,
		Payload:     req.Payload,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestSummary(request, nil)})
}

// SubmitRequest POST /requests/:id/submit.
func (h *RequestsHandler) SubmitRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return apperrors.NewUnauthorized("customer required")
	}
	summary, err := h.service.Submit(c.Context(), principal.Customer.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestSummary(summary.Request, summary.Verdict)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return apperrors.NewUnauthorized("customer required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	requests, err := h.service.ListCustomerRequests(c.Context(), principal.Customer.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewRequestSummary(&requests[i], nil))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return apperrors.NewUnauthorized("customer required")
	}
	summary, trail, err := h.service.GetRequestForCustomer(c.Context(), principal.Customer.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(summary.Request, summary.Verdict, trail)})
}

func requestDetail(request *domain.ServiceRequest, verdict *sla.Verdict, trail []domain.LifecycleEvent) dto.RequestDetailResponse {
	return dto.RequestDetailResponse{
		RequestSummary: dto.NewRequestSummary(request, verdict),
		Payload:        request.Payload,
		Events:         dto.NewLifecycleEventResponses(trail),
	}
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
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
