package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/dto"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/service"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// StaffRequestsHandler manages staff request endpoints.
type StaffRequestsHandler struct {
	service *service.LifecycleService
}

// NewStaffRequestsHandler constructs handler.
func NewStaffRequestsHandler(lifecycle *service.LifecycleService) *StaffRequestsHandler {
	return &StaffRequestsHandler{service: lifecycle}
}

// ListRequests GET /staff/requests.
func (h *StaffRequestsHandler) ListRequests(c *fiber.Ctx) error {
	filter, err := parseStaffRequestQuery(c)
	if err != nil {
		return err
	}
	requests, err := h.service.ListStaffRequests(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewRequestSummary(&requests[i], nil))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /staff/requests/:id.
func (h *StaffRequestsHandler) GetRequest(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	trail, err := h.service.ListEvents(c.Context(), summary.Request.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(summary.Request, summary.Verdict, trail)})
}

// GetByOrderNumber GET /staff/requests/order/:number. Customers quote order
// numbers in correspondence, so staff look requests up by them.
func (h *StaffRequestsHandler) GetByOrderNumber(c *fiber.Ctx) error {
	summary, err := h.service.GetSummaryByOrderNumber(c.Context(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestSummary(summary.Request, summary.Verdict)})
}

// ChangeStatus POST /staff/requests/:id/status.
func (h *StaffRequestsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	requested, err := domain.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	summary, err := h.service.RequestTransition(c.Context(), c.Params("id"), requested, domain.StaffActor(principal.Staff.ID), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestSummary(summary.Request, summary.Verdict)})
}

// AssignRequest POST /staff/requests/:id/assign.
func (h *StaffRequestsHandler) AssignRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.service.Reassign(c.Context(), c.Params("id"), req.AssigneeID, domain.StaffActor(principal.Staff.ID))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestSummary(request, nil)})
}

// IssueQuote POST /staff/requests/:id/quote.
func (h *StaffRequestsHandler) IssueQuote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Amount <= 0 || req.Currency == "" {
		return apperrors.NewValidationError("amount and currency required", nil)
	}
	event, err := h.service.RecordQuoteIssued(c.Context(), c.Params("id"), domain.StaffActor(principal.Staff.ID), service.QuoteInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLifecycleEventResponses([]domain.LifecycleEvent{*event})[0]})
}

// IssueInvoice POST /staff/requests/:id/invoice.
func (h *StaffRequestsHandler) IssueInvoice(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.InvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.InvoiceRef == "" || req.Amount <= 0 || req.Currency == "" {
		return apperrors.NewValidationError("invoice_ref, amount, currency required", nil)
	}
	event, err := h.service.RecordInvoiceIssued(c.Context(), c.Params("id"), domain.StaffActor(principal.Staff.ID), service.InvoiceInput{
		InvoiceRef: req.InvoiceRef,
		Amount:     req.Amount,
		Currency:   req.Currency,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLifecycleEventResponses([]domain.LifecycleEvent{*event})[0]})
}

// ListEvents GET /staff/requests/:id/events.
func (h *StaffRequestsHandler) ListEvents(c *fiber.Ctx) error {
	trail, err := h.service.ListEvents(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLifecycleEventResponses(trail)})
}

// GetVerdict GET /staff/requests/:id/verdict.
func (h *StaffRequestsHandler) GetVerdict(c *fiber.Ctx) error {
	verdict, err := h.service.GetVerdict(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": verdict})
}

func parseStaffRequestQuery(c *fiber.Ctx) (repository.RequestFilter, error) {
	filter := repository.RequestFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status, err := domain.ParseStatus(strings.TrimSpace(part))
			if err != nil {
				return filter, err
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if kind := c.Query("service_kind"); kind != "" {
		filter.ServiceKind = &kind
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if from := parseTime(c.Query("submitted_from")); from != nil {
		filter.SubmittedFrom = from
	}
	if to := parseTime(c.Query("submitted_to")); to != nil {
		filter.SubmittedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}
