package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/http/handlers"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Customers      *handlers.CustomersHandler
	Staff          *handlers.StaffHandler
	Requests       *handlers.RequestsHandler
	ServiceKinds   *handlers.ServiceKindsHandler
	StaffRequests  *handlers.StaffRequestsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/customers/register", cfg.Customers.Register)
	authGroup.Post("/customers/login", cfg.Customers.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protectedAuth.Post("/staff/password", cfg.Staff.ChangePassword)

	app.Get("/service-kinds", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.ServiceKinds.ListActive)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireCustomer())
	requests.Post("/", cfg.Requests.CreateRequest)
	requests.Get("/", cfg.Requests.ListRequests)
	requests.Get("/:id", cfg.Requests.GetRequest)
	requests.Post("/:id/submit", cfg.Requests.SubmitRequest)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAgent, domain.StaffRoleAdmin))
	staff.Get("/directory", cfg.Staff.ListStaff)
	staff.Get("/requests", cfg.StaffRequests.ListRequests)
	staff.Get("/requests/order/:number", cfg.StaffRequests.GetByOrderNumber)
	staff.Get("/requests/:id", cfg.StaffRequests.GetRequest)
	staff.Post("/requests/:id/status", cfg.StaffRequests.ChangeStatus)
	staff.Post("/requests/:id/assign", cfg.StaffRequests.AssignRequest)
	staff.Post("/requests/:id/quote", cfg.StaffRequests.IssueQuote)
	staff.Post("/requests/:id/invoice", cfg.StaffRequests.IssueInvoice)
	staff.Get("/requests/:id/events", cfg.StaffRequests.ListEvents)
	staff.Get("/requests/:id/verdict", cfg.StaffRequests.GetVerdict)
	staff.Get("/dashboard/summary", cfg.Dashboard.SLASummary)
}
