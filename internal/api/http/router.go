package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-stack/complaint-service/internal/api/http/handlers"
	"github.com/civic-stack/complaint-service/internal/auth"
	"github.com/civic-stack/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Staff          *handlers.StaffHandler
	Complaints     *handlers.ComplaintsHandler
	Assignments    *handlers.AssignmentsHandler
	Workload       *handlers.WorkloadHandler
	Settings       *handlers.SettingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/staff/login", cfg.Staff.Login)

	adminOnly := auth.RequireStaffRole(domain.StaffRoleAdmin)
	anyStaff := auth.RequireStaffRole(domain.StaffRoleAdmin, domain.StaffRoleStaff)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("", adminOnly, cfg.Complaints.Create)
	complaints.Get("", anyStaff, cfg.Complaints.List)
	complaints.Get("/:id", anyStaff, cfg.Complaints.Get)
	complaints.Post("/:id/assign", adminOnly, cfg.Assignments.Assign)
	complaints.Post("/:id/auto-assign", adminOnly, cfg.Assignments.AutoAssign)
	complaints.Patch("/:id/priority", adminOnly, cfg.Complaints.ChangePriority)
	complaints.Patch("/:id/status", anyStaff, cfg.Complaints.ChangeStatus)
	complaints.Patch("/:id/sla-due", adminOnly, cfg.Complaints.OverrideSLA)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, adminOnly)
	reports.Get("/workload", cfg.Workload.Report)

	settingsGroup := app.Group("/settings", cfg.AuthMiddleware.Handle, adminOnly)
	settingsGroup.Get("/assignment", cfg.Settings.Get)
	settingsGroup.Put("/assignment", cfg.Settings.Update)
}
