package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-stack/complaint-service/internal/service"
)

// WorkloadHandler exposes the per-staff workload report.
type WorkloadHandler struct {
	workload *service.WorkloadService
}

// NewWorkloadHandler constructs handler.
func NewWorkloadHandler(workloadService *service.WorkloadService) *WorkloadHandler {
	return &WorkloadHandler{workload: workloadService}
}

// Report GET /reports/workload.
func (h *WorkloadHandler) Report(c *fiber.Ctx) error {
	window, err := service.ParseWindow(c.Query("window"))
	if err != nil {
		return err
	}
	var staffID *string
	if v := c.Query("staff_id"); v != "" {
		staffID = &v
	}

	reports, err := h.workload.Report(c.Context(), window, staffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reports, "window": window})
}
