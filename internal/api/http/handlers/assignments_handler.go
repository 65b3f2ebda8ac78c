package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-stack/complaint-service/internal/api/dto"
	"github.com/civic-stack/complaint-service/internal/auth"
	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/service"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// AssignmentsHandler covers manual and automatic assignment endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignmentService}
}

// Assign POST /complaints/:id/assign.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StaffID == "" {
		return apperrors.NewValidationError("staff_id required", nil)
	}

	result, err := h.assignments.Assign(c.Context(), service.AssignInput{
		ComplaintID:          c.Params("id"),
		StaffID:              req.StaffID,
		ActingAdminID:        &principal.Staff.ID,
		Type:                 domain.AssignmentTypeManual,
		Reason:               req.Reason,
		AllowCrossDepartment: req.AllowCrossDepartment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(result)})
}

// AutoAssign POST /complaints/:id/auto-assign.
func (h *AssignmentsHandler) AutoAssign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AutoAssignRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.assignments.AutoAssign(c.Context(), c.Params("id"), &principal.Staff.ID, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(result)})
}
