package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-stack/complaint-service/internal/api/dto"
	"github.com/civic-stack/complaint-service/internal/auth"
	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/repository"
	"github.com/civic-stack/complaint-service/internal/service"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint intake, reads, priority and status
// changes.
type ComplaintsHandler struct {
	complaints  *service.ComplaintService
	assignments *service.AssignmentService
	sla         *service.SLAService
	statuses    *service.StatusService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(
	complaintService *service.ComplaintService,
	assignmentService *service.AssignmentService,
	slaService *service.SLAService,
	statusService *service.StatusService,
) *ComplaintsHandler {
	return &ComplaintsHandler{
		complaints:  complaintService,
		assignments: assignmentService,
		sla:         slaService,
		statuses:    statusService,
	}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.complaints.Create(c.Context(), service.CreateComplaintInput{
		CitizenID:   req.CitizenID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Priority:    domain.PriorityLevel(strings.ToUpper(req.Priority)),
	})
	if err != nil {
		return err
	}

	// Intake succeeds even when nobody can be assigned right away.
	if req.AutoAssign {
		if result, assignErr := h.assignments.AutoAssign(c.Context(), complaint.ID, nil, "assigned at intake"); assignErr == nil {
			complaint = result.Complaint
		}
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintSummary(complaint)})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.complaints.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(detail)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	filter := parseComplaintQuery(c)
	complaints, err := h.complaints.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ChangePriority PATCH /complaints/:id/priority.
func (h *ComplaintsHandler) ChangePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.PriorityChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.sla.ChangePriority(c.Context(), service.ChangePriorityInput{
		ComplaintID: c.Params("id"),
		NewPriority: domain.PriorityLevel(strings.ToUpper(req.Priority)),
		ActorID:     principal.Staff.ID,
		Role:        actorRole(principal),
		Reason:      req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint)})
}

// ChangeStatus PATCH /complaints/:id/status.
func (h *ComplaintsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.statuses.Transition(c.Context(), service.TransitionInput{
		ComplaintID: c.Params("id"),
		NewStatus:   domain.ComplaintStatus(strings.ToUpper(req.Status)),
		ActorID:     principal.Staff.ID,
		Role:        actorRole(principal),
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint)})
}

// OverrideSLA PATCH /complaints/:id/sla-due.
func (h *ComplaintsHandler) OverrideSLA(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.SLAOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DueAt.IsZero() {
		return apperrors.NewValidationError("due_at required", nil)
	}

	complaint, err := h.sla.OverrideDueDate(c.Context(), service.OverrideDueDateInput{
		ComplaintID: c.Params("id"),
		DueAt:       req.DueAt,
		ActorID:     principal.Staff.ID,
		Role:        actorRole(principal),
		Reason:      req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint)})
}

func actorRole(principal *auth.Principal) domain.ActorRole {
	if principal.Role == domain.StaffRoleAdmin {
		return domain.ActorRoleAdmin
	}
	return domain.ActorRoleStaff
}

func parseComplaintQuery(c *fiber.Ctx) repository.ComplaintFilter {
	filter := repository.ComplaintFilter{
		Limit:  50,
		Offset: 0,
	}
	if v := c.Query("citizen_id"); v != "" {
		filter.CitizenID = &v
	}
	if v := c.Query("staff_id"); v != "" {
		filter.StaffID = &v
	}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	for _, raw := range splitQuery(c.Query("status")) {
		status := domain.ComplaintStatus(strings.ToUpper(raw))
		if domain.ValidStatus(status) {
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	for _, raw := range splitQuery(c.Query("priority")) {
		priority := domain.PriorityLevel(strings.ToUpper(raw))
		if domain.ValidPriority(priority) {
			filter.Priorities = append(filter.Priorities, priority)
		}
	}
	for _, raw := range splitQuery(c.Query("sla_status")) {
		filter.SLAStatuses = append(filter.SLAStatuses, domain.SLAStatus(strings.ToUpper(raw)))
	}
	if v := c.Query("created_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if v := c.Query("created_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedTo = &t
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	return filter
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
