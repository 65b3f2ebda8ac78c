package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-stack/complaint-service/internal/api/dto"
	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/settings"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// SettingsHandler reads and writes the auto-assign settings.
type SettingsHandler struct {
	settings *settings.Store
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{settings: store}
}

// Get GET /settings/assignment.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.AssignmentSettingsResponse{
		AssignmentMethod:  h.settings.AssignmentMethod(c.Context()),
		AutoAssignEnabled: h.settings.AutoAssignEnabled(c.Context()),
	}})
}

// Update PUT /settings/assignment.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateAssignmentSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssignmentMethod == nil && req.AutoAssignEnabled == nil {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	if req.AssignmentMethod != nil {
		method := domain.AssignmentMethod(strings.ToLower(strings.TrimSpace(*req.AssignmentMethod)))
		if !domain.ValidAssignmentMethod(method) {
			return apperrors.NewValidationError("unknown assignment method",
				map[string]any{"assignment_method": *req.AssignmentMethod})
		}
		if err := h.settings.Set(c.Context(), settings.KeyAssignmentMethod, string(method)); err != nil {
			return apperrors.MapError(err)
		}
	}
	if req.AutoAssignEnabled != nil {
		if err := h.settings.Set(c.Context(), settings.KeyAutoAssignEnabled, strconv.FormatBool(*req.AutoAssignEnabled)); err != nil {
			return apperrors.MapError(err)
		}
	}

	return c.JSON(fiber.Map{"data": dto.AssignmentSettingsResponse{
		AssignmentMethod:  h.settings.AssignmentMethod(c.Context()),
		AutoAssignEnabled: h.settings.AutoAssignEnabled(c.Context()),
	}})
}
