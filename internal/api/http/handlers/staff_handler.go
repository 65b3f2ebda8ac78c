package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-stack/complaint-service/internal/api/dto"
	"github.com/civic-stack/complaint-service/internal/service"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// StaffHandler covers staff/admin authentication endpoints.
type StaffHandler struct {
	auth *service.AuthService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService) *StaffHandler {
	return &StaffHandler{auth: authService}
}

// Login POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.StaffLogin(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.StaffLoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Staff:     staffSummary(result.Staff),
	}})
}
