package dto

import (
	"time"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffSummary response shape.
type StaffSummary struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Role           domain.StaffRole `json:"role"`
	DepartmentID   *string          `json:"department_id,omitempty"`
	ActiveCases    int              `json:"active_cases"`
	CompletedCases int              `json:"completed_cases"`
	LastAssignedAt *time.Time       `json:"last_assigned_at,omitempty"`
}

// StaffLoginResponse payload.
type StaffLoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Staff     StaffSummary `json:"staff"`
}
