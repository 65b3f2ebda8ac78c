package dto

import (
	"time"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	CitizenID   string `json:"citizen_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Priority    string `json:"priority"`
	AutoAssign  bool   `json:"auto_assign"`
}

// AssignRequest payload for manual assignment.
type AssignRequest struct {
	StaffID              string `json:"staff_id"`
	Reason               string `json:"reason"`
	AllowCrossDepartment bool   `json:"allow_cross_department"`
}

// AutoAssignRequest payload.
type AutoAssignRequest struct {
	Reason string `json:"reason"`
}

// PriorityChangeRequest payload.
type PriorityChangeRequest struct {
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// StatusChangeRequest payload.
type StatusChangeRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// SLAOverrideRequest payload for a manual due-date override.
type SLAOverrideRequest struct {
	DueAt  time.Time `json:"due_at"`
	Reason string    `json:"reason"`
}

// ComplaintSummary response shape.
type ComplaintSummary struct {
	ID           string                 `json:"id"`
	CitizenID    string                 `json:"citizen_id"`
	Title        string                 `json:"title"`
	Category     string                 `json:"category"`
	Location     string                 `json:"location,omitempty"`
	Status       domain.ComplaintStatus `json:"status"`
	Priority     domain.PriorityLevel   `json:"priority"`
	StaffID      *string                `json:"staff_id,omitempty"`
	DepartmentID *string                `json:"department_id,omitempty"`
	SLADueAt     *time.Time             `json:"sla_due_at,omitempty"`
	SLAStatus    domain.SLAStatus       `json:"sla_status"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// AssignmentResponse reports a committed assignment.
type AssignmentResponse struct {
	Complaint       ComplaintSummary      `json:"complaint"`
	PreviousStaffID *string               `json:"previous_staff_id,omitempty"`
	AssignmentType  domain.AssignmentType `json:"assignment_type"`
}

// StatusUpdateResponse is one timeline entry.
type StatusUpdateResponse struct {
	ID          string                 `json:"id"`
	UpdatedByID string                 `json:"updated_by_id"`
	Role        domain.ActorRole       `json:"role"`
	Status      domain.ComplaintStatus `json:"status"`
	Notes       *string                `json:"notes,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// AssignmentLogResponse is one assignment history entry.
type AssignmentLogResponse struct {
	ID                string                `json:"id"`
	PreviousStaffID   *string               `json:"previous_staff_id,omitempty"`
	NewStaffID        string                `json:"new_staff_id"`
	AssignedByAdminID *string               `json:"assigned_by_admin_id,omitempty"`
	AssignmentType    domain.AssignmentType `json:"assignment_type"`
	Reason            string                `json:"reason,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// ComplaintDetailResponse bundles the complaint with its history.
type ComplaintDetailResponse struct {
	ComplaintSummary
	Description    string                  `json:"description"`
	Timeline       []StatusUpdateResponse  `json:"timeline"`
	AssignmentLogs []AssignmentLogResponse `json:"assignment_logs"`
}

// AssignmentSettingsResponse exposes the auto-assign settings.
type AssignmentSettingsResponse struct {
	AssignmentMethod  domain.AssignmentMethod `json:"assignment_method"`
	AutoAssignEnabled bool                    `json:"auto_assign_enabled"`
}

// UpdateAssignmentSettingsRequest payload; omitted fields stay unchanged.
type UpdateAssignmentSettingsRequest struct {
	AssignmentMethod  *string `json:"assignment_method"`
	AutoAssignEnabled *bool   `json:"auto_assign_enabled"`
}
