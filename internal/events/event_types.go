package events

import (
	"time"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers. These names are the
// wire contract with the realtime push transport.
type EventType string

const (
	EventAssignmentCreated EventType = "assignment_created"
	EventPriorityUpdated   EventType = "complaint_priority_updated"
	EventStatusUpdated     EventType = "complaint_status_updated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   *string          `json:"id,omitempty"`
	Role domain.ActorRole `json:"role"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	StaffID           string                `json:"staff_id"`
	PreviousStaffID   *string               `json:"previous_staff_id,omitempty"`
	AssignedByAdminID *string               `json:"assigned_by_admin_id,omitempty"`
	AssignmentType    domain.AssignmentType `json:"assignment_type"`
	ComplaintTitle    string                `json:"complaint_title"`
}

// PriorityUpdatedPayload payload.
type PriorityUpdatedPayload struct {
	OldPriority domain.PriorityLevel `json:"old_priority"`
	NewPriority domain.PriorityLevel `json:"new_priority"`
	SLADueAt    *time.Time           `json:"sla_due_at,omitempty"`
	SLAStatus   domain.SLAStatus     `json:"sla_status"`
}

// StatusUpdatedPayload payload.
type StatusUpdatedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Notes     string                 `json:"notes,omitempty"`
}
