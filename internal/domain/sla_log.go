package domain

import "time"

// SLAChangeLog records a transition of a complaint's SLA classification.
// Written only when the stored sla_status actually changes.
type SLAChangeLog struct {
	ID          string
	ComplaintID string
	OldStatus   SLAStatus
	NewStatus   SLAStatus
	Notes       string
	CreatedAt   time.Time
}

// PriorityChangeLog records a priority edit alongside the SLA recalculation
// it triggered.
type PriorityChangeLog struct {
	ID          string
	ComplaintID string
	OldPriority PriorityLevel
	NewPriority PriorityLevel
	ChangedByID string
	Reason      string
	CreatedAt   time.Time
}
