package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusAssigned   ComplaintStatus = "ASSIGNED"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusCompleted  ComplaintStatus = "COMPLETED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
)

// PriorityLevel enumerates SLA urgency for complaints.
type PriorityLevel string

const (
	PriorityLow       PriorityLevel = "LOW"
	PriorityMedium    PriorityLevel = "MEDIUM"
	PriorityHigh      PriorityLevel = "HIGH"
	PriorityEmergency PriorityLevel = "EMERGENCY"
)

// SLAStatus classifies a complaint against its service-level deadline.
type SLAStatus string

const (
	SLAOnTime   SLAStatus = "ON_TIME"
	SLAWarning  SLAStatus = "WARNING"
	SLABreached SLAStatus = "BREACHED"
)

// Complaint is the aggregate for citizen-submitted issues.
type Complaint struct {
	ID           string
	CitizenID    string
	Title        string
	Description  string
	Category     string
	Location     string
	Status       ComplaintStatus
	Priority     PriorityLevel
	StaffID      *string
	DepartmentID *string
	SLADueAt     *time.Time
	SLAStatus    SLAStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

// allowedTransitions is the explicit status machine. Any pair not present
// here is rejected rather than trusted to callers.
var allowedTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintStatusPending:    {ComplaintStatusAssigned, ComplaintStatusClosed},
	ComplaintStatusAssigned:   {ComplaintStatusAssigned, ComplaintStatusInProgress, ComplaintStatusCompleted, ComplaintStatusClosed},
	ComplaintStatusInProgress: {ComplaintStatusAssigned, ComplaintStatusCompleted, ComplaintStatusClosed},
	ComplaintStatusCompleted:  {ComplaintStatusClosed},
	ComplaintStatusClosed:     {},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to ComplaintStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether the value is a known complaint status.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusAssigned, ComplaintStatusInProgress,
		ComplaintStatusCompleted, ComplaintStatusClosed:
		return true
	}
	return false
}

// ActiveStatuses are the states counted toward a staff member's active load.
var ActiveStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusAssigned,
	ComplaintStatusInProgress,
}

// IsActiveStatus reports whether the status counts toward active workload.
func IsActiveStatus(s ComplaintStatus) bool {
	for _, st := range ActiveStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// ValidPriority reports whether the value is a known priority level.
func ValidPriority(p PriorityLevel) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// DefaultPriority is applied by callers before invoking the SLA policy when
// a complaint carries no usable priority.
const DefaultPriority = PriorityMedium
