package domain

import "time"

// AssignmentType records how an assignment came to be.
type AssignmentType string

const (
	AssignmentTypeManual       AssignmentType = "MANUAL"
	AssignmentTypeAuto         AssignmentType = "AUTO"
	AssignmentTypeReassignment AssignmentType = "REASSIGNMENT"
)

// AssignmentMethod selects the auto-assign ranking policy.
type AssignmentMethod string

const (
	MethodWorkload   AssignmentMethod = "workload"
	MethodRoundRobin AssignmentMethod = "round_robin"
)

// ValidAssignmentMethod reports whether the value names a known policy.
func ValidAssignmentMethod(m AssignmentMethod) bool {
	return m == MethodWorkload || m == MethodRoundRobin
}

// StaffAssignment is the current-assignment pointer for a complaint.
// Reassignment updates the row in place; row-per-change history lives in
// AssignmentLog.
type StaffAssignment struct {
	ID                string
	ComplaintID       string
	StaffID           string
	AssignedByAdminID *string
	AssignedAt        time.Time
}

// AssignmentLog is an append-only audit entry for assignment changes.
type AssignmentLog struct {
	ID                string
	ComplaintID       string
	PreviousStaffID   *string
	NewStaffID        string
	AssignedByAdminID *string
	AssignmentType    AssignmentType
	Reason            string
	CreatedAt         time.Time
}
