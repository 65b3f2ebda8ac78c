package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleStaff StaffRole = "STAFF"
	StaffRoleAdmin StaffRole = "ADMIN"
)

// StaffMember models a department staff member or administrator. The
// active/completed counters are denormalized workload aggregates owned
// exclusively by the assignment and status services.
type StaffMember struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           StaffRole
	DepartmentID   *string
	Active         bool
	ActiveCases    int
	CompletedCases int
	LastAssignedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StaffDirectoryEntry is the read-only projection consumed by the
// assignment selector: counters plus the per-staff emergency load.
type StaffDirectoryEntry struct {
	StaffID        string
	Name           string
	DepartmentID   *string
	ActiveCases    int
	EmergencyCases int
	LastAssignedAt *time.Time
}
