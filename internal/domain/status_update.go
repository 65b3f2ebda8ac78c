package domain

import "time"

// ActorRole labels who produced a status update.
type ActorRole string

const (
	ActorRoleAdmin  ActorRole = "ADMIN"
	ActorRoleStaff  ActorRole = "STAFF"
	ActorRoleSystem ActorRole = "SYSTEM"
)

// StatusUpdate is an append-only timeline entry, one row per observable
// state change on a complaint.
type StatusUpdate struct {
	ID          string
	ComplaintID string
	UpdatedByID string
	Role        ActorRole
	Status      ComplaintStatus
	Notes       *string
	CreatedAt   time.Time
}
