package domain

import "time"

// AuditLog is a durable action record, written best-effort after commit and
// independent of the main transaction's success.
type AuditLog struct {
	ID          string
	ActorID     *string
	Role        ActorRole
	ActionType  string
	Details     map[string]any
	ComplaintID *string
	CreatedAt   time.Time
}
