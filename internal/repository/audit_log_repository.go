package repository

import (
	"context"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// AuditLogRepository appends durable action records. Callers never fail an
// operation because an audit append failed.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
}

type auditLogRepository struct {
	db Querier
}

// NewAuditLogRepository instantiates the repository.
func NewAuditLogRepository(db Querier) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (actor_id, role, action_type, details, complaint_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.ActorID,
		entry.Role,
		entry.ActionType,
		entry.Details,
		entry.ComplaintID,
	).Scan(&entry.ID, &entry.CreatedAt)
}
