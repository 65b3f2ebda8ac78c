package repository

import (
	"context"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// SLALogRepository stores SLA classification changes and priority edits.
type SLALogRepository interface {
	AppendSLAChange(ctx context.Context, entry *domain.SLAChangeLog) error
	AppendPriorityChange(ctx context.Context, entry *domain.PriorityChangeLog) error
	ListSLAChangesByComplaint(ctx context.Context, complaintID string) ([]domain.SLAChangeLog, error)
}

type slaLogRepository struct {
	db Querier
}

// NewSLALogRepository instantiates the repository.
func NewSLALogRepository(db Querier) SLALogRepository {
	return &slaLogRepository{db: db}
}

func (r *slaLogRepository) AppendSLAChange(ctx context.Context, entry *domain.SLAChangeLog) error {
	const query = `
        INSERT INTO sla_change_logs (complaint_id, old_status, new_status, notes)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.OldStatus,
		entry.NewStatus,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *slaLogRepository) AppendPriorityChange(ctx context.Context, entry *domain.PriorityChangeLog) error {
	const query = `
        INSERT INTO priority_change_logs (complaint_id, old_priority, new_priority, changed_by_id, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.OldPriority,
		entry.NewPriority,
		entry.ChangedByID,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *slaLogRepository) ListSLAChangesByComplaint(ctx context.Context, complaintID string) ([]domain.SLAChangeLog, error) {
	const query = `
        SELECT id, complaint_id, old_status, new_status, notes, created_at
        FROM sla_change_logs
        WHERE complaint_id=$1
        ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAChangeLog
	for rows.Next() {
		var entry domain.SLAChangeLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Notes,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
