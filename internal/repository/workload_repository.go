package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// ComplaintWorkRow is one complaint flattened for workload reporting:
// current state plus the first-assignment and first-completion timestamps.
type ComplaintWorkRow struct {
	ComplaintID     string
	StaffID         string
	Status          domain.ComplaintStatus
	SLAStatus       domain.SLAStatus
	CreatedAt       time.Time
	FirstAssignedAt *time.Time
	CompletedAt     *time.Time
}

// WorkloadFilter scopes the reporting query.
type WorkloadFilter struct {
	Since   *time.Time
	StaffID *string
}

// WorkloadRepository is the read side of workload reporting. It recomputes
// from the complaint and log tables independently of the cached staff
// counters; the two may legitimately disagree.
type WorkloadRepository interface {
	ComplaintRows(ctx context.Context, filter WorkloadFilter) ([]ComplaintWorkRow, error)
}

type workloadRepository struct {
	db Querier
}

// NewWorkloadRepository instantiates the repository.
func NewWorkloadRepository(db Querier) WorkloadRepository {
	return &workloadRepository{db: db}
}

func (r *workloadRepository) ComplaintRows(ctx context.Context, filter WorkloadFilter) ([]ComplaintWorkRow, error) {
	query := `
        SELECT c.id, c.staff_id, c.status, c.sla_status, c.created_at,
               fa.first_assigned_at, fc.completed_at
        FROM complaints c
        LEFT JOIN (
            SELECT complaint_id, MIN(created_at) AS first_assigned_at
            FROM assignment_logs
            GROUP BY complaint_id
        ) fa ON fa.complaint_id = c.id
        LEFT JOIN (
            SELECT complaint_id, MIN(created_at) AS completed_at
            FROM status_updates
            WHERE status = $1
            GROUP BY complaint_id
        ) fc ON fc.complaint_id = c.id
        WHERE c.staff_id IS NOT NULL`
	args := []any{domain.ComplaintStatusCompleted}

	if filter.Since != nil {
		args = append(args, *filter.Since)
		query += fmt.Sprintf(" AND c.created_at >= $%d", len(args))
	}
	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		query += fmt.Sprintf(" AND c.staff_id = $%d", len(args))
	}
	query += " ORDER BY c.created_at ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ComplaintWorkRow
	for rows.Next() {
		var row ComplaintWorkRow
		if err := rows.Scan(
			&row.ComplaintID,
			&row.StaffID,
			&row.Status,
			&row.SLAStatus,
			&row.CreatedAt,
			&row.FirstAssignedAt,
			&row.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
