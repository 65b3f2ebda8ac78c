package repository

import (
	"context"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// AssignmentRepository persists the current-assignment pointer and the
// append-only assignment log.
type AssignmentRepository interface {
	// GetCurrentByComplaint returns the current assignment, most recent by
	// assigned_at. pgx.ErrNoRows when the complaint was never assigned.
	GetCurrentByComplaint(ctx context.Context, complaintID string) (*domain.StaffAssignment, error)
	// Upsert updates the existing row's staff/assigner/timestamp in place,
	// inserting when none exists. Row-per-change history is kept in the
	// assignment log instead.
	Upsert(ctx context.Context, assignment *domain.StaffAssignment) error
	AppendLog(ctx context.Context, entry *domain.AssignmentLog) error
	ListLogsByComplaint(ctx context.Context, complaintID string) ([]domain.AssignmentLog, error)
}

type assignmentRepository struct {
	db Querier
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db Querier) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetCurrentByComplaint(ctx context.Context, complaintID string) (*domain.StaffAssignment, error) {
	const query = `
        SELECT id, complaint_id, staff_id, assigned_by_admin_id, assigned_at
        FROM staff_assignments
        WHERE complaint_id=$1
        ORDER BY assigned_at DESC
        LIMIT 1`
	var assignment domain.StaffAssignment
	if err := r.db.QueryRow(ctx, query, complaintID).Scan(
		&assignment.ID,
		&assignment.ComplaintID,
		&assignment.StaffID,
		&assignment.AssignedByAdminID,
		&assignment.AssignedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) Upsert(ctx context.Context, assignment *domain.StaffAssignment) error {
	const query = `
        INSERT INTO staff_assignments (complaint_id, staff_id, assigned_by_admin_id, assigned_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (complaint_id) DO UPDATE
        SET staff_id=EXCLUDED.staff_id,
            assigned_by_admin_id=EXCLUDED.assigned_by_admin_id,
            assigned_at=EXCLUDED.assigned_at
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		assignment.ComplaintID,
		assignment.StaffID,
		assignment.AssignedByAdminID,
		assignment.AssignedAt,
	).Scan(&assignment.ID)
}

func (r *assignmentRepository) AppendLog(ctx context.Context, entry *domain.AssignmentLog) error {
	const query = `
        INSERT INTO assignment_logs (complaint_id, previous_staff_id, new_staff_id, assigned_by_admin_id, assignment_type, reason)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.PreviousStaffID,
		entry.NewStaffID,
		entry.AssignedByAdminID,
		entry.AssignmentType,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *assignmentRepository) ListLogsByComplaint(ctx context.Context, complaintID string) ([]domain.AssignmentLog, error) {
	const query = `
        SELECT id, complaint_id, previous_staff_id, new_staff_id, assigned_by_admin_id, assignment_type, reason, created_at
        FROM assignment_logs
        WHERE complaint_id=$1
        ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentLog
	for rows.Next() {
		var entry domain.AssignmentLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.PreviousStaffID,
			&entry.NewStaffID,
			&entry.AssignedByAdminID,
			&entry.AssignmentType,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
