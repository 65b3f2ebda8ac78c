package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// DirectoryFilter narrows the staff directory view for the selector.
type DirectoryFilter struct {
	DepartmentID *string
}

// StaffRepository handles persistence for staff members, including the
// workload counters the assignment transaction maintains.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	// GetByIDForUpdate locks the staff row so the selection observed by the
	// auto-assign path can be revalidated before the counter increment.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.StaffMember, error)
	// Directory projects active staff with their current active-case count,
	// last-assigned timestamp and active emergency-case count.
	Directory(ctx context.Context, filter DirectoryFilter) ([]domain.StaffDirectoryEntry, error)
	IncrementActiveCases(ctx context.Context, id string, assignedAt time.Time) error
	// DecrementActiveCases floors at zero.
	DecrementActiveCases(ctx context.Context, id string) error
	// RecordCompletion moves one case from active to completed.
	RecordCompletion(ctx context.Context, id string) error
}

type staffRepository struct {
	db Querier
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db Querier) StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, name, email, password_hash, role, department_id, active_flag,
               active_cases, completed_cases, last_assigned_at, created_at, updated_at`

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (name, email, password_hash, role, department_id, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.DepartmentID,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_members WHERE id=$1`, staffColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_members WHERE email=$1`, staffColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *staffRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.StaffMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_members WHERE id=$1 FOR UPDATE`, staffColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.DepartmentID,
		&staff.Active,
		&staff.ActiveCases,
		&staff.CompletedCases,
		&staff.LastAssignedAt,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) Directory(ctx context.Context, filter DirectoryFilter) ([]domain.StaffDirectoryEntry, error) {
	query := `
        SELECT s.id, s.name, s.department_id, s.active_cases, s.last_assigned_at,
               COALESCE(e.emergency_count, 0) AS emergency_cases
        FROM staff_members s
        LEFT JOIN (
            SELECT staff_id, COUNT(*) AS emergency_count
            FROM complaints
            WHERE priority = $1 AND status IN ($2,$3,$4)
            GROUP BY staff_id
        ) e ON e.staff_id = s.id
        WHERE s.role = $5 AND s.active_flag = TRUE`
	args := []any{
		domain.PriorityEmergency,
		domain.ComplaintStatusPending,
		domain.ComplaintStatusAssigned,
		domain.ComplaintStatusInProgress,
		domain.StaffRoleStaff,
	}
	clauses := []string{}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("s.department_id=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffDirectoryEntry
	for rows.Next() {
		var entry domain.StaffDirectoryEntry
		if err := rows.Scan(
			&entry.StaffID,
			&entry.Name,
			&entry.DepartmentID,
			&entry.ActiveCases,
			&entry.LastAssignedAt,
			&entry.EmergencyCases,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *staffRepository) IncrementActiveCases(ctx context.Context, id string, assignedAt time.Time) error {
	const query = `
        UPDATE staff_members
        SET active_cases = active_cases + 1, last_assigned_at = $1, updated_at = NOW()
        WHERE id = $2`
	return r.execOne(ctx, query, assignedAt, id)
}

func (r *staffRepository) DecrementActiveCases(ctx context.Context, id string) error {
	const query = `
        UPDATE staff_members
        SET active_cases = GREATEST(active_cases - 1, 0), updated_at = NOW()
        WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *staffRepository) RecordCompletion(ctx context.Context, id string) error {
	const query = `
        UPDATE staff_members
        SET active_cases = GREATEST(active_cases - 1, 0),
            completed_cases = completed_cases + 1,
            updated_at = NOW()
        WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *staffRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
