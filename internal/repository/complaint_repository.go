package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	CitizenID    *string
	StaffID      *string
	DepartmentID *string
	Statuses     []domain.ComplaintStatus
	Priorities   []domain.PriorityLevel
	SLAStatuses  []domain.SLAStatus
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// GetByIDForUpdate locks the complaint row for the duration of the
	// enclosing transaction, serializing concurrent assignment and SLA
	// mutations per complaint.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error)
	UpdateSLA(ctx context.Context, id string, dueAt *time.Time, status domain.SLAStatus) error
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	// ListOverdue returns active complaints whose deadline has passed but
	// whose stored classification is not yet BREACHED.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Complaint, error)
}

type complaintRepository struct {
	db Querier
}

// NewComplaintRepository instantiates the repository.
func NewComplaintRepository(db Querier) ComplaintRepository {
	return &complaintRepository{db: db}
}

const complaintColumns = `id, citizen_id, title, description, category, location, status, priority,
               staff_id, department_id, sla_due_at, sla_status, created_at, updated_at, closed_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (citizen_id, title, description, category, location, status, priority, staff_id, department_id, sla_due_at, sla_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		complaint.CitizenID,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Location,
		complaint.Status,
		complaint.Priority,
		complaint.StaffID,
		complaint.DepartmentID,
		complaint.SLADueAt,
		complaint.SLAStatus,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, priority=$2, staff_id=$3, department_id=$4,
            sla_due_at=$5, sla_status=$6, closed_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		complaint.Status,
		complaint.Priority,
		complaint.StaffID,
		complaint.DepartmentID,
		complaint.SLADueAt,
		complaint.SLAStatus,
		complaint.ClosedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1`, complaintColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *complaintRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1 FOR UPDATE`, complaintColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&complaint.ID,
		&complaint.CitizenID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Location,
		&complaint.Status,
		&complaint.Priority,
		&complaint.StaffID,
		&complaint.DepartmentID,
		&complaint.SLADueAt,
		&complaint.SLAStatus,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) UpdateSLA(ctx context.Context, id string, dueAt *time.Time, status domain.SLAStatus) error {
	const query = `UPDATE complaints SET sla_due_at=$1, sla_status=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, dueAt, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := fmt.Sprintf(`SELECT %s FROM complaints`, complaintColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CitizenID != nil {
		args = append(args, *filter.CitizenID)
		clauses = append(clauses, fmt.Sprintf("citizen_id=$%d", len(args)))
	}
	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		clauses = append(clauses, fmt.Sprintf("staff_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.SLAStatuses) > 0 {
		placeholders := make([]string, len(filter.SLAStatuses))
		for i, status := range filter.SLAStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("sla_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Complaint, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
        SELECT %s FROM complaints
        WHERE sla_due_at IS NOT NULL AND sla_due_at < $1
          AND sla_status <> $2
          AND status IN ($3,$4,$5)
        ORDER BY sla_due_at ASC
        LIMIT %d`, complaintColumns, limit)
	rows, err := r.db.Query(ctx, query, now, domain.SLABreached,
		domain.ComplaintStatusPending, domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.CitizenID,
			&complaint.Title,
			&complaint.Description,
			&complaint.Category,
			&complaint.Location,
			&complaint.Status,
			&complaint.Priority,
			&complaint.StaffID,
			&complaint.DepartmentID,
			&complaint.SLADueAt,
			&complaint.SLAStatus,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
			&complaint.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
