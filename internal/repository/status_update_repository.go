package repository

import (
	"context"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// StatusUpdateRepository stores the append-only complaint timeline.
type StatusUpdateRepository interface {
	Append(ctx context.Context, update *domain.StatusUpdate) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusUpdate, error)
}

type statusUpdateRepository struct {
	db Querier
}

// NewStatusUpdateRepository instantiates the repository.
func NewStatusUpdateRepository(db Querier) StatusUpdateRepository {
	return &statusUpdateRepository{db: db}
}

func (r *statusUpdateRepository) Append(ctx context.Context, update *domain.StatusUpdate) error {
	const query = `
        INSERT INTO status_updates (complaint_id, updated_by_id, role, status, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		update.ComplaintID,
		update.UpdatedByID,
		update.Role,
		update.Status,
		update.Notes,
	).Scan(&update.ID, &update.CreatedAt)
}

func (r *statusUpdateRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusUpdate, error) {
	const query = `
        SELECT id, complaint_id, updated_by_id, role, status, notes, created_at
        FROM status_updates
        WHERE complaint_id=$1
        ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusUpdate
	for rows.Next() {
		var update domain.StatusUpdate
		if err := rows.Scan(
			&update.ID,
			&update.ComplaintID,
			&update.UpdatedByID,
			&update.Role,
			&update.Status,
			&update.Notes,
			&update.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}
