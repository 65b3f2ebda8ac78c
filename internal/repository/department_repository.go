package repository

import (
	"context"
	"strings"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// DepartmentRepository handles persistence for departments.
type DepartmentRepository interface {
	Create(ctx context.Context, department *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	// FindByCategory resolves a department by fuzzy containment against the
	// complaint category. Returns pgx.ErrNoRows when nothing matches; the
	// caller treats that as "proceed department-less", not an error.
	FindByCategory(ctx context.Context, category string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	db Querier
}

// NewDepartmentRepository instantiates the repository.
func NewDepartmentRepository(db Querier) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, department *domain.Department) error {
	const query = `
        INSERT INTO departments (name, is_active)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, department.Name, department.IsActive).
		Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `SELECT id, name, is_active, created_at, updated_at FROM departments WHERE id=$1`
	var department domain.Department
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&department.ID,
		&department.Name,
		&department.IsActive,
		&department.CreatedAt,
		&department.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) FindByCategory(ctx context.Context, category string) (*domain.Department, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM departments
        WHERE is_active = TRUE
          AND (LOWER($1) LIKE '%' || LOWER(name) || '%' OR LOWER(name) LIKE '%' || LOWER($1) || '%')
        ORDER BY LENGTH(name) DESC
        LIMIT 1`
	var department domain.Department
	if err := r.db.QueryRow(ctx, query, strings.TrimSpace(category)).Scan(
		&department.ID,
		&department.Name,
		&department.IsActive,
		&department.CreatedAt,
		&department.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `SELECT id, name, is_active, created_at, updated_at FROM departments ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var department domain.Department
		if err := rows.Scan(
			&department.ID,
			&department.Name,
			&department.IsActive,
			&department.CreatedAt,
			&department.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, department)
	}
	return result, rows.Err()
}
