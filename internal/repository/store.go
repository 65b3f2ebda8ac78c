package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier abstracts pgxpool.Pool and pgx.Tx so repositories work both inside
// and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles all repositories behind one handle. WithinTx yields a store
// whose repositories share a single database transaction; any error rolls
// back every write.
type Store interface {
	Complaints() ComplaintRepository
	Staff() StaffRepository
	Departments() DepartmentRepository
	Assignments() AssignmentRepository
	StatusUpdates() StatusUpdateRepository
	SLALogs() SLALogRepository
	AuditLogs() AuditLogRepository
	Workload() WorkloadRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgxStore struct {
	db   Querier
	pool *pgxpool.Pool
}

// NewStore builds a Store over a pgx pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgxStore{db: pool, pool: pool}
}

func (s *pgxStore) Complaints() ComplaintRepository        { return &complaintRepository{db: s.db} }
func (s *pgxStore) Staff() StaffRepository                 { return &staffRepository{db: s.db} }
func (s *pgxStore) Departments() DepartmentRepository      { return &departmentRepository{db: s.db} }
func (s *pgxStore) Assignments() AssignmentRepository      { return &assignmentRepository{db: s.db} }
func (s *pgxStore) StatusUpdates() StatusUpdateRepository  { return &statusUpdateRepository{db: s.db} }
func (s *pgxStore) SLALogs() SLALogRepository              { return &slaLogRepository{db: s.db} }
func (s *pgxStore) AuditLogs() AuditLogRepository          { return &auditLogRepository{db: s.db} }
func (s *pgxStore) Workload() WorkloadRepository           { return &workloadRepository{db: s.db} }

// WithinTx runs fn against a transaction-bound store. Nested calls reuse the
// enclosing transaction.
func (s *pgxStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// already inside a transaction
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	txStore := &pgxStore{db: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
