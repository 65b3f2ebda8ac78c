package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/repository"
)

// fakeStore is an in-memory repository.Store for service tests. WithinTx
// runs the callback against the same state without rollback, so tests only
// assert on operations that fail before their first write.
type fakeStore struct {
	complaints      map[string]*domain.Complaint
	staff           map[string]*domain.StaffMember
	emergencyCases  map[string]int
	departments     []*domain.Department
	assignments     map[string]*domain.StaffAssignment
	assignmentLogs  []domain.AssignmentLog
	statusUpdates   []domain.StatusUpdate
	slaChanges      []domain.SLAChangeLog
	priorityChanges []domain.PriorityChangeLog
	auditLogs       []domain.AuditLog
	workRows        []repository.ComplaintWorkRow
	seq             int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		complaints:     map[string]*domain.Complaint{},
		staff:          map[string]*domain.StaffMember{},
		emergencyCases: map[string]int{},
		assignments:    map[string]*domain.StaffAssignment{},
	}
}

func (f *fakeStore) nextID() string {
	f.seq++
	return fmt.Sprintf("id-%d", f.seq)
}

func (f *fakeStore) addComplaint(c *domain.Complaint) *domain.Complaint {
	if c.ID == "" {
		c.ID = f.nextID()
	}
	if c.Status == "" {
		c.Status = domain.ComplaintStatusPending
	}
	if c.SLAStatus == "" {
		c.SLAStatus = domain.SLAOnTime
	}
	f.complaints[c.ID] = c
	return c
}

func (f *fakeStore) addStaff(s *domain.StaffMember) *domain.StaffMember {
	if s.ID == "" {
		s.ID = f.nextID()
	}
	if s.Role == "" {
		s.Role = domain.StaffRoleStaff
	}
	f.staff[s.ID] = s
	return s
}

func (f *fakeStore) Complaints() repository.ComplaintRepository       { return &fakeComplaints{f} }
func (f *fakeStore) Staff() repository.StaffRepository               { return &fakeStaff{f} }
func (f *fakeStore) Departments() repository.DepartmentRepository    { return &fakeDepartments{f} }
func (f *fakeStore) Assignments() repository.AssignmentRepository    { return &fakeAssignments{f} }
func (f *fakeStore) StatusUpdates() repository.StatusUpdateRepository { return &fakeStatusUpdates{f} }
func (f *fakeStore) SLALogs() repository.SLALogRepository            { return &fakeSLALogs{f} }
func (f *fakeStore) AuditLogs() repository.AuditLogRepository        { return &fakeAuditLogs{f} }
func (f *fakeStore) Workload() repository.WorkloadRepository         { return &fakeWorkload{f} }

func (f *fakeStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(f)
}

type fakeComplaints struct{ s *fakeStore }

func (r *fakeComplaints) Create(_ context.Context, complaint *domain.Complaint) error {
	complaint.ID = r.s.nextID()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now()
	}
	complaint.UpdatedAt = complaint.CreatedAt
	clone := *complaint
	r.s.complaints[complaint.ID] = &clone
	return nil
}

func (r *fakeComplaints) Update(_ context.Context, complaint *domain.Complaint) error {
	if _, ok := r.s.complaints[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *complaint
	r.s.complaints[complaint.ID] = &clone
	return nil
}

func (r *fakeComplaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	c, ok := r.s.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (r *fakeComplaints) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeComplaints) UpdateSLA(_ context.Context, id string, dueAt *time.Time, status domain.SLAStatus) error {
	c, ok := r.s.complaints[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.SLADueAt = dueAt
	c.SLAStatus = status
	return nil
}

func (r *fakeComplaints) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	var out []domain.Complaint
	for _, c := range r.s.complaints {
		if filter.CitizenID != nil && c.CitizenID != *filter.CitizenID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeComplaints) ListOverdue(_ context.Context, now time.Time, limit int) ([]domain.Complaint, error) {
	var out []domain.Complaint
	for _, c := range r.s.complaints {
		if !domain.IsActiveStatus(c.Status) || c.SLADueAt == nil || c.SLAStatus == domain.SLABreached {
			continue
		}
		if now.After(*c.SLADueAt) {
			out = append(out, *c)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeStaff struct{ s *fakeStore }

func (r *fakeStaff) Create(_ context.Context, staff *domain.StaffMember) error {
	r.s.addStaff(staff)
	return nil
}

func (r *fakeStaff) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	s, ok := r.s.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (r *fakeStaff) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	for _, s := range r.s.staff {
		if s.Email == email {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaff) GetByIDForUpdate(ctx context.Context, id string) (*domain.StaffMember, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeStaff) Directory(_ context.Context, filter repository.DirectoryFilter) ([]domain.StaffDirectoryEntry, error) {
	var out []domain.StaffDirectoryEntry
	for _, s := range r.s.staff {
		if !s.Active || s.Role != domain.StaffRoleStaff {
			continue
		}
		if filter.DepartmentID != nil {
			if s.DepartmentID == nil || *s.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		out = append(out, domain.StaffDirectoryEntry{
			StaffID:        s.ID,
			Name:           s.Name,
			DepartmentID:   s.DepartmentID,
			ActiveCases:    s.ActiveCases,
			EmergencyCases: r.s.emergencyCases[s.ID],
			LastAssignedAt: s.LastAssignedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out, nil
}

func (r *fakeStaff) IncrementActiveCases(_ context.Context, id string, assignedAt time.Time) error {
	s, ok := r.s.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.ActiveCases++
	s.LastAssignedAt = &assignedAt
	return nil
}

func (r *fakeStaff) DecrementActiveCases(_ context.Context, id string) error {
	s, ok := r.s.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if s.ActiveCases > 0 {
		s.ActiveCases--
	}
	return nil
}

func (r *fakeStaff) RecordCompletion(_ context.Context, id string) error {
	s, ok := r.s.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if s.ActiveCases > 0 {
		s.ActiveCases--
	}
	s.CompletedCases++
	return nil
}

type fakeDepartments struct{ s *fakeStore }

func (r *fakeDepartments) Create(_ context.Context, department *domain.Department) error {
	if department.ID == "" {
		department.ID = r.s.nextID()
	}
	r.s.departments = append(r.s.departments, department)
	return nil
}

func (r *fakeDepartments) GetByID(_ context.Context, id string) (*domain.Department, error) {
	for _, d := range r.s.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDepartments) FindByCategory(_ context.Context, category string) (*domain.Department, error) {
	var best *domain.Department
	lowered := strings.ToLower(category)
	for _, d := range r.s.departments {
		if !d.IsActive {
			continue
		}
		name := strings.ToLower(d.Name)
		if strings.Contains(lowered, name) || strings.Contains(name, lowered) {
			if best == nil || len(d.Name) > len(best.Name) {
				best = d
			}
		}
	}
	if best == nil {
		return nil, pgx.ErrNoRows
	}
	return best, nil
}

func (r *fakeDepartments) List(_ context.Context) ([]domain.Department, error) {
	out := make([]domain.Department, 0, len(r.s.departments))
	for _, d := range r.s.departments {
		out = append(out, *d)
	}
	return out, nil
}

type fakeAssignments struct{ s *fakeStore }

func (r *fakeAssignments) GetCurrentByComplaint(_ context.Context, complaintID string) (*domain.StaffAssignment, error) {
	a, ok := r.s.assignments[complaintID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAssignments) Upsert(_ context.Context, assignment *domain.StaffAssignment) error {
	if existing, ok := r.s.assignments[assignment.ComplaintID]; ok {
		assignment.ID = existing.ID
	} else {
		assignment.ID = r.s.nextID()
	}
	clone := *assignment
	r.s.assignments[assignment.ComplaintID] = &clone
	return nil
}

func (r *fakeAssignments) AppendLog(_ context.Context, entry *domain.AssignmentLog) error {
	entry.ID = r.s.nextID()
	entry.CreatedAt = time.Now()
	r.s.assignmentLogs = append(r.s.assignmentLogs, *entry)
	return nil
}

func (r *fakeAssignments) ListLogsByComplaint(_ context.Context, complaintID string) ([]domain.AssignmentLog, error) {
	var out []domain.AssignmentLog
	for _, l := range r.s.assignmentLogs {
		if l.ComplaintID == complaintID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeStatusUpdates struct{ s *fakeStore }

func (r *fakeStatusUpdates) Append(_ context.Context, update *domain.StatusUpdate) error {
	update.ID = r.s.nextID()
	update.CreatedAt = time.Now()
	r.s.statusUpdates = append(r.s.statusUpdates, *update)
	return nil
}

func (r *fakeStatusUpdates) ListByComplaint(_ context.Context, complaintID string) ([]domain.StatusUpdate, error) {
	var out []domain.StatusUpdate
	for _, u := range r.s.statusUpdates {
		if u.ComplaintID == complaintID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeSLALogs struct{ s *fakeStore }

func (r *fakeSLALogs) AppendSLAChange(_ context.Context, entry *domain.SLAChangeLog) error {
	entry.ID = r.s.nextID()
	entry.CreatedAt = time.Now()
	r.s.slaChanges = append(r.s.slaChanges, *entry)
	return nil
}

func (r *fakeSLALogs) AppendPriorityChange(_ context.Context, entry *domain.PriorityChangeLog) error {
	entry.ID = r.s.nextID()
	entry.CreatedAt = time.Now()
	r.s.priorityChanges = append(r.s.priorityChanges, *entry)
	return nil
}

func (r *fakeSLALogs) ListSLAChangesByComplaint(_ context.Context, complaintID string) ([]domain.SLAChangeLog, error) {
	var out []domain.SLAChangeLog
	for _, l := range r.s.slaChanges {
		if l.ComplaintID == complaintID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeAuditLogs struct{ s *fakeStore }

func (r *fakeAuditLogs) Append(_ context.Context, entry *domain.AuditLog) error {
	entry.ID = r.s.nextID()
	entry.CreatedAt = time.Now()
	r.s.auditLogs = append(r.s.auditLogs, *entry)
	return nil
}

type fakeWorkload struct{ s *fakeStore }

func (r *fakeWorkload) ComplaintRows(_ context.Context, filter repository.WorkloadFilter) ([]repository.ComplaintWorkRow, error) {
	var out []repository.ComplaintWorkRow
	for _, row := range r.s.workRows {
		if filter.Since != nil && row.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.StaffID != nil && row.StaffID != *filter.StaffID {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// fakeSettings is a static SettingsReader.
type fakeSettings struct {
	method  domain.AssignmentMethod
	enabled bool
}

func (f *fakeSettings) AssignmentMethod(context.Context) domain.AssignmentMethod { return f.method }
func (f *fakeSettings) AutoAssignEnabled(context.Context) bool                   { return f.enabled }
