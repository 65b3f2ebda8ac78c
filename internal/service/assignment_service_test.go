package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/repository"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newAssignmentService(store repository.Store, settings SettingsReader) *AssignmentService {
	svc := NewAssignmentService(AssignmentDependencies{
		Store:    store,
		Settings: settings,
		Logger:   zap.NewNop(),
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestAssignHappyPath(t *testing.T) {
	store := newFakeStore()
	staff := store.addStaff(&domain.StaffMember{ID: "s1", Name: "Amira", Active: true})
	complaint := store.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityHigh,
		Status:    domain.ComplaintStatusPending,
		CreatedAt: fixedNow.Add(-2 * time.Hour),
	})

	admin := "admin-1"
	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	result, err := svc.Assign(context.Background(), AssignInput{
		ComplaintID:   complaint.ID,
		StaffID:       staff.ID,
		ActingAdminID: &admin,
		Reason:        "manual routing",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ComplaintStatusAssigned, result.Complaint.Status)
	require.NotNil(t, result.Complaint.StaffID)
	assert.Equal(t, "s1", *result.Complaint.StaffID)
	assert.Nil(t, result.PreviousStaffID)
	assert.Equal(t, domain.AssignmentTypeManual, result.AssignmentType)

	// The SLA re-anchors to the assignment time on first assignment.
	require.NotNil(t, result.Complaint.SLADueAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), *result.Complaint.SLADueAt)
	assert.Equal(t, domain.SLAOnTime, result.Complaint.SLAStatus)

	assert.Equal(t, 1, store.staff["s1"].ActiveCases)
	require.NotNil(t, store.staff["s1"].LastAssignedAt)
	assert.Equal(t, fixedNow, *store.staff["s1"].LastAssignedAt)

	require.Len(t, store.assignmentLogs, 1)
	log := store.assignmentLogs[0]
	assert.Equal(t, domain.AssignmentTypeManual, log.AssignmentType)
	assert.Nil(t, log.PreviousStaffID)
	assert.Equal(t, "s1", log.NewStaffID)

	require.Len(t, store.statusUpdates, 1)
	assert.Equal(t, domain.ActorRoleAdmin, store.statusUpdates[0].Role)
	assert.Equal(t, domain.ComplaintStatusAssigned, store.statusUpdates[0].Status)
}

func TestReassignmentMovesCounters(t *testing.T) {
	store := newFakeStore()
	s1 := store.addStaff(&domain.StaffMember{ID: "s1", Active: true, ActiveCases: 1})
	store.addStaff(&domain.StaffMember{ID: "s2", Active: true})

	dueAt := fixedNow.Add(40 * time.Hour)
	complaint := store.addComplaint(&domain.Complaint{
		ID:       "c1",
		Priority: domain.PriorityMedium,
		Status:   domain.ComplaintStatusAssigned,
		StaffID:  &s1.ID,
		SLADueAt: &dueAt,
	})
	store.assignments["c1"] = &domain.StaffAssignment{
		ID: "a1", ComplaintID: "c1", StaffID: "s1", AssignedAt: fixedNow.Add(-8 * time.Hour),
	}

	admin := "admin-1"
	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	result, err := svc.Assign(context.Background(), AssignInput{
		ComplaintID:   complaint.ID,
		StaffID:       "s2",
		ActingAdminID: &admin,
		Reason:        "rebalance",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AssignmentTypeReassignment, result.AssignmentType)
	require.NotNil(t, result.PreviousStaffID)
	assert.Equal(t, "s1", *result.PreviousStaffID)

	// One case moved: net active load is conserved.
	assert.Equal(t, 0, store.staff["s1"].ActiveCases)
	assert.Equal(t, 1, store.staff["s2"].ActiveCases)

	// Reassignment keeps the original deadline.
	require.NotNil(t, result.Complaint.SLADueAt)
	assert.Equal(t, dueAt, *result.Complaint.SLADueAt)

	// The current-assignment row is replaced, not duplicated.
	assert.Equal(t, "s2", store.assignments["c1"].StaffID)
	require.Len(t, store.assignmentLogs, 1)
	assert.Equal(t, domain.AssignmentTypeReassignment, store.assignmentLogs[0].AssignmentType)
}

func TestAssignSameStaffConflict(t *testing.T) {
	store := newFakeStore()
	s1 := store.addStaff(&domain.StaffMember{ID: "s1", Active: true, ActiveCases: 1})
	store.addComplaint(&domain.Complaint{
		ID:      "c1",
		Status:  domain.ComplaintStatusAssigned,
		StaffID: &s1.ID,
	})
	store.assignments["c1"] = &domain.StaffAssignment{ID: "a1", ComplaintID: "c1", StaffID: "s1", AssignedAt: fixedNow}

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	_, err := svc.Assign(context.Background(), AssignInput{ComplaintID: "c1", StaffID: "s1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	// Nothing moved.
	assert.Equal(t, 1, store.staff["s1"].ActiveCases)
	assert.Empty(t, store.assignmentLogs)
	assert.Empty(t, store.statusUpdates)
}

func TestAssignCrossDepartment(t *testing.T) {
	store := newFakeStore()
	d1, d2 := "d1", "d2"
	store.addStaff(&domain.StaffMember{ID: "s2", Active: true, DepartmentID: &d2})
	store.addComplaint(&domain.Complaint{
		ID:           "c1",
		Status:       domain.ComplaintStatusPending,
		Priority:     domain.PriorityMedium,
		DepartmentID: &d1,
	})

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})

	_, err := svc.Assign(context.Background(), AssignInput{ComplaintID: "c1", StaffID: "s2"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	result, err := svc.Assign(context.Background(), AssignInput{
		ComplaintID:          "c1",
		StaffID:              "s2",
		AllowCrossDepartment: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Complaint.DepartmentID)
	assert.Equal(t, d2, *result.Complaint.DepartmentID)
}

func TestAssignRejectsTerminalStatus(t *testing.T) {
	store := newFakeStore()
	store.addStaff(&domain.StaffMember{ID: "s1", Active: true})
	store.addComplaint(&domain.Complaint{ID: "c1", Status: domain.ComplaintStatusClosed})

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	_, err := svc.Assign(context.Background(), AssignInput{ComplaintID: "c1", StaffID: "s1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAssignNotFound(t *testing.T) {
	store := newFakeStore()
	store.addStaff(&domain.StaffMember{ID: "s1", Active: true})
	store.addComplaint(&domain.Complaint{ID: "c1", Status: domain.ComplaintStatusPending})

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})

	_, err := svc.Assign(context.Background(), AssignInput{ComplaintID: "missing", StaffID: "s1"})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = svc.Assign(context.Background(), AssignInput{ComplaintID: "c1", StaffID: "missing"})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAssignInactiveStaffConflict(t *testing.T) {
	store := newFakeStore()
	store.addStaff(&domain.StaffMember{ID: "s1", Active: false})
	store.addComplaint(&domain.Complaint{ID: "c1", Status: domain.ComplaintStatusPending})

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	_, err := svc.Assign(context.Background(), AssignInput{ComplaintID: "c1", StaffID: "s1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAutoAssignDisabled(t *testing.T) {
	store := newFakeStore()
	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: false})

	_, err := svc.AutoAssign(context.Background(), "c1", nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAutoAssignPicksLeastLoaded(t *testing.T) {
	store := newFakeStore()
	store.addStaff(&domain.StaffMember{ID: "s1", Active: true, ActiveCases: 4})
	store.addStaff(&domain.StaffMember{ID: "s2", Active: true, ActiveCases: 1})
	store.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityMedium,
		Status:    domain.ComplaintStatusPending,
		CreatedAt: fixedNow.Add(-time.Hour),
	})

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	result, err := svc.AutoAssign(context.Background(), "c1", nil, "")
	require.NoError(t, err)

	require.NotNil(t, result.Complaint.StaffID)
	assert.Equal(t, "s2", *result.Complaint.StaffID)
	assert.Equal(t, domain.AssignmentTypeAuto, result.AssignmentType)
	assert.Equal(t, 2, store.staff["s2"].ActiveCases)

	// A system-attributed timeline entry, no admin involved.
	require.Len(t, store.statusUpdates, 1)
	assert.Equal(t, domain.ActorRoleSystem, store.statusUpdates[0].Role)
}

func TestAutoAssignNoEligibleStaff(t *testing.T) {
	store := newFakeStore()
	store.addComplaint(&domain.Complaint{ID: "c1", Status: domain.ComplaintStatusPending, Priority: domain.PriorityMedium})

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	_, err := svc.AutoAssign(context.Background(), "c1", nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NO_ELIGIBLE_STAFF"))
	assert.Empty(t, store.assignments)
	assert.Empty(t, store.assignmentLogs)
}

// staleStore bumps the target staff member's active-case count the first
// time the locked read happens, simulating a concurrent assignment landing
// between selection and the transaction.
type staleStore struct {
	*fakeStore
	target string
	bumps  int
	max    int
}

func (s *staleStore) Staff() repository.StaffRepository {
	return &staleStaff{StaffRepository: s.fakeStore.Staff(), owner: s}
}

func (s *staleStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

type staleStaff struct {
	repository.StaffRepository
	owner *staleStore
}

func (r *staleStaff) GetByIDForUpdate(ctx context.Context, id string) (*domain.StaffMember, error) {
	if id == r.owner.target && r.owner.bumps < r.owner.max {
		r.owner.fakeStore.staff[id].ActiveCases++
		r.owner.bumps++
	}
	return r.StaffRepository.GetByIDForUpdate(ctx, id)
}

func TestAutoAssignRetriesStaleSelection(t *testing.T) {
	inner := newFakeStore()
	inner.addStaff(&domain.StaffMember{ID: "s1", Active: true})
	inner.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityMedium,
		Status:    domain.ComplaintStatusPending,
		CreatedAt: fixedNow.Add(-time.Hour),
	})
	store := &staleStore{fakeStore: inner, target: "s1", max: 1}

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	result, err := svc.AutoAssign(context.Background(), "c1", nil, "")
	require.NoError(t, err)

	require.NotNil(t, result.Complaint.StaffID)
	assert.Equal(t, "s1", *result.Complaint.StaffID)
	// One concurrent bump plus the real increment; exactly one log row.
	assert.Equal(t, 2, inner.staff["s1"].ActiveCases)
	assert.Len(t, inner.assignmentLogs, 1)
}

func TestAutoAssignGivesUpAfterRetries(t *testing.T) {
	inner := newFakeStore()
	inner.addStaff(&domain.StaffMember{ID: "s1", Active: true})
	inner.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityMedium,
		Status:    domain.ComplaintStatusPending,
		CreatedAt: fixedNow.Add(-time.Hour),
	})
	store := &staleStore{fakeStore: inner, target: "s1", max: 100}

	svc := newAssignmentService(store, &fakeSettings{method: domain.MethodWorkload, enabled: true})
	_, err := svc.AutoAssign(context.Background(), "c1", nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	assert.Empty(t, inner.assignments)
	assert.Empty(t, inner.assignmentLogs)
}
