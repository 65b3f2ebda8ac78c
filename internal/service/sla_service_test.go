package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/domain"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

func newSLAService(store *fakeStore, now time.Time) *SLAService {
	svc := NewSLAService(store, nil, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestChangePriorityReanchorsFromAssignment(t *testing.T) {
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	assigned := created.Add(time.Hour)
	now := assigned.Add(time.Hour)

	store := newFakeStore()
	dueAt := assigned.Add(48 * time.Hour)
	store.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityMedium,
		Status:    domain.ComplaintStatusAssigned,
		SLADueAt:  &dueAt,
		SLAStatus: domain.SLAOnTime,
		CreatedAt: created,
	})
	store.assignments["c1"] = &domain.StaffAssignment{
		ID: "a1", ComplaintID: "c1", StaffID: "s1", AssignedAt: assigned,
	}

	svc := newSLAService(store, now)
	result, err := svc.ChangePriority(context.Background(), ChangePriorityInput{
		ComplaintID: "c1",
		NewPriority: domain.PriorityEmergency,
		ActorID:     "admin-1",
		Role:        domain.ActorRoleAdmin,
		Reason:      "gas leak reported",
	})
	require.NoError(t, err)

	// The deadline recomputes from the assignment anchor, not from now.
	require.NotNil(t, result.SLADueAt)
	assert.Equal(t, assigned.Add(4*time.Hour), *result.SLADueAt)
	// Three hours left out of a four hour warning window.
	assert.Equal(t, domain.SLAWarning, result.SLAStatus)
	assert.Equal(t, domain.PriorityEmergency, result.Priority)

	require.Len(t, store.slaChanges, 1)
	assert.Equal(t, domain.SLAOnTime, store.slaChanges[0].OldStatus)
	assert.Equal(t, domain.SLAWarning, store.slaChanges[0].NewStatus)

	require.Len(t, store.priorityChanges, 1)
	assert.Equal(t, domain.PriorityMedium, store.priorityChanges[0].OldPriority)
	assert.Equal(t, domain.PriorityEmergency, store.priorityChanges[0].NewPriority)

	require.Len(t, store.statusUpdates, 1)
	require.NotNil(t, store.statusUpdates[0].Notes)
	assert.Contains(t, *store.statusUpdates[0].Notes, "Priority changed from MEDIUM to EMERGENCY")
	// A priority change is not a status transition.
	assert.Equal(t, domain.ComplaintStatusAssigned, store.statusUpdates[0].Status)
}

func TestChangePriorityAnchorsCreationWhenNeverAssigned(t *testing.T) {
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore()
	dueAt := created.Add(48 * time.Hour)
	store.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityMedium,
		Status:    domain.ComplaintStatusPending,
		SLADueAt:  &dueAt,
		SLAStatus: domain.SLAOnTime,
		CreatedAt: created,
	})

	svc := newSLAService(store, created.Add(time.Hour))
	result, err := svc.ChangePriority(context.Background(), ChangePriorityInput{
		ComplaintID: "c1",
		NewPriority: domain.PriorityLow,
		ActorID:     "admin-1",
		Role:        domain.ActorRoleAdmin,
	})
	require.NoError(t, err)
	require.NotNil(t, result.SLADueAt)
	assert.Equal(t, created.Add(72*time.Hour), *result.SLADueAt)
}

func TestChangePriorityIdempotentNoOp(t *testing.T) {
	store := newFakeStore()
	store.addComplaint(&domain.Complaint{
		ID:       "c1",
		Priority: domain.PriorityHigh,
		Status:   domain.ComplaintStatusPending,
	})

	svc := newSLAService(store, time.Now())
	result, err := svc.ChangePriority(context.Background(), ChangePriorityInput{
		ComplaintID: "c1",
		NewPriority: domain.PriorityHigh,
		ActorID:     "admin-1",
		Role:        domain.ActorRoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, result.Priority)

	// Same priority appends nothing.
	assert.Empty(t, store.slaChanges)
	assert.Empty(t, store.priorityChanges)
	assert.Empty(t, store.statusUpdates)
}

func TestChangePriorityNoSLALogWhenClassificationHolds(t *testing.T) {
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore()
	dueAt := created.Add(72 * time.Hour)
	store.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityLow,
		Status:    domain.ComplaintStatusPending,
		SLADueAt:  &dueAt,
		SLAStatus: domain.SLAOnTime,
		CreatedAt: created,
	})

	svc := newSLAService(store, created.Add(time.Hour))
	_, err := svc.ChangePriority(context.Background(), ChangePriorityInput{
		ComplaintID: "c1",
		NewPriority: domain.PriorityMedium,
		ActorID:     "admin-1",
		Role:        domain.ActorRoleAdmin,
	})
	require.NoError(t, err)

	// ON_TIME before and after: the SLA change log stays empty, the
	// priority change log does not.
	assert.Empty(t, store.slaChanges)
	assert.Len(t, store.priorityChanges, 1)
}

func TestChangePriorityUnknownLevel(t *testing.T) {
	store := newFakeStore()
	svc := newSLAService(store, time.Now())
	_, err := svc.ChangePriority(context.Background(), ChangePriorityInput{
		ComplaintID: "c1",
		NewPriority: domain.PriorityLevel("CRITICAL"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestChangePriorityNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newSLAService(store, time.Now())
	_, err := svc.ChangePriority(context.Background(), ChangePriorityInput{
		ComplaintID: "missing",
		NewPriority: domain.PriorityHigh,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestOverrideDueDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore()
	dueAt := now.Add(time.Hour)
	store.addComplaint(&domain.Complaint{
		ID:        "c1",
		Priority:  domain.PriorityMedium,
		Status:    domain.ComplaintStatusAssigned,
		SLADueAt:  &dueAt,
		SLAStatus: domain.SLAWarning,
		CreatedAt: now.Add(-40 * time.Hour),
	})

	svc := newSLAService(store, now)
	newDue := now.Add(48 * time.Hour)
	result, err := svc.OverrideDueDate(context.Background(), OverrideDueDateInput{
		ComplaintID: "c1",
		DueAt:       newDue,
		ActorID:     "admin-1",
		Role:        domain.ActorRoleAdmin,
		Reason:      "contractor delay",
	})
	require.NoError(t, err)

	require.NotNil(t, result.SLADueAt)
	assert.Equal(t, newDue, *result.SLADueAt)
	assert.Equal(t, domain.SLAOnTime, result.SLAStatus)
	require.Len(t, store.slaChanges, 1)
	assert.Equal(t, domain.SLAWarning, store.slaChanges[0].OldStatus)
	assert.Equal(t, domain.SLAOnTime, store.slaChanges[0].NewStatus)
	require.Len(t, store.statusUpdates, 1)
}

func TestSweepBreaches(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore()

	overdue := now.Add(-time.Hour)
	future := now.Add(10 * time.Hour)
	store.addComplaint(&domain.Complaint{
		ID: "late", Status: domain.ComplaintStatusAssigned,
		SLADueAt: &overdue, SLAStatus: domain.SLAWarning,
	})
	store.addComplaint(&domain.Complaint{
		ID: "ontrack", Status: domain.ComplaintStatusAssigned,
		SLADueAt: &future, SLAStatus: domain.SLAOnTime,
	})
	store.addComplaint(&domain.Complaint{
		ID: "already", Status: domain.ComplaintStatusAssigned,
		SLADueAt: &overdue, SLAStatus: domain.SLABreached,
	})
	store.addComplaint(&domain.Complaint{
		ID: "closed", Status: domain.ComplaintStatusClosed,
		SLADueAt: &overdue, SLAStatus: domain.SLAWarning,
	})

	svc := newSLAService(store, now)
	count, err := svc.SweepBreaches(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, domain.SLABreached, store.complaints["late"].SLAStatus)
	assert.Equal(t, domain.SLAOnTime, store.complaints["ontrack"].SLAStatus)
	assert.Equal(t, domain.SLAWarning, store.complaints["closed"].SLAStatus)

	require.Len(t, store.slaChanges, 1)
	assert.Equal(t, "late", store.slaChanges[0].ComplaintID)
	assert.Equal(t, "deadline passed", store.slaChanges[0].Notes)

	// A second sweep finds nothing new.
	count, err = svc.SweepBreaches(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, store.slaChanges, 1)
}
