package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/repository"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// Selector picks one eligible staff member for a complaint according to the
// configured assignment method.
type Selector struct {
	store repository.Store
}

// NewSelector creates the selector.
func NewSelector(store repository.Store) *Selector {
	return &Selector{store: store}
}

// SelectStaff returns the top-ranked eligible staff member for the
// complaint, or a NO_ELIGIBLE_STAFF failure when nobody qualifies. The
// caller must not create a partial assignment in that case.
func (s *Selector) SelectStaff(ctx context.Context, complaint *domain.Complaint, method domain.AssignmentMethod, allowCrossDepartment bool) (*domain.StaffDirectoryEntry, error) {
	if !domain.ValidAssignmentMethod(method) {
		return nil, apperrors.NewConflict("unknown assignment method", map[string]any{"method": method})
	}

	departmentID := complaint.DepartmentID
	if departmentID == nil && complaint.Category != "" {
		// A department whose name matches the category is used when the
		// complaint carries none. Unresolved is not an error; assignment
		// proceeds department-less.
		department, err := s.store.Departments().FindByCategory(ctx, complaint.Category)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		if department != nil {
			departmentID = &department.ID
		}
	}

	filter := repository.DirectoryFilter{}
	if departmentID != nil && !allowCrossDepartment {
		filter.DepartmentID = departmentID
	}

	entries, err := s.store.Staff().Directory(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ranked := rankCandidates(method, complaint.Priority, entries)
	if len(ranked) == 0 {
		return nil, apperrors.NewNoEligibleStaff(map[string]any{"complaint_id": complaint.ID})
	}
	top := ranked[0]
	return &top, nil
}

// rankCandidates orders eligible staff by the method's policy. For the
// workload method on an Emergency complaint, staff with zero active
// emergency cases rank before everyone else; within a group, ascending
// active cases, then ascending last-assigned (never-assigned first). The
// round-robin method leads with last-assigned and breaks ties on load.
func rankCandidates(method domain.AssignmentMethod, priority domain.PriorityLevel, entries []domain.StaffDirectoryEntry) []domain.StaffDirectoryEntry {
	ranked := make([]domain.StaffDirectoryEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if method == domain.MethodRoundRobin {
			if cmp := compareLastAssigned(a.LastAssignedAt, b.LastAssignedAt); cmp != 0 {
				return cmp < 0
			}
			return a.ActiveCases < b.ActiveCases
		}
		if priority == domain.PriorityEmergency {
			aFree := a.EmergencyCases == 0
			bFree := b.EmergencyCases == 0
			if aFree != bFree {
				return aFree
			}
		}
		if a.ActiveCases != b.ActiveCases {
			return a.ActiveCases < b.ActiveCases
		}
		return compareLastAssigned(a.LastAssignedAt, b.LastAssignedAt) < 0
	})
	return ranked
}

// compareLastAssigned orders nil (never assigned) before any timestamp.
func compareLastAssigned(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case b.Before(*a):
		return 1
	}
	return 0
}
