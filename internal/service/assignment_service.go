package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/events"
	"github.com/civic-stack/complaint-service/internal/repository"
	"github.com/civic-stack/complaint-service/internal/sla"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// errStaleSelection signals that the chosen staff member's counters moved
// between selection and the locked re-read; the auto-assign path retries
// selection when it sees this.
var errStaleSelection = errors.New("stale staff selection")

// SettingsReader exposes the externally managed auto-assign settings.
type SettingsReader interface {
	AssignmentMethod(ctx context.Context) domain.AssignmentMethod
	AutoAssignEnabled(ctx context.Context) bool
}

// AssignmentService runs the assignment/reassignment transaction and the
// auto-assign selection loop.
type AssignmentService struct {
	store      repository.Store
	settings   SettingsReader
	selector   *Selector
	dispatcher events.Dispatcher
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Store               repository.Store
	Settings            SettingsReader
	Dispatcher          events.Dispatcher
	Logger              *zap.Logger
	MaxSelectionRetries int
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	retries := deps.MaxSelectionRetries
	if retries <= 0 {
		retries = 3
	}
	return &AssignmentService{
		store:      deps.Store,
		settings:   deps.Settings,
		selector:   NewSelector(deps.Store),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		maxRetries: retries,
		now:        time.Now,
	}
}

// AssignInput describes one assignment request.
type AssignInput struct {
	ComplaintID          string
	StaffID              string
	ActingAdminID        *string
	Type                 domain.AssignmentType
	Reason               string
	AllowCrossDepartment bool
}

// AssignResult reports the committed assignment, including the previous
// assignee when the operation was a reassignment.
type AssignResult struct {
	Complaint       *domain.Complaint
	PreviousStaffID *string
	AssignmentType  domain.AssignmentType
}

// Assign atomically records the assignment, maintains staff counters and
// appends the audit rows. Every write happens in one transaction; any
// failure leaves the data model untouched. Notification and realtime
// emission happen strictly after commit and never revert it.
func (s *AssignmentService) Assign(ctx context.Context, input AssignInput) (*AssignResult, error) {
	if input.Type == "" {
		input.Type = domain.AssignmentTypeManual
	}
	if input.Type != domain.AssignmentTypeManual && input.Type != domain.AssignmentTypeAuto {
		return nil, apperrors.NewConflict("invalid assignment type", map[string]any{"type": input.Type})
	}

	var result *AssignResult
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		res, err := s.assignInTx(ctx, tx, input, nil)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishAssigned(ctx, result, input)
	return result, nil
}

// AutoAssign selects a staff member via the configured method and runs the
// assignment transaction. Selection and the counter increment are kept
// consistent by locking the chosen staff row and re-reading its active-case
// count inside the transaction, retrying selection when it moved.
func (s *AssignmentService) AutoAssign(ctx context.Context, complaintID string, actingAdminID *string, reason string) (*AssignResult, error) {
	if !s.settings.AutoAssignEnabled(ctx) {
		return nil, apperrors.NewConflict("auto-assign is disabled", nil)
	}
	method := s.settings.AssignmentMethod(ctx)
	if reason == "" {
		reason = "automatic assignment"
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		complaint, err := s.store.Complaints().GetByID(ctx, complaintID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
			}
			return nil, apperrors.MapError(err)
		}

		candidate, err := s.selector.SelectStaff(ctx, complaint, method, false)
		if err != nil {
			return nil, err
		}
		observedLoad := candidate.ActiveCases

		input := AssignInput{
			ComplaintID:   complaintID,
			StaffID:       candidate.StaffID,
			ActingAdminID: actingAdminID,
			Type:          domain.AssignmentTypeAuto,
			Reason:        reason,
		}

		var result *AssignResult
		err = s.store.WithinTx(ctx, func(tx repository.Store) error {
			res, err := s.assignInTx(ctx, tx, input, &observedLoad)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
		if errors.Is(err, errStaleSelection) {
			s.logger.Info("auto-assign selection went stale, retrying",
				zap.String("complaint_id", complaintID),
				zap.String("staff_id", candidate.StaffID),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, apperrors.MapError(err)
		}

		s.publishAssigned(ctx, result, input)
		return result, nil
	}

	return nil, apperrors.NewConflict("auto-assign selection contention, try again",
		map[string]any{"complaint_id": complaintID})
}

// assignInTx is steps 1-11 of the assignment transaction. The complaint row
// lock taken up front serializes concurrent assignments per complaint.
func (s *AssignmentService) assignInTx(ctx context.Context, tx repository.Store, input AssignInput, expectedActiveCases *int) (*AssignResult, error) {
	now := s.now()

	complaint, err := tx.Complaints().GetByIDForUpdate(ctx, input.ComplaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": input.ComplaintID})
		}
		return nil, err
	}

	staff, err := tx.Staff().GetByIDForUpdate(ctx, input.StaffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": input.StaffID})
		}
		return nil, err
	}
	if staff.Role != domain.StaffRoleStaff {
		return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": input.StaffID})
	}
	if !staff.Active {
		return nil, apperrors.NewConflict("staff member inactive", map[string]any{"staff_id": input.StaffID})
	}
	if expectedActiveCases != nil && staff.ActiveCases != *expectedActiveCases {
		return nil, errStaleSelection
	}

	if !input.AllowCrossDepartment && complaint.DepartmentID != nil {
		if staff.DepartmentID == nil || *staff.DepartmentID != *complaint.DepartmentID {
			return nil, apperrors.NewConflict("staff not in complaint's department", map[string]any{
				"complaint_department_id": *complaint.DepartmentID,
				"staff_id":                input.StaffID,
			})
		}
	}

	if !domain.CanTransition(complaint.Status, domain.ComplaintStatusAssigned) {
		return nil, apperrors.NewConflict("complaint not assignable in its current status",
			map[string]any{"status": complaint.Status})
	}

	var previousStaffID *string
	current, err := tx.Assignments().GetCurrentByComplaint(ctx, input.ComplaintID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if current != nil {
		if current.StaffID == input.StaffID {
			return nil, apperrors.NewConflict("complaint already assigned to this staff",
				map[string]any{"staff_id": input.StaffID})
		}
		previousStaffID = &current.StaffID
	}

	assignment := &domain.StaffAssignment{
		ComplaintID:       input.ComplaintID,
		StaffID:           input.StaffID,
		AssignedByAdminID: input.ActingAdminID,
		AssignedAt:        now,
	}
	if err := tx.Assignments().Upsert(ctx, assignment); err != nil {
		return nil, err
	}

	if previousStaffID != nil {
		if err := tx.Staff().DecrementActiveCases(ctx, *previousStaffID); err != nil {
			return nil, err
		}
	}

	logType := input.Type
	if previousStaffID != nil {
		logType = domain.AssignmentTypeReassignment
	}
	if err := tx.Assignments().AppendLog(ctx, &domain.AssignmentLog{
		ComplaintID:       input.ComplaintID,
		PreviousStaffID:   previousStaffID,
		NewStaffID:        input.StaffID,
		AssignedByAdminID: input.ActingAdminID,
		AssignmentType:    logType,
		Reason:            input.Reason,
	}); err != nil {
		return nil, err
	}

	complaint.Status = domain.ComplaintStatusAssigned
	complaint.StaffID = &staff.ID
	if input.AllowCrossDepartment {
		if staff.DepartmentID != nil {
			complaint.DepartmentID = staff.DepartmentID
		}
	} else if complaint.DepartmentID == nil {
		complaint.DepartmentID = staff.DepartmentID
	}

	// The first assignment re-anchors the SLA from creation time to
	// assigned_at. Reassignment leaves the deadline where it was.
	if previousStaffID == nil || complaint.SLADueAt == nil {
		priority := complaint.Priority
		if !domain.ValidPriority(priority) {
			priority = domain.DefaultPriority
		}
		dueAt, err := sla.DueAt(priority, now)
		if err != nil {
			return nil, err
		}
		complaint.SLADueAt = &dueAt
		complaint.SLAStatus = sla.Classify(dueAt, now)
	}

	if err := tx.Complaints().Update(ctx, complaint); err != nil {
		return nil, err
	}

	if err := tx.Staff().IncrementActiveCases(ctx, staff.ID, now); err != nil {
		return nil, err
	}

	actorID, role := resolveActor(input.ActingAdminID, staff.ID)
	note := fmt.Sprintf("Assigned to %s", staff.Name)
	if previousStaffID != nil {
		note = fmt.Sprintf("Reassigned to %s", staff.Name)
	}
	if err := tx.StatusUpdates().Append(ctx, &domain.StatusUpdate{
		ComplaintID: input.ComplaintID,
		UpdatedByID: actorID,
		Role:        role,
		Status:      domain.ComplaintStatusAssigned,
		Notes:       &note,
	}); err != nil {
		return nil, err
	}

	return &AssignResult{
		Complaint:       complaint,
		PreviousStaffID: previousStaffID,
		AssignmentType:  logType,
	}, nil
}

func resolveActor(actingAdminID *string, staffID string) (string, domain.ActorRole) {
	if actingAdminID != nil {
		return *actingAdminID, domain.ActorRoleAdmin
	}
	return staffID, domain.ActorRoleSystem
}

func (s *AssignmentService) publishAssigned(ctx context.Context, result *AssignResult, input AssignInput) {
	if s.dispatcher == nil || result == nil {
		return
	}
	role := domain.ActorRoleSystem
	if input.ActingAdminID != nil {
		role = domain.ActorRoleAdmin
	}
	event := events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventAssignmentCreated,
		ComplaintID: result.Complaint.ID,
		Actor:       events.Actor{ID: input.ActingAdminID, Role: role},
		Timestamp:   s.now(),
		Payload: events.AssignmentCreatedPayload{
			StaffID:           input.StaffID,
			PreviousStaffID:   result.PreviousStaffID,
			AssignedByAdminID: input.ActingAdminID,
			AssignmentType:    result.AssignmentType,
			ComplaintTitle:    result.Complaint.Title,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
