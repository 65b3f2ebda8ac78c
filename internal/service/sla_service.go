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

// SLAService recomputes service-level deadlines on priority change or
// manual override, and sweeps overdue complaints to BREACHED.
type SLAService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewSLAService creates the service.
func NewSLAService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *SLAService {
	return &SLAService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// ChangePriorityInput describes a priority edit.
type ChangePriorityInput struct {
	ComplaintID string
	NewPriority domain.PriorityLevel
	ActorID     string
	Role        domain.ActorRole
	Reason      string
}

// ChangePriority recomputes the SLA deadline from the original anchor (the
// current assignment time, or creation when never assigned) and persists
// priority, due date and classification in one transaction. Calling it
// again with the same priority is a no-op and appends nothing.
func (s *SLAService) ChangePriority(ctx context.Context, input ChangePriorityInput) (*domain.Complaint, error) {
	if !domain.ValidPriority(input.NewPriority) {
		return nil, apperrors.NewConflict("unknown priority level", map[string]any{"priority": input.NewPriority})
	}

	var result *domain.Complaint
	var oldPriority domain.PriorityLevel
	var changed bool
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		complaint, err := tx.Complaints().GetByIDForUpdate(ctx, input.ComplaintID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": input.ComplaintID})
			}
			return err
		}
		if complaint.Priority == input.NewPriority {
			result = complaint
			return nil
		}

		var assignedAt *time.Time
		current, err := tx.Assignments().GetCurrentByComplaint(ctx, input.ComplaintID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if current != nil {
			assignedAt = &current.AssignedAt
		}

		now := s.now()
		anchor := sla.Anchor(assignedAt, complaint.CreatedAt)
		dueAt, err := sla.DueAt(input.NewPriority, anchor)
		if err != nil {
			return err
		}
		newStatus := sla.Classify(dueAt, now)

		oldPriority = complaint.Priority
		oldSLAStatus := complaint.SLAStatus
		complaint.Priority = input.NewPriority
		complaint.SLADueAt = &dueAt
		complaint.SLAStatus = newStatus
		if err := tx.Complaints().Update(ctx, complaint); err != nil {
			return err
		}

		if newStatus != oldSLAStatus {
			if err := tx.SLALogs().AppendSLAChange(ctx, &domain.SLAChangeLog{
				ComplaintID: complaint.ID,
				OldStatus:   oldSLAStatus,
				NewStatus:   newStatus,
				Notes:       fmt.Sprintf("recalculated after priority change %s -> %s", oldPriority, input.NewPriority),
			}); err != nil {
				return err
			}
		}

		if err := tx.SLALogs().AppendPriorityChange(ctx, &domain.PriorityChangeLog{
			ComplaintID: complaint.ID,
			OldPriority: oldPriority,
			NewPriority: input.NewPriority,
			ChangedByID: input.ActorID,
			Reason:      input.Reason,
		}); err != nil {
			return err
		}

		note := fmt.Sprintf("Priority changed from %s to %s", oldPriority, input.NewPriority)
		if input.Reason != "" {
			note = fmt.Sprintf("%s: %s", note, input.Reason)
		}
		if err := tx.StatusUpdates().Append(ctx, &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			UpdatedByID: input.ActorID,
			Role:        input.Role,
			Status:      complaint.Status,
			Notes:       &note,
		}); err != nil {
			return err
		}

		result = complaint
		changed = true
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if changed && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventPriorityUpdated,
			ComplaintID: result.ID,
			Actor:       events.Actor{ID: &input.ActorID, Role: input.Role},
			Timestamp:   s.now(),
			Payload: events.PriorityUpdatedPayload{
				OldPriority: oldPriority,
				NewPriority: result.Priority,
				SLADueAt:    result.SLADueAt,
				SLAStatus:   result.SLAStatus,
			},
		})
	}
	return result, nil
}

// OverrideDueDateInput describes a manual SLA deadline override.
type OverrideDueDateInput struct {
	ComplaintID string
	DueAt       time.Time
	ActorID     string
	Role        domain.ActorRole
	Reason      string
}

// OverrideDueDate replaces the deadline, reclassifies, and logs the SLA
// status transition when one occurred.
func (s *SLAService) OverrideDueDate(ctx context.Context, input OverrideDueDateInput) (*domain.Complaint, error) {
	var result *domain.Complaint
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		complaint, err := tx.Complaints().GetByIDForUpdate(ctx, input.ComplaintID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": input.ComplaintID})
			}
			return err
		}

		now := s.now()
		oldStatus := complaint.SLAStatus
		newStatus := sla.Classify(input.DueAt, now)
		complaint.SLADueAt = &input.DueAt
		complaint.SLAStatus = newStatus
		if err := tx.Complaints().UpdateSLA(ctx, complaint.ID, complaint.SLADueAt, newStatus); err != nil {
			return err
		}

		if newStatus != oldStatus {
			if err := tx.SLALogs().AppendSLAChange(ctx, &domain.SLAChangeLog{
				ComplaintID: complaint.ID,
				OldStatus:   oldStatus,
				NewStatus:   newStatus,
				Notes:       fmt.Sprintf("manual due-date override: %s", input.Reason),
			}); err != nil {
				return err
			}
		}

		note := fmt.Sprintf("SLA due date overridden to %s", input.DueAt.Format(time.RFC3339))
		if input.Reason != "" {
			note = fmt.Sprintf("%s: %s", note, input.Reason)
		}
		if err := tx.StatusUpdates().Append(ctx, &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			UpdatedByID: input.ActorID,
			Role:        input.Role,
			Status:      complaint.Status,
			Notes:       &note,
		}); err != nil {
			return err
		}

		result = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// SweepBreaches reclassifies active complaints whose deadline has passed,
// appending an SLA change log per transition. Returns how many complaints
// were marked breached.
func (s *SLAService) SweepBreaches(ctx context.Context, batchSize int) (int, error) {
	now := s.now()
	overdue, err := s.store.Complaints().ListOverdue(ctx, now, batchSize)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	breached := 0
	for i := range overdue {
		id := overdue[i].ID
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			complaint, err := tx.Complaints().GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if complaint.SLADueAt == nil || complaint.SLAStatus == domain.SLABreached {
				return nil
			}
			if !now.After(*complaint.SLADueAt) {
				return nil
			}
			oldStatus := complaint.SLAStatus
			if err := tx.Complaints().UpdateSLA(ctx, complaint.ID, complaint.SLADueAt, domain.SLABreached); err != nil {
				return err
			}
			if err := tx.SLALogs().AppendSLAChange(ctx, &domain.SLAChangeLog{
				ComplaintID: complaint.ID,
				OldStatus:   oldStatus,
				NewStatus:   domain.SLABreached,
				Notes:       "deadline passed",
			}); err != nil {
				return err
			}
			breached++
			return nil
		})
		if err != nil {
			s.logger.Warn("sla sweep failed for complaint", zap.String("complaint_id", id), zap.Error(err))
		}
	}
	return breached, nil
}
