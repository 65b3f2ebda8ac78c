package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/events"
	"github.com/civic-stack/complaint-service/internal/repository"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// StatusService applies complaint status transitions through the explicit
// state machine and keeps staff counters in step. Together with the
// assignment service it is the only writer of those counters.
type StatusService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatusService creates the service.
func NewStatusService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *StatusService {
	return &StatusService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// TransitionInput describes a requested status change.
type TransitionInput struct {
	ComplaintID string
	NewStatus   domain.ComplaintStatus
	ActorID     string
	Role        domain.ActorRole
	Notes       string
}

// Transition moves a complaint to a new status. Transitions outside the
// allowed table are rejected with Conflict rather than trusted to callers.
func (s *StatusService) Transition(ctx context.Context, input TransitionInput) (*domain.Complaint, error) {
	if !domain.ValidStatus(input.NewStatus) {
		return nil, apperrors.NewConflict("unknown complaint status", map[string]any{"status": input.NewStatus})
	}

	var result *domain.Complaint
	var oldStatus domain.ComplaintStatus
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		complaint, err := tx.Complaints().GetByIDForUpdate(ctx, input.ComplaintID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": input.ComplaintID})
			}
			return err
		}

		oldStatus = complaint.Status
		if oldStatus == input.NewStatus {
			return apperrors.NewConflict("complaint already in requested status",
				map[string]any{"status": input.NewStatus})
		}
		if !domain.CanTransition(oldStatus, input.NewStatus) {
			return apperrors.NewConflict("status transition not allowed", map[string]any{
				"from": oldStatus,
				"to":   input.NewStatus,
			})
		}

		if complaint.StaffID != nil && domain.IsActiveStatus(oldStatus) {
			switch input.NewStatus {
			case domain.ComplaintStatusCompleted:
				if err := tx.Staff().RecordCompletion(ctx, *complaint.StaffID); err != nil {
					return err
				}
			case domain.ComplaintStatusClosed:
				if err := tx.Staff().DecrementActiveCases(ctx, *complaint.StaffID); err != nil {
					return err
				}
			}
		}

		now := s.now()
		complaint.Status = input.NewStatus
		if input.NewStatus == domain.ComplaintStatusClosed {
			complaint.ClosedAt = &now
		}
		if err := tx.Complaints().Update(ctx, complaint); err != nil {
			return err
		}

		var notes *string
		if input.Notes != "" {
			notes = &input.Notes
		}
		if err := tx.StatusUpdates().Append(ctx, &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			UpdatedByID: input.ActorID,
			Role:        input.Role,
			Status:      input.NewStatus,
			Notes:       notes,
		}); err != nil {
			return err
		}

		result = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventStatusUpdated,
			ComplaintID: result.ID,
			Actor:       events.Actor{ID: &input.ActorID, Role: input.Role},
			Timestamp:   s.now(),
			Payload: events.StatusUpdatedPayload{
				OldStatus: oldStatus,
				NewStatus: result.Status,
				Notes:     input.Notes,
			},
		})
	}
	return result, nil
}
