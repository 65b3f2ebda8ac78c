package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/repository"
	"github.com/civic-stack/complaint-service/internal/sla"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// ComplaintService covers intake and the read views the engine exposes.
type ComplaintService struct {
	store repository.Store
	now   func() time.Time
}

// NewComplaintService creates the service.
func NewComplaintService(store repository.Store) *ComplaintService {
	return &ComplaintService{store: store, now: time.Now}
}

// CreateComplaintInput is the intake payload.
type CreateComplaintInput struct {
	CitizenID   string
	Title       string
	Description string
	Category    string
	Location    string
	Priority    domain.PriorityLevel
}

// Create registers a complaint in PENDING with its initial SLA deadline
// anchored at creation time. Unknown priorities default to Medium before
// the SLA policy is consulted.
func (s *ComplaintService) Create(ctx context.Context, input CreateComplaintInput) (*domain.Complaint, error) {
	if strings.TrimSpace(input.CitizenID) == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("citizen_id and title required", nil)
	}
	priority := input.Priority
	if !domain.ValidPriority(priority) {
		priority = domain.DefaultPriority
	}

	var result *domain.Complaint
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		complaint := &domain.Complaint{
			CitizenID:   input.CitizenID,
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
			Location:    input.Location,
			Status:      domain.ComplaintStatusPending,
			Priority:    priority,
			SLAStatus:   domain.SLAOnTime,
		}
		if err := tx.Complaints().Create(ctx, complaint); err != nil {
			return err
		}

		dueAt, err := sla.DueAt(priority, complaint.CreatedAt)
		if err != nil {
			return err
		}
		status := sla.Classify(dueAt, s.now())
		if err := tx.Complaints().UpdateSLA(ctx, complaint.ID, &dueAt, status); err != nil {
			return err
		}
		complaint.SLADueAt = &dueAt
		complaint.SLAStatus = status

		result = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ComplaintDetail bundles a complaint with its timeline and assignment
// history for the detail view.
type ComplaintDetail struct {
	Complaint      *domain.Complaint
	Timeline       []domain.StatusUpdate
	AssignmentLogs []domain.AssignmentLog
}

// Get loads a complaint with its timeline.
func (s *ComplaintService) Get(ctx context.Context, id string) (*ComplaintDetail, error) {
	complaint, err := s.store.Complaints().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	timeline, err := s.store.StatusUpdates().ListByComplaint(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	logs, err := s.store.Assignments().ListLogsByComplaint(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &ComplaintDetail{Complaint: complaint, Timeline: timeline, AssignmentLogs: logs}, nil
}

// List queries complaints with the given filter.
func (s *ComplaintService) List(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	complaints, err := s.store.Complaints().ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}
