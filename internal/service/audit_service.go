package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/events"
	"github.com/civic-stack/complaint-service/internal/repository"
)

// AuditService appends durable audit records for domain events. Appends are
// independent of the originating transaction; a failed append is logged and
// swallowed.
type AuditService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{store: store, dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to all audited event types.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAssignmentCreated, a.record)
	a.dispatcher.Subscribe(events.EventPriorityUpdated, a.record)
	a.dispatcher.Subscribe(events.EventStatusUpdated, a.record)
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	details := map[string]any{}
	if raw, err := json.Marshal(event.Payload); err == nil {
		_ = json.Unmarshal(raw, &details)
	}

	entry := &domain.AuditLog{
		ActorID:     event.Actor.ID,
		Role:        event.Actor.Role,
		ActionType:  string(event.Type),
		Details:     details,
		ComplaintID: &event.ComplaintID,
	}
	if err := a.store.AuditLogs().Append(ctx, entry); err != nil {
		a.logger.Warn("audit append failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
	return nil
}
