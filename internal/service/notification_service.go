package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/config"
	"github.com/civic-stack/complaint-service/internal/events"
)

// NotificationService delivers best-effort notifications for domain events.
// It runs strictly after commit, behind the dispatcher; its failures are
// logged and never surfaced to the operation that produced the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig

	// deliver is the realtime transport hook; it logs until a real
	// transport exists.
	deliver func(ctx context.Context, event events.Event)
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	n := &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
	n.deliver = n.logRealtime
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAssignmentCreated, n.handleAssignmentCreated)
	n.dispatcher.Subscribe(events.EventPriorityUpdated, n.handlePriorityUpdated)
	n.dispatcher.Subscribe(events.EventStatusUpdated, n.handleStatusUpdated)
}

func (n *NotificationService) handleAssignmentCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("AssignmentCreated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	n.sendSMSStub(ctx, event)
	n.emitRealtime(ctx, event)
	return nil
}

func (n *NotificationService) handlePriorityUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("PriorityUpdated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.emitRealtime(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("StatusUpdated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	n.emitRealtime(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendSMSStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.SMSFrom) == "" {
		return
	}
	n.logger.Debug("sendSMSStub",
		zap.String("from", n.cfg.SMSFrom),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}

// emitRealtime pushes the event toward the realtime transport. The short
// timeout keeps a slow transport from holding the handler chain.
func (n *NotificationService) emitRealtime(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	timeout := time.Duration(n.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		n.deliver(ctx, event)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		n.logger.Warn("realtime emit timed out",
			zap.String("complaint_id", event.ComplaintID),
			zap.String("event_type", string(event.Type)))
	}
}

func (n *NotificationService) logRealtime(_ context.Context, event events.Event) {
	n.logger.Debug("emitRealtime",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}
