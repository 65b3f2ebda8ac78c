package worker

import (
	"github.com/civic-stack/complaint-service/internal/service"
)

// StartNotificationWorker registers notification and audit handlers on the
// dispatcher so they run strictly after each commit.
func StartNotificationWorker(notificationService *service.NotificationService, auditService *service.AuditService) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if auditService != nil {
		auditService.RegisterHandlers()
	}
}
