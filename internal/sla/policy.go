package sla

import (
	"time"

	"github.com/civic-stack/complaint-service/internal/domain"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// WarningWindow is how close to the deadline a complaint turns WARNING.
// It is a fixed 4 hours regardless of the priority's own window.
const WarningWindow = 4 * time.Hour

var windows = map[domain.PriorityLevel]time.Duration{
	domain.PriorityLow:       72 * time.Hour,
	domain.PriorityMedium:    48 * time.Hour,
	domain.PriorityHigh:      24 * time.Hour,
	domain.PriorityEmergency: 4 * time.Hour,
}

// Window returns the SLA window for a priority. Unknown priorities are a
// caller error; callers default to Medium before invoking the policy.
func Window(priority domain.PriorityLevel) (time.Duration, error) {
	window, ok := windows[priority]
	if !ok {
		return 0, apperrors.NewConflict("unknown priority level", map[string]any{"priority": priority})
	}
	return window, nil
}

// DueAt computes the service-level deadline from the anchor timestamp.
// The anchor is the current assignment's assigned_at, falling back to the
// complaint's created_at when never assigned.
func DueAt(priority domain.PriorityLevel, anchor time.Time) (time.Time, error) {
	window, err := Window(priority)
	if err != nil {
		return time.Time{}, err
	}
	return anchor.Add(window), nil
}

// Classify maps a deadline and the current time to an SLA status.
func Classify(dueAt, now time.Time) domain.SLAStatus {
	if now.After(dueAt) {
		return domain.SLABreached
	}
	if dueAt.Sub(now) < WarningWindow {
		return domain.SLAWarning
	}
	return domain.SLAOnTime
}

// Anchor picks the SLA anchor for a complaint given its current assignment
// time, if any.
func Anchor(assignedAt *time.Time, createdAt time.Time) time.Time {
	if assignedAt != nil {
		return *assignedAt
	}
	return createdAt
}
