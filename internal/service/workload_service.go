package service

import (
	"context"
	"sort"
	"time"

	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/repository"
	apperrors "github.com/civic-stack/complaint-service/pkg/util/errorutil"
)

// TimeWindow scopes a workload report.
type TimeWindow string

const (
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

// ParseWindow validates a window value, defaulting to all.
func ParseWindow(raw string) (TimeWindow, error) {
	switch TimeWindow(raw) {
	case WindowWeek, WindowMonth, WindowYear, WindowAll:
		return TimeWindow(raw), nil
	case "":
		return WindowAll, nil
	}
	return "", apperrors.NewValidationError("invalid time window", map[string]any{"window": raw})
}

// StaffWorkloadReport is the per-staff rollup consumed by dashboards. It is
// recomputed from complaints and logs, independently of the cached staff
// counters.
type StaffWorkloadReport struct {
	StaffID            string     `json:"staff_id"`
	Total              int        `json:"total"`
	Active             int        `json:"active"`
	Completed          int        `json:"completed"`
	Closed             int        `json:"closed"`
	AvgResolutionHours *float64   `json:"avg_resolution_hours,omitempty"`
	AvgResponseHours   *float64   `json:"avg_response_hours,omitempty"`
	SLACompliancePct   float64    `json:"sla_compliance_pct"`
}

// WorkloadService is the read path: pure derivation, no mutation.
type WorkloadService struct {
	store repository.Store
	now   func() time.Time
}

// NewWorkloadService creates the service.
func NewWorkloadService(store repository.Store) *WorkloadService {
	return &WorkloadService{store: store, now: time.Now}
}

// Report aggregates workload per staff member over the window. Staff with
// zero tickets simply produce no row; ratios never divide by zero.
func (s *WorkloadService) Report(ctx context.Context, window TimeWindow, staffID *string) ([]StaffWorkloadReport, error) {
	now := s.now()
	filter := repository.WorkloadFilter{StaffID: staffID}
	switch window {
	case WindowWeek:
		since := now.AddDate(0, 0, -7)
		filter.Since = &since
	case WindowMonth:
		since := now.AddDate(0, -1, 0)
		filter.Since = &since
	case WindowYear:
		since := now.AddDate(-1, 0, 0)
		filter.Since = &since
	}

	rows, err := s.store.Workload().ComplaintRows(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	type accumulator struct {
		report          StaffWorkloadReport
		resolutionHours float64
		resolutionCount int
		responseHours   float64
		responseCount   int
		completedTotal  int
		completedOnSLA  int
	}
	byStaff := map[string]*accumulator{}

	for _, row := range rows {
		acc, ok := byStaff[row.StaffID]
		if !ok {
			acc = &accumulator{report: StaffWorkloadReport{StaffID: row.StaffID}}
			byStaff[row.StaffID] = acc
		}
		acc.report.Total++
		switch {
		case domain.IsActiveStatus(row.Status):
			acc.report.Active++
		case row.Status == domain.ComplaintStatusCompleted:
			acc.report.Completed++
		case row.Status == domain.ComplaintStatusClosed:
			acc.report.Closed++
		}

		// Resolution time uses the first Completed timeline event only.
		if row.CompletedAt != nil {
			acc.resolutionHours += row.CompletedAt.Sub(row.CreatedAt).Hours()
			acc.resolutionCount++
			acc.completedTotal++
			if row.SLAStatus == domain.SLAOnTime || row.SLAStatus == domain.SLAWarning {
				acc.completedOnSLA++
			}
		}

		// Response time is measured for still-open tickets only.
		if domain.IsActiveStatus(row.Status) && row.FirstAssignedAt != nil {
			acc.responseHours += now.Sub(*row.FirstAssignedAt).Hours()
			acc.responseCount++
		}
	}

	reports := make([]StaffWorkloadReport, 0, len(byStaff))
	for _, acc := range byStaff {
		if acc.resolutionCount > 0 {
			avg := acc.resolutionHours / float64(acc.resolutionCount)
			acc.report.AvgResolutionHours = &avg
		}
		if acc.responseCount > 0 {
			avg := acc.responseHours / float64(acc.responseCount)
			acc.report.AvgResponseHours = &avg
		}
		if acc.completedTotal > 0 {
			acc.report.SLACompliancePct = float64(acc.completedOnSLA) / float64(acc.completedTotal) * 100
		}
		reports = append(reports, acc.report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StaffID < reports[j].StaffID
	})
	return reports, nil
}
