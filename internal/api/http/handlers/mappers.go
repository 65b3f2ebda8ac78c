package handlers

import (
	"github.com/civic-stack/complaint-service/internal/api/dto"
	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/service"
)

func complaintSummary(c *domain.Complaint) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:           c.ID,
		CitizenID:    c.CitizenID,
		Title:        c.Title,
		Category:     c.Category,
		Location:     c.Location,
		Status:       c.Status,
		Priority:     c.Priority,
		StaffID:      c.StaffID,
		DepartmentID: c.DepartmentID,
		SLADueAt:     c.SLADueAt,
		SLAStatus:    c.SLAStatus,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func complaintDetail(detail *service.ComplaintDetail) dto.ComplaintDetailResponse {
	resp := dto.ComplaintDetailResponse{
		ComplaintSummary: complaintSummary(detail.Complaint),
		Description:      detail.Complaint.Description,
		Timeline:         make([]dto.StatusUpdateResponse, 0, len(detail.Timeline)),
		AssignmentLogs:   make([]dto.AssignmentLogResponse, 0, len(detail.AssignmentLogs)),
	}
	for i := range detail.Timeline {
		u := &detail.Timeline[i]
		resp.Timeline = append(resp.Timeline, dto.StatusUpdateResponse{
			ID:          u.ID,
			UpdatedByID: u.UpdatedByID,
			Role:        u.Role,
			Status:      u.Status,
			Notes:       u.Notes,
			CreatedAt:   u.CreatedAt,
		})
	}
	for i := range detail.AssignmentLogs {
		l := &detail.AssignmentLogs[i]
		resp.AssignmentLogs = append(resp.AssignmentLogs, dto.AssignmentLogResponse{
			ID:                l.ID,
			PreviousStaffID:   l.PreviousStaffID,
			NewStaffID:        l.NewStaffID,
			AssignedByAdminID: l.AssignedByAdminID,
			AssignmentType:    l.AssignmentType,
			Reason:            l.Reason,
			CreatedAt:         l.CreatedAt,
		})
	}
	return resp
}

func assignmentResponse(result *service.AssignResult) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		Complaint:       complaintSummary(result.Complaint),
		PreviousStaffID: result.PreviousStaffID,
		AssignmentType:  result.AssignmentType,
	}
}

func staffSummary(s *domain.StaffMember) dto.StaffSummary {
	return dto.StaffSummary{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		Role:           s.Role,
		DepartmentID:   s.DepartmentID,
		ActiveCases:    s.ActiveCases,
		CompletedCases: s.CompletedCases,
		LastAssignedAt: s.LastAssignedAt,
	}
}
