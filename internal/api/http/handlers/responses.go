package handlers

import (
	"github.com/thomlank/QuikTik/internal/api/dto"
	"github.com/thomlank/QuikTik/internal/domain"
)

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// teamResponse renders a team. Capability flags are only included for
// admin callers.
func teamResponse(t *domain.Team, includeFlags bool) dto.TeamResponse {
	resp := dto.TeamResponse{ID: t.ID, Name: t.Name}
	if includeFlags {
		resp.CanViewAllTickets = boolPtr(t.CanViewAllTickets)
		resp.CanAssignTickets = boolPtr(t.CanAssignTickets)
		resp.CanCloseTickets = boolPtr(t.CanCloseTickets)
		resp.CanDeleteTickets = boolPtr(t.CanDeleteTickets)
	}
	return resp
}

func membershipResponse(m *domain.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		TeamID:   m.TeamID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

func categoryResponse(cat *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description}
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		StatusLabel:    t.Status.String(),
		Priority:       t.Priority,
		PriorityLabel:  t.Priority.String(),
		CategoryID:     t.CategoryID,
		CreatedBy:      t.CreatedBy,
		AssignedTo:     t.AssignedTo,
		AssignedToTeam: t.AssignedToTeam,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func ticketDetail(t *domain.Ticket, comments []domain.Comment) dto.TicketDetailResponse {
	detail := dto.TicketDetailResponse{TicketResponse: ticketResponse(t)}
	detail.Comments = make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		detail.Comments = append(detail.Comments, commentResponse(&comments[i]))
	}
	return detail
}

func commentResponse(cm *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        cm.ID,
		TicketID:  cm.TicketID,
		AuthorID:  cm.AuthorID,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
	}
}

func boolPtr(v bool) *bool { return &v }
