package dto

import (
	"time"

	"github.com/thomlank/QuikTik/internal/domain"
)

// TeamResponse represents a team. The capability flags are pointers so
// they can be omitted entirely for non-admin callers, who are not
// shown how a team's permissions are configured.
type TeamResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	CanViewAllTickets *bool  `json:"can_view_all_tickets,omitempty"`
	CanAssignTickets  *bool  `json:"can_assign_tickets,omitempty"`
	CanCloseTickets   *bool  `json:"can_close_tickets,omitempty"`
	CanDeleteTickets  *bool  `json:"can_delete_tickets,omitempty"`
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// UpdateTeamRequest carries optional team changes.
type UpdateTeamRequest struct {
	Name              *string `json:"name"`
	CanViewAllTickets *bool   `json:"can_view_all_tickets"`
	CanAssignTickets  *bool   `json:"can_assign_tickets"`
	CanCloseTickets   *bool   `json:"can_close_tickets"`
	CanDeleteTickets  *bool   `json:"can_delete_tickets"`
}

// MembershipResponse represents one user's membership in a team.
type MembershipResponse struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	TeamID   string          `json:"team_id"`
	Role     domain.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

// AddMemberRequest payload.
type AddMemberRequest struct {
	UserID string          `json:"user_id"`
	Role   domain.TeamRole `json:"role"`
}

// SetMemberRoleRequest payload.
type SetMemberRoleRequest struct {
	Role domain.TeamRole `json:"role"`
}
