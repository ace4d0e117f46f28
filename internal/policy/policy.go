package policy

import "github.com/thomlank/QuikTik/internal/domain"

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionTeamCreate    Action = "team.create"
	ActionTeamEdit      Action = "team.edit"
	ActionTeamDelete    Action = "team.delete"
	ActionTeamView      Action = "team.view"
	ActionMemberAdd     Action = "team.member.add"
	ActionMemberRemove  Action = "team.member.remove"
	ActionMemberSetRole Action = "team.member.set_role"

	ActionTicketView    Action = "ticket.view"
	ActionTicketCreate  Action = "ticket.create"
	ActionTicketEdit    Action = "ticket.edit"
	ActionTicketStatus  Action = "ticket.status"
	ActionTicketDelete  Action = "ticket.delete"
	ActionTicketAssign  Action = "ticket.assign"
	ActionTicketComment Action = "ticket.comment"

	ActionCommentEdit   Action = "comment.edit"
	ActionCommentDelete Action = "comment.delete"

	ActionUserChangeRole Action = "user.change_role"
	ActionUserDeactivate Action = "user.deactivate"

	ActionCategoryManage Action = "category.manage"
)

// Decision is the outcome of a policy evaluation. Reason is only set
// on denials and carries no more detail than the actor may learn.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the affirmative decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny rejects with a reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Resource carries the entities an action targets. Only the fields the
// action consults need to be populated; for ticket gates, Team must be
// the ticket's assigned team (with its capability flags) when the
// ticket is assigned to one.
type Resource struct {
	Ticket    *domain.Ticket
	Team      *domain.Team
	Comment   *domain.Comment
	User      *domain.User
	NewStatus domain.TicketStatus
}

// Evaluate maps (actor, resource, action) to an authorization decision.
// It is the single definition of every predicate; call sites must not
// re-derive role checks locally.
func Evaluate(a *Actor, res Resource, action Action) Decision {
	switch action {
	case ActionTeamCreate, ActionTeamEdit, ActionTeamDelete, ActionCategoryManage:
		return adminOnly(a)
	case ActionTeamView:
		// Teams are not access-restricted for viewing.
		return Allow()
	case ActionMemberAdd, ActionMemberRemove, ActionMemberSetRole:
		return canManageMembers(a, res.Team)
	case ActionTicketCreate:
		return Allow()
	case ActionTicketView, ActionTicketComment:
		if CanViewTicket(a, res.Ticket, res.Team) {
			return Allow()
		}
		return Deny("ticket not visible")
	case ActionTicketEdit:
		return canEditTicket(a, res.Ticket)
	case ActionTicketStatus:
		return canChangeStatus(a, res.Ticket, res.Team, res.NewStatus)
	case ActionTicketDelete:
		return canDeleteTicket(a, res.Ticket, res.Team)
	case ActionTicketAssign:
		return canAssignTickets(a)
	case ActionCommentEdit, ActionCommentDelete:
		return canModifyComment(a, res.Comment)
	case ActionUserChangeRole:
		return canChangeUserRole(a, res.User)
	case ActionUserDeactivate:
		return canDeactivateUser(a, res.User)
	default:
		return Deny("unknown action")
	}
}

func adminOnly(a *Actor) Decision {
	if a.IsAdmin() {
		return Allow()
	}
	return Deny("admin access required")
}

func canManageMembers(a *Actor, team *domain.Team) Decision {
	if a.IsAdmin() {
		return Allow()
	}
	if team != nil && a.IsLeadOf(team.ID) {
		return Allow()
	}
	return Deny("must be team lead of this team")
}

// CanViewTicket is the visibility predicate: admin, creator, assignee,
// member of the assigned team when that team may view all its tickets,
// or lead of any team. assignedTeam is the ticket's team or nil.
func CanViewTicket(a *Actor, t *domain.Ticket, assignedTeam *domain.Team) bool {
	if a == nil || t == nil {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	if t.CreatedBy == a.User.ID {
		return true
	}
	if t.AssignedTo != nil && *t.AssignedTo == a.User.ID {
		return true
	}
	if assignedTeam != nil && assignedTeam.CanViewAllTickets && a.IsMemberOf(assignedTeam.ID) {
		return true
	}
	return a.IsLead()
}

func canEditTicket(a *Actor, t *domain.Ticket) Decision {
	if t == nil {
		return Deny("no ticket")
	}
	if a.IsAdmin() || a.IsLead() || t.CreatedBy == a.User.ID {
		return Allow()
	}
	return Deny("permission denied")
}

// canChangeStatus applies the edit gate, then narrows the lead branch
// with the assigned team's can_close_tickets flag when moving to
// Resolved or Closed. Admin and creator are independent OR-branches
// and are never narrowed by team flags.
func canChangeStatus(a *Actor, t *domain.Ticket, assignedTeam *domain.Team, newStatus domain.TicketStatus) Decision {
	if t == nil {
		return Deny("no ticket")
	}
	if a.IsAdmin() || t.CreatedBy == a.User.ID {
		return Allow()
	}
	if !a.IsLead() {
		return Deny("permission denied")
	}
	closing := newStatus == domain.StatusResolved || newStatus == domain.StatusClosed
	if closing && t.AssignedToTeam != nil {
		if assignedTeam == nil || !assignedTeam.CanCloseTickets {
			return Deny("team may not close its tickets")
		}
	}
	return Allow()
}

// canDeleteTicket mirrors canChangeStatus: the lead branch is gated by
// can_delete_tickets when the ticket is assigned to a team.
func canDeleteTicket(a *Actor, t *domain.Ticket, assignedTeam *domain.Team) Decision {
	if t == nil {
		return Deny("no ticket")
	}
	if a.IsAdmin() || t.CreatedBy == a.User.ID {
		return Allow()
	}
	if !a.IsLead() {
		return Deny("permission denied")
	}
	if t.AssignedToTeam != nil {
		if assignedTeam == nil || !assignedTeam.CanDeleteTickets {
			return Deny("team may not delete its tickets")
		}
	}
	return Allow()
}

func canAssignTickets(a *Actor) Decision {
	if a.IsAdmin() || a.IsLead() {
		return Allow()
	}
	return Deny("permission denied")
}

func canModifyComment(a *Actor, c *domain.Comment) Decision {
	if c == nil {
		return Deny("no comment")
	}
	if a.IsAdmin() || c.AuthorID == a.User.ID {
		return Allow()
	}
	return Deny("permission denied")
}

// canChangeUserRole denies self-modification even for admins; the
// global role is otherwise admin-managed.
func canChangeUserRole(a *Actor, target *domain.User) Decision {
	if target == nil {
		return Deny("no user")
	}
	if target.ID == a.User.ID {
		return Deny("cannot change your own role")
	}
	if a.IsAdmin() {
		return Allow()
	}
	return Deny("admin access required")
}

// canDeactivateUser denies self-deactivation even for admins.
func canDeactivateUser(a *Actor, target *domain.User) Decision {
	if target == nil {
		return Deny("no user")
	}
	if target.ID == a.User.ID {
		return Deny("cannot deactivate yourself")
	}
	if a.IsAdmin() {
		return Allow()
	}
	return Deny("admin access required")
}
