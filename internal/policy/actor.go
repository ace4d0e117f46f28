package policy

import "github.com/thomlank/QuikTik/internal/domain"

// Actor is a per-request snapshot of an authenticated user together
// with their team memberships. Lookups over the membership set are
// computed once at construction so that every predicate in this
// package shares the same view; callers must rebuild the snapshot
// after any mutation that touches the actor's own memberships.
type Actor struct {
	User *domain.User

	memberships []domain.Membership
	roleByTeam  map[string]domain.TeamRole
	ledTeamIDs  []string
}

// NewActor builds a snapshot for the given user and memberships.
func NewActor(user *domain.User, memberships []domain.Membership) *Actor {
	a := &Actor{
		User:        user,
		memberships: memberships,
		roleByTeam:  make(map[string]domain.TeamRole, len(memberships)),
	}
	for _, m := range memberships {
		if m.UserID != user.ID {
			continue
		}
		a.roleByTeam[m.TeamID] = m.Role
		if m.Role == domain.TeamRoleLead {
			a.ledTeamIDs = append(a.ledTeamIDs, m.TeamID)
		}
	}
	return a
}

// IsAdmin reports whether the actor holds the admin global role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.User.IsAdmin()
}

// IsMemberOf reports whether the actor holds any membership in the team.
func (a *Actor) IsMemberOf(teamID string) bool {
	if a == nil {
		return false
	}
	_, ok := a.roleByTeam[teamID]
	return ok
}

// IsLeadOf reports whether the actor holds the lead role in the team.
func (a *Actor) IsLeadOf(teamID string) bool {
	if a == nil {
		return false
	}
	return a.roleByTeam[teamID] == domain.TeamRoleLead
}

// IsLead reports whether the actor leads at least one team.
func (a *Actor) IsLead() bool {
	return a != nil && len(a.ledTeamIDs) > 0
}

// LedTeamIDs returns the IDs of every team the actor leads.
func (a *Actor) LedTeamIDs() []string {
	if a == nil {
		return nil
	}
	return a.ledTeamIDs
}

// Memberships returns the snapshot's membership rows.
func (a *Actor) Memberships() []domain.Membership {
	if a == nil {
		return nil
	}
	return a.memberships
}
