package domain

import "time"

// Team groups users and carries per-team ticket capability flags.
// Flags default to false at creation; only admins may set them.
type Team struct {
	ID                string
	Name              string
	CanViewAllTickets bool
	CanAssignTickets  bool
	CanCloseTickets   bool
	CanDeleteTickets  bool
	CreatedAt         time.Time
}

// TeamRole enumerates per-team membership roles.
type TeamRole string

const (
	TeamRoleMember TeamRole = "member"
	TeamRoleLead   TeamRole = "lead"
)

// IsValid reports whether the role is a known value.
func (r TeamRole) IsValid() bool {
	return r == TeamRoleMember || r == TeamRoleLead
}

// Membership binds a user to a team with a per-team role.
// The (user, team) pair is unique; the team role is independent of the
// user's global role.
type Membership struct {
	ID       string
	UserID   string
	TeamID   string
	Role     TeamRole
	JoinedAt time.Time
}
