package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomlank/QuikTik/internal/domain"
)

func strPtr(s string) *string { return &s }

func makeUser(id string, role domain.GlobalRole) *domain.User {
	return &domain.User{ID: id, Email: id + "@example.com", Role: role, Active: true}
}

func makeActor(id string, role domain.GlobalRole, memberships ...domain.Membership) *Actor {
	return NewActor(makeUser(id, role), memberships)
}

func membership(userID, teamID string, role domain.TeamRole) domain.Membership {
	return domain.Membership{ID: userID + ":" + teamID, UserID: userID, TeamID: teamID, Role: role}
}

func TestCanViewTicket(t *testing.T) {
	team := &domain.Team{ID: "team-1", Name: "Support", CanViewAllTickets: true}
	lockedTeam := &domain.Team{ID: "team-2", Name: "Backoffice"}

	tests := []struct {
		name   string
		actor  *Actor
		ticket *domain.Ticket
		team   *domain.Team
		want   bool
	}{
		{
			name:   "admin sees everything",
			actor:  makeActor("admin", domain.RoleAdmin),
			ticket: &domain.Ticket{ID: "t1", CreatedBy: "someone"},
			want:   true,
		},
		{
			name:   "creator sees own ticket",
			actor:  makeActor("alice", domain.RoleUser),
			ticket: &domain.Ticket{ID: "t1", CreatedBy: "alice"},
			want:   true,
		},
		{
			name:   "assignee sees ticket",
			actor:  makeActor("bob", domain.RoleUser),
			ticket: &domain.Ticket{ID: "t1", CreatedBy: "alice", AssignedTo: strPtr("bob")},
			want:   true,
		},
		{
			name:  "team member sees team ticket when view flag set",
			actor: makeActor("carol", domain.RoleUser, membership("carol", "team-1", domain.TeamRoleMember)),
			ticket: &domain.Ticket{
				ID: "t1", CreatedBy: "alice", AssignedToTeam: strPtr("team-1"),
			},
			team: team,
			want: true,
		},
		{
			name:  "team member blocked when view flag unset",
			actor: makeActor("carol", domain.RoleUser, membership("carol", "team-2", domain.TeamRoleMember)),
			ticket: &domain.Ticket{
				ID: "t1", CreatedBy: "alice", AssignedToTeam: strPtr("team-2"),
			},
			team: lockedTeam,
			want: false,
		},
		{
			name:   "lead of any team sees unrelated ticket",
			actor:  makeActor("dave", domain.RoleUser, membership("dave", "team-2", domain.TeamRoleLead)),
			ticket: &domain.Ticket{ID: "t1", CreatedBy: "alice", AssignedToTeam: strPtr("team-1")},
			team:   team,
			want:   true,
		},
		{
			name:   "unrelated user sees nothing",
			actor:  makeActor("eve", domain.RoleUser),
			ticket: &domain.Ticket{ID: "t1", CreatedBy: "alice"},
			want:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanViewTicket(tc.actor, tc.ticket, tc.team))
		})
	}
}

func TestFilterVisibleMatchesSingleEvaluation(t *testing.T) {
	team := domain.Team{ID: "team-1", CanViewAllTickets: true}
	teams := map[string]domain.Team{"team-1": team}

	tickets := []domain.Ticket{
		{ID: "t1", CreatedBy: "alice"},
		{ID: "t2", CreatedBy: "bob"},
		{ID: "t3", CreatedBy: "bob", AssignedTo: strPtr("alice")},
		{ID: "t4", CreatedBy: "bob", AssignedToTeam: strPtr("team-1")},
		{ID: "t5", CreatedBy: "bob", AssignedToTeam: strPtr("missing-team")},
	}

	actor := makeActor("alice", domain.RoleUser, membership("alice", "team-1", domain.TeamRoleMember))

	visible := FilterVisible(actor, tickets, teams)

	// The collection filter must agree with per-ticket evaluation.
	wantIDs := []string{}
	for _, tk := range tickets {
		var assigned *domain.Team
		if tk.AssignedToTeam != nil {
			if tm, ok := teams[*tk.AssignedToTeam]; ok {
				assigned = &tm
			}
		}
		if CanViewTicket(actor, &tk, assigned) {
			wantIDs = append(wantIDs, tk.ID)
		}
	}

	gotIDs := make([]string, 0, len(visible))
	for _, tk := range visible {
		gotIDs = append(gotIDs, tk.ID)
	}
	assert.Equal(t, wantIDs, gotIDs)
	assert.Equal(t, []string{"t1", "t3", "t4"}, gotIDs)
}

func TestEditGate(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", CreatedBy: "alice"}

	tests := []struct {
		name  string
		actor *Actor
		want  bool
	}{
		{"admin", makeActor("admin", domain.RoleAdmin), true},
		{"creator", makeActor("alice", domain.RoleUser), true},
		{"lead of any team", makeActor("lead", domain.RoleUser, membership("lead", "x", domain.TeamRoleLead)), true},
		{"plain member", makeActor("bob", domain.RoleUser, membership("bob", "x", domain.TeamRoleMember)), false},
		{"unrelated user", makeActor("eve", domain.RoleUser), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.actor, Resource{Ticket: ticket}, ActionTicketEdit)
			assert.Equal(t, tc.want, d.Allowed)
		})
	}
}

func TestStatusChangeCapabilityGatesOnlyLeads(t *testing.T) {
	teamID := "team-1"
	noClose := &domain.Team{ID: teamID, CanCloseTickets: false}
	yesClose := &domain.Team{ID: teamID, CanCloseTickets: true}

	ticket := &domain.Ticket{ID: "t1", CreatedBy: "creator", AssignedToTeam: &teamID, Status: domain.StatusOpen}

	t.Run("creator closes despite flag false", func(t *testing.T) {
		creator := makeActor("creator", domain.RoleUser)
		d := Evaluate(creator, Resource{Ticket: ticket, Team: noClose, NewStatus: domain.StatusClosed}, ActionTicketStatus)
		assert.True(t, d.Allowed)
	})

	t.Run("admin closes despite flag false", func(t *testing.T) {
		admin := makeActor("admin", domain.RoleAdmin)
		d := Evaluate(admin, Resource{Ticket: ticket, Team: noClose, NewStatus: domain.StatusClosed}, ActionTicketStatus)
		assert.True(t, d.Allowed)
	})

	t.Run("lead blocked by flag false", func(t *testing.T) {
		lead := makeActor("lead", domain.RoleUser, membership("lead", teamID, domain.TeamRoleLead))
		d := Evaluate(lead, Resource{Ticket: ticket, Team: noClose, NewStatus: domain.StatusClosed}, ActionTicketStatus)
		assert.False(t, d.Allowed)
	})

	t.Run("lead allowed by flag true", func(t *testing.T) {
		lead := makeActor("lead", domain.RoleUser, membership("lead", teamID, domain.TeamRoleLead))
		d := Evaluate(lead, Resource{Ticket: ticket, Team: yesClose, NewStatus: domain.StatusClosed}, ActionTicketStatus)
		assert.True(t, d.Allowed)
	})

	t.Run("lead reopening not gated by close flag", func(t *testing.T) {
		lead := makeActor("lead", domain.RoleUser, membership("lead", teamID, domain.TeamRoleLead))
		d := Evaluate(lead, Resource{Ticket: ticket, Team: noClose, NewStatus: domain.StatusInProgress}, ActionTicketStatus)
		assert.True(t, d.Allowed)
	})

	t.Run("unrelated member denied outright", func(t *testing.T) {
		member := makeActor("bob", domain.RoleUser, membership("bob", teamID, domain.TeamRoleMember))
		d := Evaluate(member, Resource{Ticket: ticket, Team: yesClose, NewStatus: domain.StatusClosed}, ActionTicketStatus)
		assert.False(t, d.Allowed)
	})
}

func TestDeleteCapabilityGatesOnlyLeads(t *testing.T) {
	teamID := "team-1"
	noDelete := &domain.Team{ID: teamID, CanDeleteTickets: false}
	ticket := &domain.Ticket{ID: "t1", CreatedBy: "creator", AssignedToTeam: &teamID}

	t.Run("creator who also leads deletes despite flag false", func(t *testing.T) {
		// The creator branch wins even when the same user's lead
		// branch would be blocked.
		actor := makeActor("creator", domain.RoleUser, membership("creator", teamID, domain.TeamRoleLead))
		d := Evaluate(actor, Resource{Ticket: ticket, Team: noDelete}, ActionTicketDelete)
		assert.True(t, d.Allowed)
	})

	t.Run("non-creator lead blocked by flag false", func(t *testing.T) {
		actor := makeActor("lead", domain.RoleUser, membership("lead", teamID, domain.TeamRoleLead))
		d := Evaluate(actor, Resource{Ticket: ticket, Team: noDelete}, ActionTicketDelete)
		assert.False(t, d.Allowed)
	})

	t.Run("unassigned ticket skips capability gate", func(t *testing.T) {
		plain := &domain.Ticket{ID: "t2", CreatedBy: "someone"}
		actor := makeActor("lead", domain.RoleUser, membership("lead", teamID, domain.TeamRoleLead))
		d := Evaluate(actor, Resource{Ticket: plain}, ActionTicketDelete)
		assert.True(t, d.Allowed)
	})
}

func TestSelfProtection(t *testing.T) {
	admin := makeActor("admin", domain.RoleAdmin)
	other := makeUser("other", domain.RoleUser)

	t.Run("admin may change another user's role", func(t *testing.T) {
		d := Evaluate(admin, Resource{User: other}, ActionUserChangeRole)
		assert.True(t, d.Allowed)
	})

	t.Run("admin may not change own role", func(t *testing.T) {
		d := Evaluate(admin, Resource{User: admin.User}, ActionUserChangeRole)
		require.False(t, d.Allowed)
		assert.Equal(t, "cannot change your own role", d.Reason)
	})

	t.Run("admin may not deactivate self", func(t *testing.T) {
		d := Evaluate(admin, Resource{User: admin.User}, ActionUserDeactivate)
		assert.False(t, d.Allowed)
	})

	t.Run("non-admin may not deactivate others", func(t *testing.T) {
		user := makeActor("someone", domain.RoleUser)
		d := Evaluate(user, Resource{User: other}, ActionUserDeactivate)
		assert.False(t, d.Allowed)
	})
}

func TestTeamAdministration(t *testing.T) {
	team := &domain.Team{ID: "team-1"}
	lead := makeActor("lead", domain.RoleUser, membership("lead", "team-1", domain.TeamRoleLead))
	leadElsewhere := makeActor("lead2", domain.RoleUser, membership("lead2", "team-2", domain.TeamRoleLead))
	admin := makeActor("admin", domain.RoleAdmin)

	t.Run("team crud is admin only", func(t *testing.T) {
		for _, action := range []Action{ActionTeamCreate, ActionTeamEdit, ActionTeamDelete} {
			assert.True(t, Evaluate(admin, Resource{Team: team}, action).Allowed, string(action))
			assert.False(t, Evaluate(lead, Resource{Team: team}, action).Allowed, string(action))
		}
	})

	t.Run("member management allows lead of that team", func(t *testing.T) {
		for _, action := range []Action{ActionMemberAdd, ActionMemberRemove, ActionMemberSetRole} {
			assert.True(t, Evaluate(admin, Resource{Team: team}, action).Allowed, string(action))
			assert.True(t, Evaluate(lead, Resource{Team: team}, action).Allowed, string(action))
			assert.False(t, Evaluate(leadElsewhere, Resource{Team: team}, action).Allowed, string(action))
		}
	})
}

func TestCommentModification(t *testing.T) {
	comment := &domain.Comment{ID: "c1", TicketID: "t1", AuthorID: "alice"}

	assert.True(t, Evaluate(makeActor("alice", domain.RoleUser), Resource{Comment: comment}, ActionCommentEdit).Allowed)
	assert.True(t, Evaluate(makeActor("admin", domain.RoleAdmin), Resource{Comment: comment}, ActionCommentDelete).Allowed)
	assert.False(t, Evaluate(makeActor("bob", domain.RoleUser), Resource{Comment: comment}, ActionCommentEdit).Allowed)
	// Leads get no special comment rights.
	assert.False(t, Evaluate(makeActor("lead", domain.RoleUser, membership("lead", "x", domain.TeamRoleLead)), Resource{Comment: comment}, ActionCommentDelete).Allowed)
}

func TestAssignableUsers(t *testing.T) {
	users := []domain.User{
		{ID: "u1"}, {ID: "u2"}, {ID: "u3"},
	}
	memberships := []domain.Membership{
		membership("u1", "team-1", domain.TeamRoleLead),
		membership("u2", "team-1", domain.TeamRoleMember),
		membership("u3", "team-2", domain.TeamRoleMember),
	}

	t.Run("admin gets everyone", func(t *testing.T) {
		got := AssignableUsers(makeActor("admin", domain.RoleAdmin), users, memberships)
		assert.Len(t, got, 3)
	})

	t.Run("lead gets only members of led teams", func(t *testing.T) {
		lead := makeActor("u1", domain.RoleUser, membership("u1", "team-1", domain.TeamRoleLead))
		got := AssignableUsers(lead, users, memberships)
		ids := make([]string, 0, len(got))
		for _, u := range got {
			ids = append(ids, u.ID)
		}
		assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
	})

	t.Run("plain member gets empty set", func(t *testing.T) {
		member := makeActor("u2", domain.RoleUser, membership("u2", "team-1", domain.TeamRoleMember))
		got := AssignableUsers(member, users, memberships)
		assert.Empty(t, got)
	})
}

func TestAssignableTeams(t *testing.T) {
	teams := []domain.Team{{ID: "team-1"}, {ID: "team-2"}}

	t.Run("admin gets every team", func(t *testing.T) {
		got := AssignableTeams(makeActor("admin", domain.RoleAdmin), teams)
		assert.Len(t, got, 2)
	})

	t.Run("lead gets led teams only", func(t *testing.T) {
		lead := makeActor("u1", domain.RoleUser, membership("u1", "team-1", domain.TeamRoleLead))
		got := AssignableTeams(lead, teams)
		require.Len(t, got, 1)
		assert.Equal(t, "team-1", got[0].ID)
	})

	t.Run("demoted lead loses the team", func(t *testing.T) {
		// Same user, rebuilt snapshot after a role change.
		demoted := makeActor("u1", domain.RoleUser, membership("u1", "team-1", domain.TeamRoleMember))
		got := AssignableTeams(demoted, teams)
		assert.Empty(t, got)
	})
}

func TestSnapshotIgnoresForeignMemberships(t *testing.T) {
	// Rows for other users must not leak into the actor's role map.
	a := makeActor("alice", domain.RoleUser,
		membership("bob", "team-1", domain.TeamRoleLead),
		membership("alice", "team-2", domain.TeamRoleMember),
	)
	assert.False(t, a.IsLead())
	assert.False(t, a.IsMemberOf("team-1"))
	assert.True(t, a.IsMemberOf("team-2"))
}
