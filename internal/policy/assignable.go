package policy

import "github.com/thomlank/QuikTik/internal/domain"

// AssignableUsers returns the users the actor may assign tickets to:
// every user for admins, and for leads exactly the users holding a
// membership in a team the actor leads. allMemberships is the full
// membership directory snapshot. Non-admin non-leads get an empty set.
func AssignableUsers(a *Actor, users []domain.User, allMemberships []domain.Membership) []domain.User {
	if a.IsAdmin() {
		return users
	}
	if !a.IsLead() {
		return []domain.User{}
	}

	led := make(map[string]struct{}, len(a.LedTeamIDs()))
	for _, teamID := range a.LedTeamIDs() {
		led[teamID] = struct{}{}
	}
	eligible := make(map[string]struct{})
	for _, m := range allMemberships {
		if _, ok := led[m.TeamID]; ok {
			eligible[m.UserID] = struct{}{}
		}
	}

	result := make([]domain.User, 0, len(eligible))
	for _, u := range users {
		if _, ok := eligible[u.ID]; ok {
			result = append(result, u)
		}
	}
	return result
}

// AssignableTeams returns the teams the actor may assign tickets to:
// every team for admins, the led teams for leads, none otherwise.
func AssignableTeams(a *Actor, teams []domain.Team) []domain.Team {
	if a.IsAdmin() {
		return teams
	}
	if !a.IsLead() {
		return []domain.Team{}
	}

	led := make(map[string]struct{}, len(a.LedTeamIDs()))
	for _, teamID := range a.LedTeamIDs() {
		led[teamID] = struct{}{}
	}
	result := make([]domain.Team, 0, len(led))
	for _, t := range teams {
		if _, ok := led[t.ID]; ok {
			result = append(result, t)
		}
	}
	return result
}
