package policy

import "github.com/thomlank/QuikTik/internal/domain"

// FilterVisible returns the tickets the actor may see, preserving
// order. Each ticket is judged independently against the visibility
// predicate, so the result for a ticket is identical whether it is
// evaluated alone or within a larger collection. teamsByID must
// contain the assigned team for any team-assigned ticket; a missing
// entry simply fails the team-membership branch.
func FilterVisible(a *Actor, tickets []domain.Ticket, teamsByID map[string]domain.Team) []domain.Ticket {
	visible := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		var assignedTeam *domain.Team
		if t.AssignedToTeam != nil {
			if team, ok := teamsByID[*t.AssignedToTeam]; ok {
				assignedTeam = &team
			}
		}
		if CanViewTicket(a, &t, assignedTeam) {
			visible = append(visible, t)
		}
	}
	return visible
}
