package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/thomlank/QuikTik/internal/domain"
	"github.com/thomlank/QuikTik/internal/events"
	"github.com/thomlank/QuikTik/internal/policy"
	"github.com/thomlank/QuikTik/internal/repository"
	apperrors "github.com/thomlank/QuikTik/pkg/util"
)

// MembershipService is the membership directory: teams, their
// capability flags and the (user, team, role) bindings. All mutations
// run inside a unit of work with a snapshot rebuilt from the
// transaction, keeping the policy check and the write atomic.
type MembershipService struct {
	repos      repository.Repos
	uow        repository.UnitOfWork
	dispatcher events.Dispatcher
}

// MembershipDependencies bundles requirements for the service.
type MembershipDependencies struct {
	Repos      repository.Repos
	UnitOfWork repository.UnitOfWork
	Dispatcher events.Dispatcher
}

// NewMembershipService constructs the service.
func NewMembershipService(deps MembershipDependencies) *MembershipService {
	return &MembershipService{
		repos:      deps.Repos,
		uow:        deps.UnitOfWork,
		dispatcher: deps.Dispatcher,
	}
}

// TeamUpdateInput carries optional team changes.
type TeamUpdateInput struct {
	Name              *string
	CanViewAllTickets *bool
	CanAssignTickets  *bool
	CanCloseTickets   *bool
	CanDeleteTickets  *bool
}

// ListTeams returns every team; team viewing is not access-restricted.
func (s *MembershipService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.repos.Teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// GetTeam fetches a single team.
func (s *MembershipService) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := s.repos.Teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// CreateTeam creates a team with all capability flags false.
func (s *MembershipService) CreateTeam(ctx context.Context, actor *domain.User, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	var team *domain.Team
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{}, policy.ActionTeamCreate); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		team = &domain.Team{Name: name}
		return apperrors.MapError(repos.Teams.Create(ctx, team))
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeam edits the team's name and capability flags.
func (s *MembershipService) UpdateTeam(ctx context.Context, actor *domain.User, teamID string, input TeamUpdateInput) (*domain.Team, error) {
	var team *domain.Team
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		team, err = repos.Teams.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
			}
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Team: team}, policy.ActionTeamEdit); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		if input.Name != nil {
			trimmed := strings.TrimSpace(*input.Name)
			if trimmed == "" {
				return apperrors.NewValidationError("name required", nil)
			}
			team.Name = trimmed
		}
		if input.CanViewAllTickets != nil {
			team.CanViewAllTickets = *input.CanViewAllTickets
		}
		if input.CanAssignTickets != nil {
			team.CanAssignTickets = *input.CanAssignTickets
		}
		if input.CanCloseTickets != nil {
			team.CanCloseTickets = *input.CanCloseTickets
		}
		if input.CanDeleteTickets != nil {
			team.CanDeleteTickets = *input.CanDeleteTickets
		}
		return apperrors.MapError(repos.Teams.Update(ctx, team))
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// DeleteTeam removes a team, cascading: memberships are deleted and
// tickets previously assigned to the team have assigned_to_team
// cleared, not deleted.
func (s *MembershipService) DeleteTeam(ctx context.Context, actor *domain.User, teamID string) error {
	var affectedUsers []string
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		team, err := repos.Teams.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
			}
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Team: team}, policy.ActionTeamDelete); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}

		memberships, err := repos.Memberships.ListByTeam(ctx, teamID)
		if err != nil {
			return apperrors.MapError(err)
		}
		for _, m := range memberships {
			affectedUsers = append(affectedUsers, m.UserID)
		}
		if err := repos.Memberships.DeleteByTeam(ctx, teamID); err != nil {
			return apperrors.MapError(err)
		}
		if err := repos.Tickets.ClearTeamAssignments(ctx, teamID); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.MapError(repos.Teams.Delete(ctx, teamID))
	})
	if err != nil {
		return err
	}
	s.publish(ctx, actor.ID, events.EventTeamDeleted, events.TeamDeletedPayload{
		TeamID:  teamID,
		UserIDs: affectedUsers,
	})
	return nil
}

// ListMembers returns the memberships of a team.
func (s *MembershipService) ListMembers(ctx context.Context, teamID string) ([]domain.Membership, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	memberships, err := s.repos.Memberships.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return memberships, nil
}

// AddMember binds a user to a team. Actor must be admin or a lead of
// the team; a duplicate (user, team) pair is a conflict.
func (s *MembershipService) AddMember(ctx context.Context, actor *domain.User, teamID, targetUserID string, role domain.TeamRole) (*domain.Membership, error) {
	if role == "" {
		role = domain.TeamRoleMember
	}
	if !role.IsValid() {
		return nil, apperrors.NewInvalidTransition("invalid team role", map[string]any{"role": role})
	}

	var membership *domain.Membership
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		team, err := repos.Teams.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
			}
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Team: team}, policy.ActionMemberAdd); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		if _, err := repos.Users.GetByID(ctx, targetUserID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": targetUserID})
			}
			return apperrors.MapError(err)
		}
		if _, err := repos.Memberships.GetByUserAndTeam(ctx, targetUserID, teamID); err == nil {
			return apperrors.NewConflict("user already in team", map[string]any{"user_id": targetUserID, "team_id": teamID})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}

		membership = &domain.Membership{UserID: targetUserID, TeamID: teamID, Role: role}
		return apperrors.MapError(repos.Memberships.Create(ctx, membership))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor.ID, events.EventMembershipChanged, events.MembershipChangedPayload{
		UserID: targetUserID,
		TeamID: teamID,
		Role:   role,
	})
	return membership, nil
}

// RemoveMember deletes a membership row. Removing the acting user's
// own membership is permitted; the published event invalidates the
// actor's cached snapshot so later checks in the session see the
// change.
func (s *MembershipService) RemoveMember(ctx context.Context, actor *domain.User, membershipID string) error {
	var removed *domain.Membership
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		removed, err = repos.Memberships.GetByID(ctx, membershipID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("membership", map[string]any{"membership_id": membershipID})
			}
			return apperrors.MapError(err)
		}
		team, err := repos.Teams.GetByID(ctx, removed.TeamID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Team: team}, policy.ActionMemberRemove); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		return apperrors.MapError(repos.Memberships.Delete(ctx, membershipID))
	})
	if err != nil {
		return err
	}
	s.publish(ctx, actor.ID, events.EventMembershipChanged, events.MembershipChangedPayload{
		UserID: removed.UserID,
		TeamID: removed.TeamID,
	})
	return nil
}

// SetMemberRole assigns the membership's team role directly.
func (s *MembershipService) SetMemberRole(ctx context.Context, actor *domain.User, membershipID string, role domain.TeamRole) (*domain.Membership, error) {
	if !role.IsValid() {
		return nil, apperrors.NewInvalidTransition("invalid team role", map[string]any{"role": role})
	}

	var membership *domain.Membership
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		membership, err = repos.Memberships.GetByID(ctx, membershipID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("membership", map[string]any{"membership_id": membershipID})
			}
			return apperrors.MapError(err)
		}
		team, err := repos.Teams.GetByID(ctx, membership.TeamID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Team: team}, policy.ActionMemberSetRole); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		if err := repos.Memberships.UpdateRole(ctx, membershipID, role); err != nil {
			return apperrors.MapError(err)
		}
		membership.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor.ID, events.EventMembershipChanged, events.MembershipChangedPayload{
		UserID: membership.UserID,
		TeamID: membership.TeamID,
		Role:   role,
	})
	return membership, nil
}

func (s *MembershipService) publish(ctx context.Context, actorID string, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
