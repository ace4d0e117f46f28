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

// TicketService coordinates the ticket lifecycle and comment threads.
// Every mutation is policy-gated inside a unit of work; a ticket the
// actor may not see is reported as not found rather than forbidden, so
// unauthorized actors cannot probe for existence.
type TicketService struct {
	repos      repository.Repos
	uow        repository.UnitOfWork
	actors     *ActorProvider
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	Repos         repository.Repos
	UnitOfWork    repository.UnitOfWork
	ActorProvider *ActorProvider
	Dispatcher    events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		repos:      deps.Repos,
		uow:        deps.UnitOfWork,
		actors:     deps.ActorProvider,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CategoryID  *string
}

// TicketUpdateInput carries optional edits to title, description,
// priority and category. ClearCategory distinguishes "unset category"
// from "leave unchanged".
type TicketUpdateInput struct {
	Title         *string
	Description   *string
	Priority      *domain.TicketPriority
	CategoryID    *string
	ClearCategory bool
}

// TicketAssignInput sets both assignment fields; nil clears a field.
// The two fields are independent: a ticket may end up assigned to a
// user, a team, both, or neither.
type TicketAssignInput struct {
	AssignedTo     *string
	AssignedToTeam *string
}

// CreateTicket creates a ticket; any authenticated actor may create,
// and the creator becomes created_by permanently.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	priority := input.Priority
	if priority == 0 {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, apperrors.NewInvalidTransition("invalid priority", map[string]any{"priority": priority})
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		if input.CategoryID != nil {
			if _, err := repos.Categories.GetByID(ctx, *input.CategoryID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("category", map[string]any{"category_id": *input.CategoryID})
				}
				return apperrors.MapError(err)
			}
		}
		ticket = &domain.Ticket{
			Title:       title,
			Description: description,
			Status:      domain.StatusOpen,
			Priority:    priority,
			CategoryID:  input.CategoryID,
			CreatedBy:   actor.ID,
		}
		return apperrors.MapError(repos.Tickets.Create(ctx, ticket))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor.ID, events.EventTicketCreated, events.TicketCreatedPayload{
		TicketID: ticket.ID,
		Priority: ticket.Priority,
		Title:    ticket.Title,
	})
	return ticket, nil
}

// ListTickets returns the tickets visible to the actor. The filter is
// applied here, never client-side.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User) ([]domain.Ticket, error) {
	snapshot, err := s.actors.Snapshot(ctx, actor)
	if err != nil {
		return nil, err
	}
	tickets, err := s.repos.Tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	teamsByID, err := s.teamsByID(ctx)
	if err != nil {
		return nil, err
	}
	return policy.FilterVisible(snapshot, tickets, teamsByID), nil
}

// GetTicket fetches a single ticket with its comment thread. A ticket
// outside the actor's visibility is indistinguishable from an absent
// one.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	snapshot, err := s.actors.Snapshot(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	ticket, assignedTeam, err := s.loadTicket(ctx, s.repos, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !policy.CanViewTicket(snapshot, ticket, assignedTeam) {
		return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	comments, err := s.repos.Comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// UpdateTicket edits title, description, priority and category.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, apperrors.NewInvalidTransition("invalid priority", map[string]any{"priority": *input.Priority})
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		var assignedTeam *domain.Team
		ticket, assignedTeam, err = s.loadTicket(ctx, repos, ticketID)
		if err != nil {
			return err
		}
		if !policy.CanViewTicket(snapshot, ticket, assignedTeam) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Ticket: ticket}, policy.ActionTicketEdit); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		if input.Title != nil {
			trimmed := strings.TrimSpace(*input.Title)
			if trimmed == "" {
				return apperrors.NewValidationError("title required", nil)
			}
			ticket.Title = trimmed
		}
		if input.Description != nil {
			trimmed := strings.TrimSpace(*input.Description)
			if trimmed == "" {
				return apperrors.NewValidationError("description required", nil)
			}
			ticket.Description = trimmed
		}
		if input.Priority != nil {
			ticket.Priority = *input.Priority
		}
		if input.ClearCategory {
			ticket.CategoryID = nil
		} else if input.CategoryID != nil {
			if _, err := repos.Categories.GetByID(ctx, *input.CategoryID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("category", map[string]any{"category_id": *input.CategoryID})
				}
				return apperrors.MapError(err)
			}
			ticket.CategoryID = input.CategoryID
		}
		return apperrors.MapError(repos.Tickets.Update(ctx, ticket))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor.ID, events.EventTicketUpdated, events.TicketCreatedPayload{
		TicketID: ticket.ID,
		Priority: ticket.Priority,
		Title:    ticket.Title,
	})
	return ticket, nil
}

// ChangeStatus moves the ticket to any of the four states in one step.
// The lead branch is narrowed by the assigned team's can_close_tickets
// flag when moving to Resolved or Closed.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !newStatus.IsValid() {
		return nil, apperrors.NewInvalidTransition("invalid status", map[string]any{"status": newStatus})
	}

	var ticket *domain.Ticket
	var oldStatus domain.TicketStatus
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		var assignedTeam *domain.Team
		ticket, assignedTeam, err = s.loadTicket(ctx, repos, ticketID)
		if err != nil {
			return err
		}
		if !policy.CanViewTicket(snapshot, ticket, assignedTeam) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		res := policy.Resource{Ticket: ticket, Team: assignedTeam, NewStatus: newStatus}
		if decision := policy.Evaluate(snapshot, res, policy.ActionTicketStatus); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		oldStatus = ticket.Status
		ticket.Status = newStatus
		return apperrors.MapError(repos.Tickets.Update(ctx, ticket))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor.ID, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		TicketID:  ticket.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return ticket, nil
}

// DeleteTicket removes the ticket and, through the store's cascade,
// its comments. The lead branch is narrowed by can_delete_tickets when
// the ticket is assigned to a team.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		ticket, assignedTeam, err := s.loadTicket(ctx, repos, ticketID)
		if err != nil {
			return err
		}
		if !policy.CanViewTicket(snapshot, ticket, assignedTeam) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		res := policy.Resource{Ticket: ticket, Team: assignedTeam}
		if decision := policy.Evaluate(snapshot, res, policy.ActionTicketDelete); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		return apperrors.MapError(repos.Tickets.Delete(ctx, ticketID))
	})
	if err != nil {
		return err
	}
	s.publish(ctx, actor.ID, events.EventTicketDeleted, events.TicketDeletedPayload{TicketID: ticketID})
	return nil
}

// AssignTicket writes both assignment fields. Admins may target any
// user or team; leads only users holding membership in a team they
// lead, and only teams they lead.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketAssignInput) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		var assignedTeam *domain.Team
		ticket, assignedTeam, err = s.loadTicket(ctx, repos, ticketID)
		if err != nil {
			return err
		}
		if !policy.CanViewTicket(snapshot, ticket, assignedTeam) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Ticket: ticket}, policy.ActionTicketAssign); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}

		if input.AssignedTo != nil {
			if _, err := repos.Users.GetByID(ctx, *input.AssignedTo); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("user", map[string]any{"user_id": *input.AssignedTo})
				}
				return apperrors.MapError(err)
			}
			if !snapshot.IsAdmin() {
				ok, err := s.holdsLedMembership(ctx, repos, snapshot, *input.AssignedTo)
				if err != nil {
					return err
				}
				if !ok {
					return apperrors.NewForbidden("can only assign to members of your teams")
				}
			}
		}
		if input.AssignedToTeam != nil {
			if _, err := repos.Teams.GetByID(ctx, *input.AssignedToTeam); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("team", map[string]any{"team_id": *input.AssignedToTeam})
				}
				return apperrors.MapError(err)
			}
			if !snapshot.IsAdmin() && !snapshot.IsLeadOf(*input.AssignedToTeam) {
				return apperrors.NewForbidden("can only assign to your teams")
			}
		}

		ticket.AssignedTo = input.AssignedTo
		ticket.AssignedToTeam = input.AssignedToTeam
		return apperrors.MapError(repos.Tickets.Update(ctx, ticket))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor.ID, events.EventTicketAssigned, events.TicketAssignedPayload{
		TicketID:       ticket.ID,
		AssignedTo:     ticket.AssignedTo,
		AssignedToTeam: ticket.AssignedToTeam,
	})
	return ticket, nil
}

// AssignableUsers returns the users the actor may pick as assignee.
func (s *TicketService) AssignableUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	snapshot, err := s.actors.Snapshot(ctx, actor)
	if err != nil {
		return nil, err
	}
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	memberships, err := s.repos.Memberships.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy.AssignableUsers(snapshot, users, memberships), nil
}

// AssignableTeams returns the teams the actor may pick as target team.
func (s *TicketService) AssignableTeams(ctx context.Context, actor *domain.User) ([]domain.Team, error) {
	snapshot, err := s.actors.Snapshot(ctx, actor)
	if err != nil {
		return nil, err
	}
	teams, err := s.repos.Teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy.AssignableTeams(snapshot, teams), nil
}

// ListComments returns the ticket's thread, oldest first.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	_, comments, err := s.GetTicket(ctx, actor, ticketID)
	return comments, err
}

// AddComment appends to the ticket's thread; any actor who can view
// the ticket may comment.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	var comment *domain.Comment
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		ticket, assignedTeam, err := s.loadTicket(ctx, repos, ticketID)
		if err != nil {
			return err
		}
		res := policy.Resource{Ticket: ticket, Team: assignedTeam}
		if decision := policy.Evaluate(snapshot, res, policy.ActionTicketComment); !decision.Allowed {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		comment = &domain.Comment{TicketID: ticketID, AuthorID: actor.ID, Content: content}
		return apperrors.MapError(repos.Comments.Create(ctx, comment))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor.ID, events.EventCommentAdded, events.CommentAddedPayload{
		TicketID:  ticketID,
		CommentID: comment.ID,
		AuthorID:  actor.ID,
	})
	return comment, nil
}

// UpdateComment edits a comment; author or admin only.
func (s *TicketService) UpdateComment(ctx context.Context, actor *domain.User, commentID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	var comment *domain.Comment
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		comment, err = repos.Comments.GetByID(ctx, commentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
			}
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Comment: comment}, policy.ActionCommentEdit); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		comment.Content = content
		return apperrors.MapError(repos.Comments.Update(ctx, comment))
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment; author or admin only.
func (s *TicketService) DeleteComment(ctx context.Context, actor *domain.User, commentID string) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		comment, err := repos.Comments.GetByID(ctx, commentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
			}
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{Comment: comment}, policy.ActionCommentDelete); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		return apperrors.MapError(repos.Comments.Delete(ctx, commentID))
	})
}

func (s *TicketService) loadTicket(ctx context.Context, repos repository.Repos, ticketID string) (*domain.Ticket, *domain.Team, error) {
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	var assignedTeam *domain.Team
	if ticket.AssignedToTeam != nil {
		assignedTeam, err = repos.Teams.GetByID(ctx, *ticket.AssignedToTeam)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.MapError(err)
		}
	}
	return ticket, assignedTeam, nil
}

func (s *TicketService) holdsLedMembership(ctx context.Context, repos repository.Repos, snapshot *policy.Actor, userID string) (bool, error) {
	memberships, err := repos.Memberships.ListByUser(ctx, userID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	for _, m := range memberships {
		if snapshot.IsLeadOf(m.TeamID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *TicketService) teamsByID(ctx context.Context) (map[string]domain.Team, error) {
	teams, err := s.repos.Teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID := make(map[string]domain.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	return byID, nil
}

func (s *TicketService) publish(ctx context.Context, actorID string, eventType events.EventType, payload interface{}) {
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
