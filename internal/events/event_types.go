package events

import (
	"time"

	"github.com/thomlank/QuikTik/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventCommentAdded        EventType = "comment_added"
	EventMembershipChanged   EventType = "membership_changed"
	EventTeamDeleted         EventType = "team_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID string                `json:"ticket_id"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  string              `json:"ticket_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID       string  `json:"ticket_id"`
	AssignedTo     *string `json:"assigned_to,omitempty"`
	AssignedToTeam *string `json:"assigned_to_team,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketID string `json:"ticket_id"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	TicketID  string `json:"ticket_id"`
	CommentID string `json:"comment_id"`
	AuthorID  string `json:"author_id"`
}

// MembershipChangedPayload covers add, remove and role changes. The
// snapshot invalidator keys off UserID: any change to a user's
// memberships stales that user's cached permission snapshot.
type MembershipChangedPayload struct {
	UserID string          `json:"user_id"`
	TeamID string          `json:"team_id"`
	Role   domain.TeamRole `json:"role,omitempty"`
}

// TeamDeletedPayload lists every user whose membership was cascaded
// away so each of their snapshots can be invalidated.
type TeamDeletedPayload struct {
	TeamID  string   `json:"team_id"`
	UserIDs []string `json:"user_ids"`
}
