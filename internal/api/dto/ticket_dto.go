package dto

import (
	"time"

	"github.com/thomlank/QuikTik/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	CategoryID  *string               `json:"category_id"`
}

// UpdateTicketRequest carries optional ticket edits. Sending
// category_id as an empty string clears the category.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	CategoryID  *string                `json:"category_id"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest sets both assignment fields. An empty string or
// omitted field clears that assignment.
type AssignTicketRequest struct {
	AssignedTo     *string `json:"assigned_to"`
	AssignedToTeam *string `json:"assigned_to_team"`
}

// TicketResponse is the ticket representation returned by list and
// detail endpoints. Status and priority carry both the ordinal and a
// display label.
type TicketResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	StatusLabel    string                `json:"status_label"`
	Priority       domain.TicketPriority `json:"priority"`
	PriorityLabel  string                `json:"priority_label"`
	CategoryID     *string               `json:"category_id"`
	CreatedBy      string                `json:"created_by"`
	AssignedTo     *string               `json:"assigned_to"`
	AssignedToTeam *string               `json:"assigned_to_team"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse is a ticket with its comment thread.
type TicketDetailResponse struct {
	TicketResponse
	Comments []CommentResponse `json:"comments"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}
