package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Values are
// ordinal; any authorized actor may move between the four states in a
// single step.
type TicketStatus int

const (
	StatusOpen       TicketStatus = 1
	StatusInProgress TicketStatus = 2
	StatusResolved   TicketStatus = 3
	StatusClosed     TicketStatus = 4
)

// IsValid reports whether the status is one of the four states.
func (s TicketStatus) IsValid() bool {
	return s >= StatusOpen && s <= StatusClosed
}

func (s TicketStatus) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// TicketPriority enumerates urgency, ordinal with Urgent highest.
type TicketPriority int

const (
	PriorityUrgent TicketPriority = 1
	PriorityHigh   TicketPriority = 2
	PriorityMedium TicketPriority = 3
	PriorityLow    TicketPriority = 4
)

// IsValid reports whether the priority is a known value.
func (p TicketPriority) IsValid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

func (p TicketPriority) String() string {
	switch p {
	case PriorityUrgent:
		return "Urgent"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Ticket is the aggregate for helpdesk requests. CreatedBy is set once
// at creation and never changed. AssignedTo and AssignedToTeam are
// independently nullable; setting one does not clear the other.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	CategoryID     *string
	CreatedBy      string
	AssignedTo     *string
	AssignedToTeam *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Comment is an append-only entry in a ticket's thread, ordered by
// creation time ascending. A comment's lifetime never exceeds its
// ticket's.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
