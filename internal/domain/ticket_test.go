package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusValidity(t *testing.T) {
	assert.True(t, StatusOpen.IsValid())
	assert.True(t, StatusClosed.IsValid())
	assert.False(t, TicketStatus(0).IsValid())
	assert.False(t, TicketStatus(5).IsValid())
}

func TestTicketStatusLabels(t *testing.T) {
	assert.Equal(t, "Open", StatusOpen.String())
	assert.Equal(t, "In Progress", StatusInProgress.String())
	assert.Equal(t, "Resolved", StatusResolved.String())
	assert.Equal(t, "Closed", StatusClosed.String())
	assert.Equal(t, "Unknown", TicketStatus(9).String())
}

func TestTicketPriority(t *testing.T) {
	assert.True(t, PriorityUrgent.IsValid())
	assert.True(t, PriorityLow.IsValid())
	assert.False(t, TicketPriority(0).IsValid())
	assert.Equal(t, "Urgent", PriorityUrgent.String())
	assert.Equal(t, "Medium", PriorityMedium.String())
}

func TestUserFullName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	assert.Equal(t, "Ada Lovelace", u.FullName())

	noName := &User{Email: "ghost@example.com"}
	assert.Equal(t, "ghost@example.com", noName.FullName())
}
