package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventMembershipChanged, func(_ context.Context, e Event) error {
		seen = append(seen, e.ID)
		return nil
	})
	d.Subscribe(EventMembershipChanged, func(_ context.Context, e Event) error {
		seen = append(seen, e.ID+"-second")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventMembershipChanged})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e1-second"}, seen)
}

func TestDispatcherIgnoresUnrelatedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventTeamDeleted, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{ID: "e1", Type: EventTicketCreated}))
	assert.False(t, called)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	var second bool
	d.Subscribe(EventTicketDeleted, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketDeleted, func(_ context.Context, _ Event) error {
		second = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{ID: "e1", Type: EventTicketDeleted}))
	assert.True(t, second)
}
