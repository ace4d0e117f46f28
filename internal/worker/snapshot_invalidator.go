package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/thomlank/QuikTik/internal/events"
	"github.com/thomlank/QuikTik/internal/persistence"
)

// SnapshotInvalidator drops cached permission snapshots when
// membership state changes, so a user whose role changed mid-session
// gets a fresh snapshot on their next request.
type SnapshotInvalidator struct {
	cache  *persistence.SnapshotCache
	logger *zap.Logger
}

// NewSnapshotInvalidator constructs the worker.
func NewSnapshotInvalidator(cache *persistence.SnapshotCache, logger *zap.Logger) *SnapshotInvalidator {
	return &SnapshotInvalidator{cache: cache, logger: logger}
}

// Register subscribes to membership events.
func (w *SnapshotInvalidator) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventMembershipChanged, w.handleMembershipChanged)
	dispatcher.Subscribe(events.EventTeamDeleted, w.handleTeamDeleted)
}

func (w *SnapshotInvalidator) handleMembershipChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MembershipChangedPayload)
	if !ok {
		return nil
	}
	if err := w.cache.Invalidate(ctx, payload.UserID); err != nil {
		w.logger.Warn("snapshot invalidation failed", zap.String("user_id", payload.UserID), zap.Error(err))
	}
	return nil
}

func (w *SnapshotInvalidator) handleTeamDeleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TeamDeletedPayload)
	if !ok {
		return nil
	}
	for _, userID := range payload.UserIDs {
		if err := w.cache.Invalidate(ctx, userID); err != nil {
			w.logger.Warn("snapshot invalidation failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}
