package service

import (
	"context"

	"github.com/thomlank/QuikTik/internal/domain"
	"github.com/thomlank/QuikTik/internal/persistence"
	"github.com/thomlank/QuikTik/internal/policy"
	"github.com/thomlank/QuikTik/internal/repository"
	apperrors "github.com/thomlank/QuikTik/pkg/util"
)

// ActorProvider builds per-request policy snapshots. Read paths may be
// served from the Redis cache; mutation paths rebuild the snapshot
// from the transaction's view instead (see snapshotInTx) so that a
// demotion committed by a concurrent request is always observed.
type ActorProvider struct {
	memberships repository.MembershipRepository
	cache       *persistence.SnapshotCache
}

// NewActorProvider constructs the provider.
func NewActorProvider(memberships repository.MembershipRepository, cache *persistence.SnapshotCache) *ActorProvider {
	return &ActorProvider{memberships: memberships, cache: cache}
}

// Snapshot returns the actor snapshot for the user, preferring the
// cache and falling back to the membership directory.
func (p *ActorProvider) Snapshot(ctx context.Context, user *domain.User) (*policy.Actor, error) {
	if memberships, err := p.cache.Get(ctx, user.ID); err == nil {
		return policy.NewActor(user, memberships), nil
	}
	memberships, err := p.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	_ = p.cache.Set(ctx, user.ID, memberships)
	return policy.NewActor(user, memberships), nil
}

// snapshotInTx builds a fresh actor snapshot from the transaction's
// repositories, bypassing the cache.
func snapshotInTx(ctx context.Context, repos repository.Repos, user *domain.User) (*policy.Actor, error) {
	memberships, err := repos.Memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy.NewActor(user, memberships), nil
}
