package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos bundles every repository over a single querier.
type Repos struct {
	Users       UserRepository
	Teams       TeamRepository
	Memberships MembershipRepository
	Categories  CategoryRepository
	Tickets     TicketRepository
	Comments    CommentRepository
}

// NewRepos constructs the bundle over the given querier.
func NewRepos(db DB) Repos {
	return Repos{
		Users:       NewUserRepository(db),
		Teams:       NewTeamRepository(db),
		Memberships: NewMembershipRepository(db),
		Categories:  NewCategoryRepository(db),
		Tickets:     NewTicketRepository(db),
		Comments:    NewCommentRepository(db),
	}
}

// UnitOfWork runs a function with repositories bound to one
// transaction. Services use it to keep every check-then-act sequence
// (evaluate policy, then mutate) atomic against the store, so an actor
// demoted mid-request cannot still pass a stale check.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

type pgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork returns a Postgres-backed unit of work.
func NewUnitOfWork(pool *pgxpool.Pool) UnitOfWork {
	return &pgxUnitOfWork{pool: pool}
}

func (u *pgxUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
