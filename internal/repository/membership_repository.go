package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/thomlank/QuikTik/internal/domain"
)

// MembershipRepository manages persistence for team memberships.
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.Membership) error
	UpdateRole(ctx context.Context, id string, role domain.TeamRole) error
	GetByID(ctx context.Context, id string) (*domain.Membership, error)
	GetByUserAndTeam(ctx context.Context, userID, teamID string) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Membership, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Membership, error)
	ListAll(ctx context.Context) ([]domain.Membership, error)
	Delete(ctx context.Context, id string) error
	DeleteByTeam(ctx context.Context, teamID string) error
}

type membershipRepository struct {
	db DB
}

// NewMembershipRepository constructs repository.
func NewMembershipRepository(db DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	const query = `
        INSERT INTO team_memberships (user_id, team_id, role)
        VALUES ($1,$2,$3)
        RETURNING id, joined_at`
	return r.db.QueryRow(ctx, query,
		membership.UserID,
		membership.TeamID,
		membership.Role,
	).Scan(&membership.ID, &membership.JoinedAt)
}

func (r *membershipRepository) UpdateRole(ctx context.Context, id string, role domain.TeamRole) error {
	cmd, err := r.db.Exec(ctx, `UPDATE team_memberships SET role=$1 WHERE id=$2`, role, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *membershipRepository) GetByID(ctx context.Context, id string) (*domain.Membership, error) {
	const query = `
        SELECT id, user_id, team_id, role, joined_at
        FROM team_memberships WHERE id=$1`
	return scanMembership(r.db.QueryRow(ctx, query, id))
}

func (r *membershipRepository) GetByUserAndTeam(ctx context.Context, userID, teamID string) (*domain.Membership, error) {
	const query = `
        SELECT id, user_id, team_id, role, joined_at
        FROM team_memberships WHERE user_id=$1 AND team_id=$2`
	return scanMembership(r.db.QueryRow(ctx, query, userID, teamID))
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	const query = `
        SELECT id, user_id, team_id, role, joined_at
        FROM team_memberships WHERE user_id=$1 ORDER BY joined_at`
	return r.list(ctx, query, userID)
}

func (r *membershipRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.Membership, error) {
	const query = `
        SELECT id, user_id, team_id, role, joined_at
        FROM team_memberships WHERE team_id=$1 ORDER BY joined_at`
	return r.list(ctx, query, teamID)
}

func (r *membershipRepository) ListAll(ctx context.Context) ([]domain.Membership, error) {
	const query = `
        SELECT id, user_id, team_id, role, joined_at
        FROM team_memberships ORDER BY joined_at`
	return r.list(ctx, query)
}

func (r *membershipRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM team_memberships WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *membershipRepository) DeleteByTeam(ctx context.Context, teamID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM team_memberships WHERE team_id=$1`, teamID)
	return err
}

func (r *membershipRepository) list(ctx context.Context, query string, args ...any) ([]domain.Membership, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.TeamID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	var m domain.Membership
	if err := row.Scan(&m.ID, &m.UserID, &m.TeamID, &m.Role, &m.JoinedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
