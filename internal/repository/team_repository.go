package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/thomlank/QuikTik/internal/domain"
)

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Delete(ctx context.Context, id string) error
}

type teamRepository struct {
	db DB
}

// NewTeamRepository constructs repository.
func NewTeamRepository(db DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, can_view_all_tickets, can_assign_tickets, can_close_tickets, can_delete_tickets)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		team.Name,
		team.CanViewAllTickets,
		team.CanAssignTickets,
		team.CanCloseTickets,
		team.CanDeleteTickets,
	).Scan(&team.ID, &team.CreatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, can_view_all_tickets=$2, can_assign_tickets=$3, can_close_tickets=$4, can_delete_tickets=$5
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		team.Name,
		team.CanViewAllTickets,
		team.CanAssignTickets,
		team.CanCloseTickets,
		team.CanDeleteTickets,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, name, can_view_all_tickets, can_assign_tickets, can_close_tickets, can_delete_tickets, created_at
        FROM teams WHERE id=$1`
	var team domain.Team
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.CanViewAllTickets,
		&team.CanAssignTickets,
		&team.CanCloseTickets,
		&team.CanDeleteTickets,
		&team.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	const query = `
        SELECT id, name, can_view_all_tickets, can_assign_tickets, can_close_tickets, can_delete_tickets, created_at
        FROM teams ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.CanViewAllTickets,
			&team.CanAssignTickets,
			&team.CanCloseTickets,
			&team.CanDeleteTickets,
			&team.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
