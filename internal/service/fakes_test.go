package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thomlank/QuikTik/internal/domain"
	"github.com/thomlank/QuikTik/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres-backed
// repositories, good enough to drive the services in tests.
type memStore struct {
	mu          sync.Mutex
	seq         int
	users       []domain.User
	teams       []domain.Team
	memberships []domain.Membership
	categories  []domain.Category
	tickets     []domain.Ticket
	comments    []domain.Comment
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func newMemRepos() (repository.Repos, *memStore) {
	store := &memStore{}
	repos := repository.Repos{
		Users:       &memUserRepo{store},
		Teams:       &memTeamRepo{store},
		Memberships: &memMembershipRepo{store},
		Categories:  &memCategoryRepo{store},
		Tickets:     &memTicketRepo{store},
		Comments:    &memCommentRepo{store},
	}
	return repos, store
}

// memUnitOfWork satisfies repository.UnitOfWork without transactions;
// the callback simply runs against the same store.
type memUnitOfWork struct {
	repos repository.Repos
}

func (u *memUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	return fn(ctx, u.repos)
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.nextID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == user.ID {
			user.UpdatedAt = time.Now()
			r.s.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			u := r.s.users[i]
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].Email == email {
			u := r.s.users[i]
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.User{}, r.s.users...), nil
}

type memTeamRepo struct{ s *memStore }

func (r *memTeamRepo) Create(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team.ID = r.s.nextID("team")
	team.CreatedAt = time.Now()
	r.s.teams = append(r.s.teams, *team)
	return nil
}

func (r *memTeamRepo) Update(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.teams {
		if r.s.teams[i].ID == team.ID {
			r.s.teams[i] = *team
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.teams {
		if r.s.teams[i].ID == id {
			t := r.s.teams[i]
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTeamRepo) List(_ context.Context) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Team{}, r.s.teams...), nil
}

func (r *memTeamRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.teams {
		if r.s.teams[i].ID == id {
			r.s.teams = append(r.s.teams[:i], r.s.teams[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memMembershipRepo struct{ s *memStore }

func (r *memMembershipRepo) Create(_ context.Context, m *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.nextID("membership")
	m.JoinedAt = time.Now()
	r.s.memberships = append(r.s.memberships, *m)
	return nil
}

func (r *memMembershipRepo) UpdateRole(_ context.Context, id string, role domain.TeamRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.memberships {
		if r.s.memberships[i].ID == id {
			r.s.memberships[i].Role = role
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memMembershipRepo) GetByID(_ context.Context, id string) (*domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.memberships {
		if r.s.memberships[i].ID == id {
			m := r.s.memberships[i]
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memMembershipRepo) GetByUserAndTeam(_ context.Context, userID, teamID string) (*domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.memberships {
		if r.s.memberships[i].UserID == userID && r.s.memberships[i].TeamID == teamID {
			m := r.s.memberships[i]
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memMembershipRepo) ListByUser(_ context.Context, userID string) ([]domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Membership
	for _, m := range r.s.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMembershipRepo) ListByTeam(_ context.Context, teamID string) ([]domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Membership
	for _, m := range r.s.memberships {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMembershipRepo) ListAll(_ context.Context) ([]domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Membership{}, r.s.memberships...), nil
}

func (r *memMembershipRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.memberships {
		if r.s.memberships[i].ID == id {
			r.s.memberships = append(r.s.memberships[:i], r.s.memberships[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memMembershipRepo) DeleteByTeam(_ context.Context, teamID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.memberships[:0]
	for _, m := range r.s.memberships {
		if m.TeamID != teamID {
			kept = append(kept, m)
		}
	}
	r.s.memberships = kept
	return nil
}

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	category.ID = r.s.nextID("category")
	r.s.categories = append(r.s.categories, *category)
	return nil
}

func (r *memCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.categories {
		if r.s.categories[i].ID == category.ID {
			r.s.categories[i] = *category
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.categories {
		if r.s.categories[i].ID == id {
			c := r.s.categories[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memCategoryRepo) GetByName(_ context.Context, name string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.categories {
		if r.s.categories[i].Name == name {
			c := r.s.categories[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Category{}, r.s.categories...), nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.categories {
		if r.s.categories[i].ID == id {
			r.s.categories = append(r.s.categories[:i], r.s.categories[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memTicketRepo struct{ s *memStore }

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = r.s.nextID("ticket")
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets = append(r.s.tickets, *ticket)
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.tickets {
		if r.s.tickets[i].ID == ticket.ID {
			ticket.UpdatedAt = time.Now()
			r.s.tickets[i] = *ticket
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.tickets {
		if r.s.tickets[i].ID == id {
			t := r.s.tickets[i]
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Ticket, 0, len(r.s.tickets))
	for i := len(r.s.tickets) - 1; i >= 0; i-- {
		out = append(out, r.s.tickets[i])
	}
	return out, nil
}

func (r *memTicketRepo) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, t := range r.s.tickets {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *memTicketRepo) ClearTeamAssignments(_ context.Context, teamID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.tickets {
		if r.s.tickets[i].AssignedToTeam != nil && *r.s.tickets[i].AssignedToTeam == teamID {
			r.s.tickets[i].AssignedToTeam = nil
		}
	}
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.tickets {
		if r.s.tickets[i].ID == id {
			r.s.tickets = append(r.s.tickets[:i], r.s.tickets[i+1:]...)
			// mimic the FK cascade onto comments
			kept := r.s.comments[:0]
			for _, cm := range r.s.comments {
				if cm.TicketID != id {
					kept = append(kept, cm)
				}
			}
			r.s.comments = kept
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memCommentRepo struct{ s *memStore }

func (r *memCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.nextID("comment")
	comment.CreatedAt = time.Now()
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r *memCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.comments {
		if r.s.comments[i].ID == comment.ID {
			r.s.comments[i] = *comment
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.comments {
		if r.s.comments[i].ID == id {
			c := r.s.comments[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.s.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCommentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.comments {
		if r.s.comments[i].ID == id {
			r.s.comments = append(r.s.comments[:i], r.s.comments[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}
