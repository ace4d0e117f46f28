package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thomlank/QuikTik/internal/domain"
	"github.com/thomlank/QuikTik/internal/events"
	"github.com/thomlank/QuikTik/internal/repository"
)

type testEnv struct {
	repos      repository.Repos
	store      *memStore
	uow        repository.UnitOfWork
	dispatcher events.Dispatcher

	tickets     *TicketService
	memberships *MembershipService
	users       *UserService
	categories  *CategoryService
}

func newTestEnv() *testEnv {
	repos, store := newMemRepos()
	uow := &memUnitOfWork{repos: repos}
	dispatcher := events.NewInMemoryDispatcher()
	actors := NewActorProvider(repos.Memberships, nil)

	return &testEnv{
		repos:      repos,
		store:      store,
		uow:        uow,
		dispatcher: dispatcher,
		tickets: NewTicketService(TicketDependencies{
			Repos:         repos,
			UnitOfWork:    uow,
			ActorProvider: actors,
			Dispatcher:    dispatcher,
		}),
		memberships: NewMembershipService(MembershipDependencies{
			Repos:      repos,
			UnitOfWork: uow,
			Dispatcher: dispatcher,
		}),
		users: NewUserService(UserDependencies{
			Repos:         repos,
			UnitOfWork:    uow,
			ActorProvider: actors,
			BcryptCost:    4,
		}),
		categories: NewCategoryService(repos, uow),
	}
}

func (e *testEnv) seedUser(t *testing.T, name string, role domain.GlobalRole) *domain.User {
	t.Helper()
	user := &domain.User{
		FirstName: name,
		Email:     name + "@example.com",
		Role:      role,
		Active:    true,
	}
	require.NoError(t, e.repos.Users.Create(context.Background(), user))
	return user
}

func (e *testEnv) seedTeam(t *testing.T, name string, mutate func(*domain.Team)) *domain.Team {
	t.Helper()
	team := &domain.Team{Name: name}
	if mutate != nil {
		mutate(team)
	}
	require.NoError(t, e.repos.Teams.Create(context.Background(), team))
	return team
}

func (e *testEnv) seedMembership(t *testing.T, userID, teamID string, role domain.TeamRole) *domain.Membership {
	t.Helper()
	m := &domain.Membership{UserID: userID, TeamID: teamID, Role: role}
	require.NoError(t, e.repos.Memberships.Create(context.Background(), m))
	return m
}

func (e *testEnv) seedTicket(t *testing.T, createdBy string, mutate func(*domain.Ticket)) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:       "seeded",
		Description: "seeded ticket",
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		CreatedBy:   createdBy,
	}
	if mutate != nil {
		mutate(ticket)
	}
	require.NoError(t, e.repos.Tickets.Create(context.Background(), ticket))
	return ticket
}
