package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/thomlank/QuikTik/internal/auth"
	"github.com/thomlank/QuikTik/internal/domain"
	"github.com/thomlank/QuikTik/internal/policy"
	"github.com/thomlank/QuikTik/internal/repository"
	apperrors "github.com/thomlank/QuikTik/pkg/util"
)

// UserService manages user accounts. Accounts are deactivated, never
// hard-deleted, and the self-protection rules hold even for admins: no
// actor may change their own global role or deactivate themself.
type UserService struct {
	repos      repository.Repos
	uow        repository.UnitOfWork
	actors     *ActorProvider
	bcryptCost int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	Repos         repository.Repos
	UnitOfWork    repository.UnitOfWork
	ActorProvider *ActorProvider
	BcryptCost    int
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		repos:      deps.Repos,
		uow:        deps.UnitOfWork,
		actors:     deps.ActorProvider,
		bcryptCost: deps.BcryptCost,
	}
}

// UserUpdateInput carries optional account changes. Role and Active
// are admin-only fields; non-admins may only edit their own names.
type UserUpdateInput struct {
	FirstName *string
	LastName  *string
	Role      *domain.GlobalRole
	Active    *bool
}

// ListUsers returns every account; admins and team leads only.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	snapshot, err := s.actors.Snapshot(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !snapshot.IsAdmin() && !snapshot.IsLead() {
		return nil, apperrors.NewForbidden("permission denied")
	}
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser fetches an account; self, admins and team leads only.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	snapshot, err := s.actors.Snapshot(ctx, actor)
	if err != nil {
		return nil, err
	}
	if actor.ID != userID && !snapshot.IsAdmin() && !snapshot.IsLead() {
		return nil, apperrors.NewForbidden("permission denied")
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CreateUser registers an account on behalf of an admin.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, firstName, lastName, email, password string, role domain.GlobalRole) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin access required")
	}
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, apperrors.NewInvalidTransition("invalid role", map[string]any{"role": role})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var user *domain.User
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		if _, err := repos.Users.GetByEmail(ctx, email); err == nil {
			return apperrors.NewConflict("email already registered", map[string]any{"email": email})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}
		user = &domain.User{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			Active:       true,
		}
		return apperrors.MapError(repos.Users.Create(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser edits an account. Non-admins may update only their own
// names; admins may also change role and active, except on themselves.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, userID string, input UserUpdateInput) (*domain.User, error) {
	if input.Role != nil && !input.Role.IsValid() {
		return nil, apperrors.NewInvalidTransition("invalid role", map[string]any{"role": *input.Role})
	}

	var user *domain.User
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		user, err = repos.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
			}
			return apperrors.MapError(err)
		}
		if actor.ID != userID && !snapshot.IsAdmin() {
			return apperrors.NewForbidden("permission denied")
		}

		if input.Role != nil && *input.Role != user.Role {
			if decision := policy.Evaluate(snapshot, policy.Resource{User: user}, policy.ActionUserChangeRole); !decision.Allowed {
				return apperrors.NewForbidden(decision.Reason)
			}
			user.Role = *input.Role
		}
		if input.Active != nil && !*input.Active && user.Active {
			if decision := policy.Evaluate(snapshot, policy.Resource{User: user}, policy.ActionUserDeactivate); !decision.Allowed {
				return apperrors.NewForbidden(decision.Reason)
			}
			user.Active = false
		} else if input.Active != nil && *input.Active {
			if !snapshot.IsAdmin() {
				return apperrors.NewForbidden("admin access required")
			}
			user.Active = true
		}
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		return apperrors.MapError(repos.Users.Update(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser soft-deletes an account. Admin only, never self.
func (s *UserService) DeactivateUser(ctx context.Context, actor *domain.User, userID string) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		snapshot, err := snapshotInTx(ctx, repos, actor)
		if err != nil {
			return err
		}
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
			}
			return apperrors.MapError(err)
		}
		if decision := policy.Evaluate(snapshot, policy.Resource{User: user}, policy.ActionUserDeactivate); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		user.Active = false
		return apperrors.MapError(repos.Users.Update(ctx, user))
	})
}
