package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/thomlank/QuikTik/internal/domain"
	"github.com/thomlank/QuikTik/internal/policy"
	"github.com/thomlank/QuikTik/internal/repository"
	apperrors "github.com/thomlank/QuikTik/pkg/util"
)

// CategoryService manages ticket categories. Writes are admin-only;
// deletion is blocked while any ticket references the category.
type CategoryService struct {
	repos repository.Repos
	uow   repository.UnitOfWork
}

// NewCategoryService constructs the service.
func NewCategoryService(repos repository.Repos, uow repository.UnitOfWork) *CategoryService {
	return &CategoryService{repos: repos, uow: uow}
}

// ListCategories returns every category; readable by any actor.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repos.Categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// GetCategory fetches a single category.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repos.Categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// CreateCategory creates a category with a unique name.
func (s *CategoryService) CreateCategory(ctx context.Context, actor *domain.User, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	var category *domain.Category
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		if err := s.requireAdmin(ctx, repos, actor); err != nil {
			return err
		}
		if _, err := repos.Categories.GetByName(ctx, name); err == nil {
			return apperrors.NewConflict("category name already exists", map[string]any{"name": name})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}
		category = &domain.Category{Name: name, Description: description}
		return apperrors.MapError(repos.Categories.Create(ctx, category))
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory edits a category's name and description.
func (s *CategoryService) UpdateCategory(ctx context.Context, actor *domain.User, id string, name, description *string) (*domain.Category, error) {
	var category *domain.Category
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		if err := s.requireAdmin(ctx, repos, actor); err != nil {
			return err
		}
		var err error
		category, err = repos.Categories.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("category", map[string]any{"category_id": id})
			}
			return apperrors.MapError(err)
		}
		if name != nil {
			trimmed := strings.TrimSpace(*name)
			if trimmed == "" {
				return apperrors.NewValidationError("name required", nil)
			}
			category.Name = trimmed
		}
		if description != nil {
			category.Description = *description
		}
		return apperrors.MapError(repos.Categories.Update(ctx, category))
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category unless tickets still reference it.
func (s *CategoryService) DeleteCategory(ctx context.Context, actor *domain.User, id string) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		if err := s.requireAdmin(ctx, repos, actor); err != nil {
			return err
		}
		if _, err := repos.Categories.GetByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("category", map[string]any{"category_id": id})
			}
			return apperrors.MapError(err)
		}
		count, err := repos.Tickets.CountByCategory(ctx, id)
		if err != nil {
			return apperrors.MapError(err)
		}
		if count > 0 {
			return apperrors.NewConflict("category is referenced by tickets", map[string]any{"ticket_count": count})
		}
		return apperrors.MapError(repos.Categories.Delete(ctx, id))
	})
}

func (s *CategoryService) requireAdmin(ctx context.Context, repos repository.Repos, actor *domain.User) error {
	snapshot, err := snapshotInTx(ctx, repos, actor)
	if err != nil {
		return err
	}
	if decision := policy.Evaluate(snapshot, policy.Resource{}, policy.ActionCategoryManage); !decision.Allowed {
		return apperrors.NewForbidden(decision.Reason)
	}
	return nil
}
