package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/repository"
)

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	Create(ctx context.Context, actor permission.Actor, c *models.Category) error
	Delete(ctx context.Context, actor permission.Actor, slug string) error
}

type categoryService struct {
	repo *repository.CategoryRepo
}

func NewCategoryService(r *repository.CategoryRepo) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	return s.repo.List(ctx, search, page, pageSize)
}

func (s *categoryService) Create(ctx context.Context, actor permission.Actor, c *models.Category) error {
	if v := permission.Decide(actor, http.MethodPost, permission.WorkFamily, nil); !v.Allowed {
		return verdictError(v)
	}
	c.Name = strings.TrimSpace(c.Name)
	if errs := validateSlug(c.Slug); errs != nil {
		return errs
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return FieldErrors{"slug": {"Category with this slug already exists."}}
		}
		return err
	}
	return nil
}

func (s *categoryService) Delete(ctx context.Context, actor permission.Actor, slug string) error {
	if v := permission.Decide(actor, http.MethodDelete, permission.WorkFamily, nil); !v.Allowed {
		return verdictError(v)
	}
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
