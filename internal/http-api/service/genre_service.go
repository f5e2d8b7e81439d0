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

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	Create(ctx context.Context, actor permission.Actor, g *models.Genre) error
	Delete(ctx context.Context, actor permission.Actor, slug string) error
}

type genreService struct {
	repo *repository.GenreRepo
}

func NewGenreService(r *repository.GenreRepo) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	return s.repo.List(ctx, search, page, pageSize)
}

func (s *genreService) Create(ctx context.Context, actor permission.Actor, g *models.Genre) error {
	if v := permission.Decide(actor, http.MethodPost, permission.WorkFamily, nil); !v.Allowed {
		return verdictError(v)
	}
	g.Name = strings.TrimSpace(g.Name)
	if errs := validateSlug(g.Slug); errs != nil {
		return errs
	}
	if err := s.repo.Create(ctx, g); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return FieldErrors{"slug": {"Genre with this slug already exists."}}
		}
		return err
	}
	return nil
}

func (s *genreService) Delete(ctx context.Context, actor permission.Actor, slug string) error {
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
