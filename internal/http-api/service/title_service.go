package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/repository"
)

type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, actor permission.Actor, in dto.CreateTitleRequest) (*models.Title, error)
	Update(ctx context.Context, actor permission.Actor, id int64, patch dto.UpdateTitleRequest) (*models.Title, error)
	Delete(ctx context.Context, actor permission.Actor, id int64) error
}

type titleService struct {
	titleRepo    *repository.TitleRepo
	categoryRepo *repository.CategoryRepo
	genreRepo    *repository.GenreRepo
}

func NewTitleService(titleRepo *repository.TitleRepo, categoryRepo *repository.CategoryRepo, genreRepo *repository.GenreRepo) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	return s.titleRepo.List(ctx, f, page, pageSize)
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return title, nil
}

func validateYear(year int) FieldErrors {
	current := time.Now().Year()
	if year > current {
		return FieldErrors{"year": {fmt.Sprintf(
			"You cannot add works that have not yet been released. The year of issue cannot be greater than %d", current)}}
	}
	return nil
}

// resolveCategory maps a category slug onto the referenced record.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, FieldErrors{"category": {fmt.Sprintf("Object with slug=%s does not exist.", slug)}}
		}
		return nil, err
	}
	return category, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, FieldErrors{"genre": {"One or more genre slugs do not exist."}}
		}
		return nil, err
	}
	return genres, nil
}

// checkNameYear surfaces the (name, year) conflict before any write happens.
// The composite unique index still backs this up under concurrency.
func (s *titleService) checkNameYear(ctx context.Context, name string, year int, excludeID int64) error {
	exists, err := s.titleRepo.ExistsByNameYear(ctx, name, year, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrTitleExists
	}
	return nil
}

func (s *titleService) Create(ctx context.Context, actor permission.Actor, in dto.CreateTitleRequest) (*models.Title, error) {
	if v := permission.Decide(actor, http.MethodPost, permission.WorkFamily, nil); !v.Allowed {
		return nil, verdictError(v)
	}
	if errs := validateYear(in.Year); errs != nil {
		return nil, errs
	}
	if err := s.checkNameYear(ctx, in.Name, in.Year, 0); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}
	if in.Category != nil {
		category, err := s.resolveCategory(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}
	if len(in.Genre) > 0 {
		genres, err := s.resolveGenres(ctx, in.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Create(ctx, title); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTitleExists
		}
		return nil, err
	}
	return title, nil
}

func (s *titleService) Update(ctx context.Context, actor permission.Actor, id int64, patch dto.UpdateTitleRequest) (*models.Title, error) {
	if v := permission.Decide(actor, http.MethodPatch, permission.WorkFamily, nil); !v.Allowed {
		return nil, verdictError(v)
	}
	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		title.Name = *patch.Name
	}
	if patch.Year != nil {
		if errs := validateYear(*patch.Year); errs != nil {
			return nil, errs
		}
		title.Year = *patch.Year
	}
	if patch.Name != nil || patch.Year != nil {
		if err := s.checkNameYear(ctx, title.Name, title.Year, title.ID); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		title.Description = patch.Description
	}
	if patch.Category != nil {
		category, err := s.resolveCategory(ctx, *patch.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	var genres []models.Genre
	if patch.Genre != nil {
		genres, err = s.resolveGenres(ctx, patch.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Update(ctx, title, genres); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTitleExists
		}
		return nil, err
	}
	return title, nil
}

func (s *titleService) Delete(ctx context.Context, actor permission.Actor, id int64) error {
	if v := permission.Decide(actor, http.MethodDelete, permission.WorkFamily, nil); !v.Allowed {
		return verdictError(v)
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
