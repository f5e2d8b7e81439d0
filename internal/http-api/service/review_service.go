package service

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/repository"
)

// ReviewService handles reviews nested under a title. Every operation
// resolves the title first; a missing ancestor is NotFound before any
// permission or uniqueness concern.
type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, actor permission.Actor, titleID int64, in dto.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, actor permission.Actor, titleID, reviewID int64, patch dto.UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, actor permission.Actor, titleID, reviewID int64) error
}

// titleResolver is the slice of the title repository reviews need to check
// their ancestor.
type titleResolver interface {
	GetByID(ctx context.Context, id int64) (*models.Title, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  titleResolver
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo titleResolver) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) resolveTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) resolveReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.resolveReview(ctx, titleID, reviewID)
}

func (s *reviewService) Create(ctx context.Context, actor permission.Actor, titleID int64, in dto.CreateReviewRequest) (*models.Review, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, err
	}
	// Create has no existing object; the engine only requires authentication.
	if v := permission.Decide(actor, http.MethodPost, permission.ReviewOrComment, nil); !v.Allowed {
		return nil, verdictError(v)
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// one review per (title, author); the database index decides races
			return nil, ErrReviewExists
		}
		return nil, err
	}
	// Reload with author data
	return s.resolveReview(ctx, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, actor permission.Actor, titleID, reviewID int64, patch dto.UpdateReviewRequest) (*models.Review, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if v := permission.Decide(actor, http.MethodPatch, permission.ReviewOrComment,
		&permission.Target{OwnerUsername: review.Author.Username}); !v.Allowed {
		return nil, verdictError(v)
	}

	if patch.Text != nil {
		review.Text = *patch.Text
	}
	if patch.Score != nil {
		review.Score = *patch.Score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return s.resolveReview(ctx, titleID, reviewID)
}

func (s *reviewService) Delete(ctx context.Context, actor permission.Actor, titleID, reviewID int64) error {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return err
	}
	review, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if v := permission.Decide(actor, http.MethodDelete, permission.ReviewOrComment,
		&permission.Target{OwnerUsername: review.Author.Username}); !v.Allowed {
		return verdictError(v)
	}
	return s.reviewRepo.Delete(ctx, review.ID)
}
