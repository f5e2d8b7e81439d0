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

// CommentService handles comments nested under a title's review. The full
// ancestor chain (title, then review within that title, then comment within
// that review) is resolved before anything else; any broken link is NotFound.
type CommentService interface {
	ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, actor permission.Actor, titleID, reviewID int64, in dto.CreateCommentRequest) (*models.Comment, error)
	Update(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64, in dto.UpdateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *commentService) resolveReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *commentService) resolveComment(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByReviewAndID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *commentService) ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.resolveComment(ctx, reviewID, commentID)
}

func (s *commentService) Create(ctx context.Context, actor permission.Actor, titleID, reviewID int64, in dto.CreateCommentRequest) (*models.Comment, error) {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if v := permission.Decide(actor, http.MethodPost, permission.ReviewOrComment, nil); !v.Allowed {
		return nil, verdictError(v)
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     in.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	// Reload with author data
	return s.resolveComment(ctx, reviewID, comment.ID)
}

func (s *commentService) Update(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64, in dto.UpdateCommentRequest) (*models.Comment, error) {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.resolveComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if v := permission.Decide(actor, http.MethodPatch, permission.ReviewOrComment,
		&permission.Target{OwnerUsername: comment.Author.Username}); !v.Allowed {
		return nil, verdictError(v)
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.resolveComment(ctx, reviewID, commentID)
}

func (s *commentService) Delete(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64) error {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return err
	}
	comment, err := s.resolveComment(ctx, reviewID, commentID)
	if err != nil {
		return err
	}
	if v := permission.Decide(actor, http.MethodDelete, permission.ReviewOrComment,
		&permission.Target{OwnerUsername: comment.Author.Username}); !v.Allowed {
		return verdictError(v)
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}
