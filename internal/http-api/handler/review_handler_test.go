package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/service"
)

// MockReviewService mocks the ReviewService interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, actor permission.Actor, titleID int64, in dto.CreateReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, actor, titleID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, actor permission.Actor, titleID, reviewID int64, patch dto.UpdateReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, actor, titleID, reviewID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, actor permission.Actor, titleID, reviewID int64) error {
	args := m.Called(ctx, actor, titleID, reviewID)
	return args.Error(0)
}

func asActor(actor permission.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	}
}

var reader = permission.Actor{Authenticated: true, ID: "u-1", Username: "bookworm", Role: models.RoleUser}

func setupReviewRouter(svc *MockReviewService, actor *permission.Actor) *gin.Engine {
	router := setupRouter()
	group := router.Group("/titles/:title_id/reviews")
	if actor != nil {
		group.Use(asActor(*actor))
	}
	NewReviewHandler(svc).RegisterRoutes(group)
	return router
}

func TestCreateReviewEndpoint(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, &reader)

	review := &models.Review{
		ID:      42,
		TitleID: 7,
		Text:    "solid",
		Score:   8,
		PubDate: time.Now(),
		Author:  models.User{Username: "bookworm"},
	}
	mockSvc.On("Create", mock.Anything, reader, int64(7), dto.CreateReviewRequest{Text: "solid", Score: 8}).
		Return(review, nil)

	w := postJSON(router, "/titles/7/reviews", dto.CreateReviewRequest{Text: "solid", Score: 8})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response dto.ReviewResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.EqualValues(t, 42, response.ID)
	assert.Equal(t, "bookworm", response.Author)

	mockSvc.AssertExpectations(t)
}

func TestCreateReviewEndpoint_Conflict(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, &reader)

	mockSvc.On("Create", mock.Anything, reader, int64(7), mock.Anything).
		Return(nil, service.ErrReviewExists)

	w := postJSON(router, "/titles/7/reviews", dto.CreateReviewRequest{Text: "again", Score: 3})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReviewEndpoint_ScoreOutOfRange(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, &reader)

	w := postJSON(router, "/titles/7/reviews", map[string]any{"text": "x", "score": 11})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	var response map[string][]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, []string{"Ensure this value is at most 10."}, response["score"])
}

func TestListReviewsEndpoint(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, nil)

	reviews := []models.Review{
		{ID: 1, Text: "good", Score: 9, Author: models.User{Username: "bookworm"}},
		{ID: 2, Text: "meh", Score: 5, Author: models.User{Username: "mod"}},
	}
	mockSvc.On("ListByTitle", mock.Anything, int64(7), 1, 20).Return(reviews, int64(2), nil)

	req, _ := http.NewRequest("GET", "/titles/7/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.PaginatedReviewResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.EqualValues(t, 2, response.Total)
	assert.Len(t, response.Data, 2)
}

func TestGetReviewEndpoint_NotFound(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, nil)

	mockSvc.On("Get", mock.Anything, int64(7), int64(404)).Return(nil, service.ErrNotFound)

	req, _ := http.NewRequest("GET", "/titles/7/reviews/404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReviewEndpoint_BadID(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, nil)

	req, _ := http.NewRequest("GET", "/titles/7/reviews/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReviewEndpoint_Forbidden(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, &reader)

	mockSvc.On("Delete", mock.Anything, reader, int64(7), int64(42)).
		Return(service.ErrForbidden)

	req, _ := http.NewRequest("DELETE", "/titles/7/reviews/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteReviewEndpoint_Anonymous(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, nil)

	mockSvc.On("Delete", mock.Anything, permission.Actor{}, int64(7), int64(42)).
		Return(service.ErrUnauthenticated)

	req, _ := http.NewRequest("DELETE", "/titles/7/reviews/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
