package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/service"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) RequestToken(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func setupAuthRouter(authService service.AuthService) (*gin.Engine, *permission.Actor) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Authenticate(authService))

	var seen permission.Actor
	router.GET("/whoami", func(c *gin.Context) {
		seen = ActorFrom(c)
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestAuthenticate_NoHeader(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router, seen := setupAuthRouter(mockAuthService)

	req, _ := http.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, seen.Authenticated)
	mockAuthService.AssertNotCalled(t, "ValidateToken", mock.Anything)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router, seen := setupAuthRouter(mockAuthService)

	claims := &service.Claims{UserID: "u-1", Username: "bookworm", Role: models.RoleModerator}
	mockAuthService.On("ValidateToken", "good-token").Return(claims, nil)

	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, seen.Authenticated)
	assert.Equal(t, "bookworm", seen.Username)
	assert.Equal(t, models.RoleModerator, seen.Role)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router, _ := setupAuthRouter(mockAuthService)

	mockAuthService.On("ValidateToken", "bad-token").Return(nil, service.ErrInvalidToken)

	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router, _ := setupAuthRouter(mockAuthService)

	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "not-a-bearer-header")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertNotCalled(t, "ValidateToken", mock.Anything)
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/private", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
