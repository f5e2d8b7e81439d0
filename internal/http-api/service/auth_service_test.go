package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockSender mocks the outgoing mail sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthService(repo repository.UserRepository, mailer *MockSender) AuthService {
	return NewAuthService(repo, NewConfirmationCodes("code-secret"), mailer, testJWTSecret, time.Hour, []string{"me"})
}

func TestSignup_NewUser(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	repo.On("FindByUsername", mock.Anything, "bookworm").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByEmail", mock.Anything, "bookworm@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mailer.On("Send", mock.Anything, "bookworm@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.Signup(context.Background(), "bookworm", "bookworm@example.com")

	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.ConfirmationCode)
	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestSignup_RepeatIsIdempotent(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	existing := &models.User{Username: "bookworm", Email: "bookworm@example.com", Role: models.RoleUser}
	existing.ConfirmationCode = NewConfirmationCodes("code-secret").Issue(existing)

	repo.On("FindByUsername", mock.Anything, "bookworm").Return(existing, nil)
	mailer.On("Send", mock.Anything, "bookworm@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.Signup(context.Background(), "bookworm", "bookworm@example.com")

	assert.NoError(t, err)
	assert.Equal(t, existing.ConfirmationCode, user.ConfirmationCode)
	// No Create and no Update: the stored code was already current.
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mailer.AssertExpectations(t)
}

func TestSignup_UsernameTakenByOtherEmail(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	existing := &models.User{Username: "bookworm", Email: "someone@example.com"}
	repo.On("FindByUsername", mock.Anything, "bookworm").Return(existing, nil)

	_, err := svc.Signup(context.Background(), "bookworm", "bookworm@example.com")

	var fields FieldErrors
	assert.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "username")
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignup_EmailTaken(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	repo.On("FindByUsername", mock.Anything, "bookworm").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByEmail", mock.Anything, "bookworm@example.com").
		Return(&models.User{Username: "other", Email: "bookworm@example.com"}, nil)

	_, err := svc.Signup(context.Background(), "bookworm", "bookworm@example.com")

	var fields FieldErrors
	assert.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "email")
}

func TestSignup_ProhibitedUsername(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	_, err := svc.Signup(context.Background(), "me", "me@example.com")

	var fields FieldErrors
	assert.ErrorAs(t, err, &fields)
	assert.Equal(t, []string{"me username is prohibited!"}, fields["username"])
	repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestSignup_InvalidUsername(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	_, err := svc.Signup(context.Background(), "no spaces allowed", "x@example.com")

	var fields FieldErrors
	assert.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "username")
}

func TestSignup_LostCreateRace(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	repo.On("FindByUsername", mock.Anything, "bookworm").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByEmail", mock.Anything, "bookworm@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(repository.ErrDuplicate)

	_, err := svc.Signup(context.Background(), "bookworm", "bookworm@example.com")

	var fields FieldErrors
	assert.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "username")
}

func TestSignup_MailFailureKeepsUser(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	repo.On("FindByUsername", mock.Anything, "bookworm").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByEmail", mock.Anything, "bookworm@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mailer.On("Send", mock.Anything, "bookworm@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	_, err := svc.Signup(context.Background(), "bookworm", "bookworm@example.com")

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRequestToken_Success(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	user := &models.User{
		ID:       "user-123",
		Username: "bookworm",
		Email:    "bookworm@example.com",
		Role:     models.RoleUser,
	}
	user.ConfirmationCode = NewConfirmationCodes("code-secret").Issue(user)
	repo.On("FindByUsername", mock.Anything, "bookworm").Return(user, nil)

	token, err := svc.RequestToken(context.Background(), "bookworm", user.ConfirmationCode)

	assert.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "bookworm", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestRequestToken_SuperuserGetsAdminRole(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	user := &models.User{
		ID:        "user-123",
		Username:  "root",
		Email:     "root@example.com",
		Role:      models.RoleUser,
		Superuser: true,
	}
	user.ConfirmationCode = NewConfirmationCodes("code-secret").Issue(user)
	repo.On("FindByUsername", mock.Anything, "root").Return(user, nil)

	token, err := svc.RequestToken(context.Background(), "root", user.ConfirmationCode)

	assert.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestRequestToken_MissingFields(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	_, err := svc.RequestToken(context.Background(), "", "")

	var fields FieldErrors
	assert.ErrorAs(t, err, &fields)
	assert.Equal(t, []string{"This field is required."}, fields["username"])
	assert.Equal(t, []string{"This field is required."}, fields["confirmation_code"])
	repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestRequestToken_UnknownUsername(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.RequestToken(context.Background(), "ghost", "whatever")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestToken_WrongCode(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	user := &models.User{Username: "bookworm", Email: "bookworm@example.com", Role: models.RoleUser}
	user.ConfirmationCode = NewConfirmationCodes("code-secret").Issue(user)
	repo.On("FindByUsername", mock.Anything, "bookworm").Return(user, nil)

	_, err := svc.RequestToken(context.Background(), "bookworm", "not-the-code")

	assert.ErrorIs(t, err, ErrCodeMismatch)
}

func TestValidateToken_Garbage(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockSender)
	svc := newTestAuthService(repo, mailer)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
