package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/mail"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

const (
	usernameTakenMessage = "A user with that username already exists."
	emailTakenMessage    = "A user with that email already exists."

	confirmationSubject = "reviewhub signup confirmation"
	confirmationBody    = "Your confirmation code: %s"
)

// Claims is the payload of an access token.
type Claims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Signup registers a (username, email) pair, stores a confirmation code
	// and mails it. Repeating a signup with the same pair re-issues the same
	// code and resends the mail.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// RequestToken exchanges a valid (username, confirmation code) pair for
	// a short-lived bearer token.
	RequestToken(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo   repository.UserRepository
	codes      *ConfirmationCodes
	mailer     mail.Sender
	jwtSecret  string
	tokenTTL   time.Duration
	prohibited map[string]bool
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes *ConfirmationCodes,
	mailer mail.Sender,
	jwtSecret string,
	tokenTTL time.Duration,
	prohibitedUsernames []string,
) AuthService {
	prohibited := make(map[string]bool, len(prohibitedUsernames))
	for _, name := range prohibitedUsernames {
		prohibited[name] = true
	}
	return &authService{
		userRepo:   userRepo,
		codes:      codes,
		mailer:     mailer,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		prohibited: prohibited,
	}
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if errs := validateUsername(s.prohibited, username); errs != nil {
		return nil, errs
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Email != email {
			return nil, FieldErrors{"username": {usernameTakenMessage}}
		}
		// Same identity signing up again: re-derive the code from current
		// state and resend it. No state change means the same value.
		return s.reissue(ctx, existing)
	}

	if other, err := s.userRepo.FindByEmail(ctx, email); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	} else if other != nil {
		return nil, FieldErrors{"email": {emailTakenMessage}}
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
	}
	user.ConfirmationCode = s.codes.Issue(user)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a concurrent signup race for the same identity
			return nil, FieldErrors{"username": {usernameTakenMessage}}
		}
		return nil, err
	}

	if err := s.sendCode(ctx, user); err != nil {
		// The user row stays; a repeat signup re-issues the same code.
		return nil, err
	}
	return user, nil
}

func (s *authService) reissue(ctx context.Context, user *models.User) (*models.User, error) {
	code := s.codes.Issue(user)
	if code != user.ConfirmationCode {
		user.ConfirmationCode = code
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	if err := s.sendCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) sendCode(ctx context.Context, user *models.User) error {
	body := fmt.Sprintf(confirmationBody, user.ConfirmationCode)
	if err := s.mailer.Send(ctx, user.Email, confirmationSubject, body); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}

func (s *authService) RequestToken(ctx context.Context, username, code string) (string, error) {
	if errs := requireFields(map[string]string{
		"username":          username,
		"confirmation_code": code,
	}); errs != nil {
		return "", errs
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if !s.codes.Verify(user, code) {
		return "", ErrCodeMismatch
	}

	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.EffectiveRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
