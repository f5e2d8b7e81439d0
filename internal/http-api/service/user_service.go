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

// UserService covers the self-profile surface and the admin-only
// manage-any-user surface.
type UserService interface {
	GetProfile(ctx context.Context, actor permission.Actor) (*models.User, error)
	// UpdateProfile applies a partial update to the actor's own record. A
	// role value in the patch is silently ignored.
	UpdateProfile(ctx context.Context, actor permission.Actor, patch dto.UpdateUserRequest) (*models.User, error)

	List(ctx context.Context, actor permission.Actor, search string, page, pageSize int) ([]models.User, int64, error)
	Create(ctx context.Context, actor permission.Actor, in dto.CreateUserRequest) (*models.User, error)
	GetByUsername(ctx context.Context, actor permission.Actor, username string) (*models.User, error)
	Update(ctx context.Context, actor permission.Actor, username string, patch dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor permission.Actor, username string) error
}

type userService struct {
	userRepo   repository.UserRepository
	codes      *ConfirmationCodes
	prohibited map[string]bool
}

func NewUserService(userRepo repository.UserRepository, codes *ConfirmationCodes, prohibitedUsernames []string) UserService {
	prohibited := make(map[string]bool, len(prohibitedUsernames))
	for _, name := range prohibitedUsernames {
		prohibited[name] = true
	}
	return &userService{userRepo: userRepo, codes: codes, prohibited: prohibited}
}

func (s *userService) find(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, actor permission.Actor) (*models.User, error) {
	if v := permission.Decide(actor, http.MethodGet, permission.ProfileSelf,
		&permission.Target{OwnerUsername: actor.Username}); !v.Allowed {
		return nil, verdictError(v)
	}
	return s.find(ctx, actor.Username)
}

func (s *userService) UpdateProfile(ctx context.Context, actor permission.Actor, patch dto.UpdateUserRequest) (*models.User, error) {
	if v := permission.Decide(actor, http.MethodPatch, permission.ProfileSelf,
		&permission.Target{OwnerUsername: actor.Username}); !v.Allowed {
		return nil, verdictError(v)
	}
	user, err := s.find(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	// ApplyTo never touches the role; whatever the patch carried is dropped.
	patch.ApplyTo(user)
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor permission.Actor, search string, page, pageSize int) ([]models.User, int64, error) {
	if v := permission.Decide(actor, http.MethodGet, permission.ProfileAdmin, nil); !v.Allowed {
		return nil, 0, verdictError(v)
	}
	return s.userRepo.List(ctx, search, page, pageSize)
}

func (s *userService) Create(ctx context.Context, actor permission.Actor, in dto.CreateUserRequest) (*models.User, error) {
	if v := permission.Decide(actor, http.MethodPost, permission.ProfileAdmin, nil); !v.Allowed {
		return nil, verdictError(v)
	}
	if errs := validateUsername(s.prohibited, in.Username); errs != nil {
		return nil, errs
	}
	if existing, err := s.userRepo.FindByUsername(ctx, in.Username); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, FieldErrors{"username": {usernameTakenMessage}}
	}
	if other, err := s.userRepo.FindByEmail(ctx, in.Email); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	} else if other != nil {
		return nil, FieldErrors{"email": {emailTakenMessage}}
	}
	role := models.Role(in.Role)
	if in.Role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, FieldErrors{"role": {"Invalid role."}}
	}
	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
	}
	user.ConfirmationCode = s.codes.Issue(user)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, FieldErrors{"username": {usernameTakenMessage}}
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, actor permission.Actor, username string) (*models.User, error) {
	if v := permission.Decide(actor, http.MethodGet, permission.ProfileAdmin, nil); !v.Allowed {
		return nil, verdictError(v)
	}
	return s.find(ctx, username)
}

func (s *userService) Update(ctx context.Context, actor permission.Actor, username string, patch dto.UpdateUserRequest) (*models.User, error) {
	if v := permission.Decide(actor, http.MethodPatch, permission.ProfileAdmin, nil); !v.Allowed {
		return nil, verdictError(v)
	}
	user, err := s.find(ctx, username)
	if err != nil {
		return nil, err
	}
	patch.ApplyTo(user)
	if patch.Role != nil {
		role := models.Role(*patch.Role)
		if !role.Valid() {
			return nil, FieldErrors{"role": {"Invalid role."}}
		}
		user.Role = role
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor permission.Actor, username string) error {
	if v := permission.Decide(actor, http.MethodDelete, permission.ProfileAdmin, nil); !v.Allowed {
		return verdictError(v)
	}
	if err := s.userRepo.Delete(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *userService) saveUser(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return FieldErrors{"email": {emailTakenMessage}}
		}
		return err
	}
	return nil
}
