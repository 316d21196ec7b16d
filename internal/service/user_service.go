package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"webmail/internal/auth"
	"webmail/internal/cache"
	apperrors "webmail/internal/errors"
	"webmail/internal/model"
	"webmail/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name    string
	Surname string
	City    string
	Email   string
}

// UserService exposes profile and account administration operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.AppUser, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*model.AppUser, error)
	ListUsers(ctx context.Context) ([]model.AppUser, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.AppUser, error)
}

type userService struct {
	repo       repository.UserRepository
	cache      *cache.Client
	sessions   auth.TokenStoreInterface
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewUserService builds a UserService with repository and cache. sessions is
// used to cut off deactivated accounts; sessionTTL is the token lifetime.
func NewUserService(
	repo repository.UserRepository,
	cache *cache.Client,
	sessions auth.TokenStoreInterface,
	sessionTTL time.Duration,
	logger *zap.Logger,
) UserService {
	return &userService{
		repo:       repo,
		cache:      cache,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.AppUser, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.AppUser
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// UpdateProfile edits the profile fields. Changed claims reach the token at the next login.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*model.AppUser, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != "" && input.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
			return nil, apperrors.ErrUserAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		user.Email = input.Email
	}
	user.Name = input.Name
	user.Surname = input.Surname
	user.City = input.City

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.AppUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetActive marks an account active or passive. Passive accounts cannot log in
// and their outstanding tokens stop being accepted.
func (s *userService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.AppUser, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	if !active {
		if err := s.sessions.RevokeSessions(ctx, id, s.sessionTTL); err != nil {
			s.logger.Error("Failed to revoke sessions of deactivated user",
				zap.String("user_id", id.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("User activity changed",
		zap.String("user_id", id.String()),
		zap.Bool("active", active))
	return user, nil
}

// load reads the user from the store, bypassing the cache, for read-modify-write.
func (s *userService) load(ctx context.Context, id uuid.UUID) (*model.AppUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
