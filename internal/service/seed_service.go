package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"webmail/internal/model"
	"webmail/internal/repository"
)

// DefaultCategories are created by SeedDefaults when missing.
var DefaultCategories = []string{"Work", "Personal", "Friends", "Family", "Important"}

// DefaultNotifications are created by SeedDefaults when the feed is empty.
var DefaultNotifications = []model.Notification{
	{Title: "Welcome", Detail: "Your mailbox is ready to use.", Icon: "fa-envelope"},
	{Title: "Comments are moderated", Detail: "New comments are reviewed before they are published.", Icon: "fa-comments"},
	{Title: "Categories", Detail: "Organize incoming messages with categories.", Icon: "fa-folder"},
}

// SeedResult reports how many rows SeedDefaults created.
type SeedResult struct {
	Categories    int `json:"categories"`
	Notifications int `json:"notifications"`
}

// AdminAccount describes the administrator created by EnsureAdmin.
type AdminAccount struct {
	Username string
	Email    string
	Password string
	City     string
}

// SeedService fills an empty database with reference data.
type SeedService interface {
	SeedDefaults(ctx context.Context) (*SeedResult, error)
	EnsureAdmin(ctx context.Context, admin AdminAccount) (created bool, err error)
}

type seedService struct {
	userRepo         repository.UserRepository
	categoryRepo     repository.CategoryRepository
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

// NewSeedService creates a new seed service.
func NewSeedService(
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	notificationRepo repository.NotificationRepository,
	logger *zap.Logger,
) SeedService {
	return &seedService{
		userRepo:         userRepo,
		categoryRepo:     categoryRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// SeedDefaults creates missing default categories and, on an empty feed, the
// default notifications. Running it twice creates nothing the second time.
func (s *seedService) SeedDefaults(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	existing, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.CategoryName] = true
	}
	for _, name := range DefaultCategories {
		if known[name] {
			continue
		}
		if err := s.categoryRepo.Create(ctx, &model.Category{CategoryName: name, CategoryStatus: true}); err != nil {
			return nil, fmt.Errorf("create category %s: %w", name, err)
		}
		result.Categories++
	}

	notifications, err := s.notificationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if len(notifications) == 0 {
		batch := make([]model.Notification, len(DefaultNotifications))
		copy(batch, DefaultNotifications)
		if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("create notifications: %w", err)
		}
		result.Notifications = len(batch)
	}

	s.logger.Info("Seeded reference data",
		zap.Int("categories", result.Categories),
		zap.Int("notifications", result.Notifications))
	return result, nil
}

// EnsureAdmin creates a confirmed administrator unless the username or email is taken.
func (s *seedService) EnsureAdmin(ctx context.Context, admin AdminAccount) (bool, error) {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, admin.Username, admin.Email)
	if err != nil {
		return false, fmt.Errorf("check admin existence: %w", err)
	}
	if exists {
		return false, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	user := &model.AppUser{
		Name:           "Admin",
		Surname:        "User",
		Username:       admin.Username,
		Email:          admin.Email,
		City:           admin.City,
		PasswordHash:   string(hashedPassword),
		IsActive:       true,
		EmailConfirmed: true,
		Role:           model.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
