package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"webmail/internal/model"
)

// UserRepository defines account persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.AppUser) error
	Update(ctx context.Context, user *model.AppUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AppUser, error)
	FindByUsername(ctx context.Context, username string) (*model.AppUser, error)
	FindByEmail(ctx context.Context, email string) (*model.AppUser, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context) ([]model.AppUser, error)
	FindByExternalLogin(ctx context.Context, provider, providerKey string) (*model.AppUser, error)
	CreateWithExternalLogin(ctx context.Context, user *model.AppUser, login *model.ExternalLogin) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.AppUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.AppUser) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AppUser, error) {
	var user model.AppUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.AppUser, error) {
	var user model.AppUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.AppUser, error) {
	var user model.AppUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AppUser{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.AppUser, error) {
	var users []model.AppUser
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByExternalLogin resolves the account linked to a federated identity.
func (r *userRepository) FindByExternalLogin(ctx context.Context, provider, providerKey string) (*model.AppUser, error) {
	var login model.ExternalLogin
	err := r.db.WithContext(ctx).Preload("AppUser").
		Where("provider = ? AND provider_key = ?", provider, providerKey).
		First(&login).Error
	if err != nil {
		return nil, err
	}
	return &login.AppUser, nil
}

// CreateWithExternalLogin provisions an account and its federated link atomically.
func (r *userRepository) CreateWithExternalLogin(ctx context.Context, user *model.AppUser, login *model.ExternalLogin) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		login.AppUserID = user.ID
		return tx.Create(login).Error
	})
}
