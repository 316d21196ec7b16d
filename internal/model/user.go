package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values for AppUser.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AppUser represents a registered mailbox owner.
type AppUser struct {
	ID             uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name           string    `json:"name" gorm:"size:100;not null"`
	Surname        string    `json:"surname" gorm:"size:100;not null"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	City           string    `json:"city" gorm:"size:100"`
	PasswordHash   string    `json:"-" gorm:"size:255"` // Empty for federated-only accounts
	IsActive       bool      `json:"is_active" gorm:"default:true;index"`
	EmailConfirmed bool      `json:"email_confirmed" gorm:"default:false"`
	ActivationCode int       `json:"-"`
	Role           string    `json:"role" gorm:"size:20;not null;default:'user'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *AppUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BeforeCreate sets UUID before creating the record.
func (u *AppUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// ExternalLogin links a federated identity to a local account.
type ExternalLogin struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Provider    string    `json:"provider" gorm:"size:50;not null;uniqueIndex:idx_provider_key"`
	ProviderKey string    `json:"provider_key" gorm:"size:255;not null;uniqueIndex:idx_provider_key"`
	AppUserID   uuid.UUID `json:"app_user_id" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	AppUser AppUser `json:"-" gorm:"foreignKey:AppUserID"`
}
