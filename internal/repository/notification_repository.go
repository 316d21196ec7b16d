package repository

import (
	"context"

	"gorm.io/gorm"

	"webmail/internal/model"
)

// NotificationRepository defines notification persistence operations.
type NotificationRepository interface {
	List(ctx context.Context) ([]model.Notification, error)
	CreateBatch(ctx context.Context, notifications []model.Notification) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// List returns all notifications, newest first.
func (r *notificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// CreateBatch inserts several notifications at once.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(notifications, 100).Error
}
