package service

import (
	"context"
	"fmt"

	"webmail/internal/model"
	"webmail/internal/repository"
)

// NotificationService exposes the notification feed.
type NotificationService interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	SeedNotifications(ctx context.Context, notifications []model.Notification) (int, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	notifications, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// SeedNotifications inserts the given notifications and returns how many were stored.
func (s *notificationService) SeedNotifications(ctx context.Context, notifications []model.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("seed notifications: %w", err)
	}
	return len(notifications), nil
}
