package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"webmail/internal/config"
	"webmail/internal/db"
	"webmail/internal/logger"
	"webmail/internal/model"
	"webmail/internal/repository"
	"webmail/internal/service"
)

// SeedNotificationData represents one entry of an external notification feed.
type SeedNotificationData struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Icon   string `json:"icon"`
}

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("Starting seed script")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.Migrate(gormDB); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}
	zlog.Info("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)

	seedService := service.NewSeedService(userRepo, categoryRepo, notificationRepo, zlog)
	notificationService := service.NewNotificationService(notificationRepo)

	ctx := context.Background()

	result, err := seedService.SeedDefaults(ctx)
	if err != nil {
		zlog.Fatal("Failed to seed defaults", zap.Error(err))
	}

	if url := os.Getenv("SEED_NOTIFICATIONS_URL"); url != "" {
		zlog.Info("Fetching notifications", zap.String("url", url))
		feed, err := fetchNotificationsFromAPI(ctx, url)
		if err != nil {
			zlog.Fatal("Failed to fetch notifications", zap.Error(err))
		}
		imported, err := notificationService.SeedNotifications(ctx, toNotifications(feed))
		if err != nil {
			zlog.Fatal("Failed to import notifications", zap.Error(err))
		}
		result.Notifications += imported
	}

	admin := service.AdminAccount{
		Username: os.Getenv("ADMIN_USERNAME"),
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
		City:     os.Getenv("ADMIN_CITY"),
	}
	if admin.Username != "" && admin.Email != "" && admin.Password != "" {
		created, err := seedService.EnsureAdmin(ctx, admin)
		if err != nil {
			zlog.Fatal("Failed to create admin", zap.Error(err))
		}
		zlog.Info("Admin account", zap.String("username", admin.Username), zap.Bool("created", created))
	}

	zlog.Info("Seed completed successfully",
		zap.Int("categories_created", result.Categories),
		zap.Int("notifications_created", result.Notifications))
}

// fetchNotificationsFromAPI fetches a JSON list of notifications.
func fetchNotificationsFromAPI(ctx context.Context, url string) ([]SeedNotificationData, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feed []SeedNotificationData
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return feed, nil
}

// toNotifications drops entries without a title.
func toNotifications(feed []SeedNotificationData) []model.Notification {
	notifications := make([]model.Notification, 0, len(feed))
	for _, item := range feed {
		if item.Title == "" {
			continue
		}
		notifications = append(notifications, model.Notification{
			Title:  item.Title,
			Detail: item.Detail,
			Icon:   item.Icon,
		})
	}
	return notifications
}
