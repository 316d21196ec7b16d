package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "webmail/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"webmail/internal/auth"
	"webmail/internal/cache"
	"webmail/internal/config"
	"webmail/internal/db"
	"webmail/internal/handler"
	"webmail/internal/logger"
	"webmail/internal/mail"
	"webmail/internal/middleware"
	"webmail/internal/moderation"
	"webmail/internal/oauth"
	"webmail/internal/repository"
	"webmail/internal/router"
	"webmail/internal/service"
)

// @title Webmail API
// @version 1.0
// @description Webmail API with messaging, moderated comments and claims based JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. The jwtToken cookie is accepted as well.
func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		zlog.Fatal("Database init failed", zap.Error(err))
	}

	if cfg.ResetDB {
		zlog.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			zlog.Fatal("Failed to drop tables", zap.Error(err))
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		zlog.Fatal("Migration failed", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		zlog.Warn("Redis unreachable, sessions and lockout run without cache", zap.Error(err))
	}
	cancelPing()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenStore := auth.NewTokenStore(cacheClient)
	attempts := auth.NewLoginAttemptTracker(cacheClient, cfg.Lockout.MaxFailedAttempts, cfg.Lockout.Duration)

	mailer, err := mail.New(cfg, zlog)
	if err != nil {
		zlog.Fatal("Mail provider init failed", zap.Error(err))
	}

	var provider oauth.Provider
	if google := oauth.NewGoogleProvider(cfg.Google); google != nil {
		provider = google
	} else {
		zlog.Info("Google login disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	moderator := moderation.NewClient(cfg.Moderation, zlog)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, attempts, mailer, provider, cfg.PasswordResetTTL, zlog)
	userService := service.NewUserService(userRepo, cacheClient, tokenStore, jwtService.TTL(), zlog)
	commentService := service.NewCommentService(commentRepo, userRepo, moderator, zlog)
	messageService := service.NewMessageService(messageRepo, userRepo, categoryRepo, zlog)
	categoryService := service.NewCategoryService(categoryRepo, cacheClient)
	notificationService := service.NewNotificationService(notificationRepo)
	seedService := service.NewSeedService(userRepo, categoryRepo, notificationRepo, zlog)

	guard := middleware.NewGuard(jwtService, tokenStore, cfg.Cookie.Name, zlog)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, zlog, guard, userService, router.Handlers{
		Auth:         handler.NewAuthHandler(authService, cfg.Cookie, cfg.AppURL),
		User:         handler.NewUserHandler(userService),
		Comment:      handler.NewCommentHandler(commentService),
		Message:      handler.NewMessageHandler(messageService),
		Category:     handler.NewCategoryHandler(categoryService),
		Notification: handler.NewNotificationHandler(notificationService),
		Seed:         handler.NewSeedHandler(seedService),
	})

	zlog.Info("Swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
