package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"webmail/internal/auth"
	"webmail/internal/config"
	"webmail/internal/handler"
	"webmail/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Comment      *handler.CommentHandler
	Message      *handler.MessageHandler
	Category     *handler.CategoryHandler
	Notification *handler.NotificationHandler
	Seed         *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	guard *middleware.Guard,
	users middleware.UserLookup,
	h Handlers,
) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/activate", h.Auth.Activate)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/password/forgot", h.Auth.ForgotPassword)
	api.POST("/auth/password/reset", h.Auth.ResetPassword)
	api.GET("/auth/google/login", h.Auth.GoogleLogin)
	api.GET("/auth/google/callback", h.Auth.GoogleCallback)

	// Secured routes (require a valid, current session token)
	secured := api.Group("", guard.Middleware())

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/me", h.Auth.Me)

	secured.GET("/profile", h.User.GetProfile)
	secured.PUT("/profile", h.User.UpdateProfile)

	secured.GET("/comments", h.Comment.ListComments)
	secured.GET("/comments/mine", h.Comment.ListMyComments)
	secured.POST("/comments", h.Comment.CreateComment)

	secured.GET("/messages/inbox", h.Message.Inbox)
	secured.GET("/messages/sendbox", h.Message.Sendbox)
	secured.GET("/messages/category/:id", h.Message.InboxByCategory)
	secured.GET("/messages/:id", h.Message.GetMessage)
	secured.POST("/messages", h.Message.SendMessage)

	secured.GET("/notifications", h.Notification.ListNotifications)

	// Category pages are limited to principals from one city
	categories := secured.Group("/categories", middleware.RequireClaim(auth.ClaimCity, cfg.CategoryCity))
	categories.GET("", h.Category.ListCategories)
	categories.GET("/:id", h.Category.GetCategory)
	categories.POST("", h.Category.CreateCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	// Admin routes
	admin := secured.Group("/admin", middleware.RequireAdmin(users, logger))
	admin.GET("/comments", h.Comment.ListComments)
	admin.DELETE("/comments/:id", h.Comment.DeleteComment)
	admin.PATCH("/comments/:id/status", h.Comment.SetStatus)
	admin.GET("/users", h.User.ListUsers)
	admin.PATCH("/users/:id/active", h.User.SetActive)
	admin.POST("/seed", h.Seed.SeedDefaults)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by every handler.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
