package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webmail/internal/auth"
	"webmail/internal/config"
	apperrors "webmail/internal/errors"
	"webmail/internal/handler"
	"webmail/internal/middleware"
	"webmail/internal/model"
)

type stubUsers map[uuid.UUID]*model.AppUser

func (s stubUsers) GetUser(_ context.Context, id uuid.UUID) (*model.AppUser, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTService, stubUsers) {
	t.Helper()
	cfg := &config.Config{
		CategoryCity: "Yardley",
		Cookie:       config.CookieConfig{Name: "jwtToken"},
		JWT: config.JWTConfig{
			Key:           "router-test-signing-key-long-enough",
			Issuer:        "webmail-test",
			Audience:      "webmail-test-users",
			ExpireMinutes: 30,
		},
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	// A nil cache behaves like an empty store.
	guard := middleware.NewGuard(jwtService, auth.NewTokenStore(nil), cfg.Cookie.Name, zap.NewNop())
	users := stubUsers{}

	e := echo.New()
	Register(e, cfg, zap.NewNop(), guard, users, Handlers{
		Auth:         handler.NewAuthHandler(nil, cfg.Cookie, ""),
		User:         handler.NewUserHandler(nil),
		Comment:      handler.NewCommentHandler(nil),
		Message:      handler.NewMessageHandler(nil),
		Category:     handler.NewCategoryHandler(nil),
		Notification: handler.NewNotificationHandler(nil),
		Seed:         handler.NewSeedHandler(nil),
	})
	return e, jwtService, users
}

func TestRegister_Routes(t *testing.T) {
	e, jwtService, users := newTestServer(t)

	yardley := &model.AppUser{ID: uuid.New(), Username: "bob", City: "Yardley", IsActive: true, Role: model.RoleUser}
	london := &model.AppUser{ID: uuid.New(), Username: "liz", City: "London", IsActive: true, Role: model.RoleUser}
	users[yardley.ID] = yardley
	users[london.ID] = london

	token := func(u *model.AppUser) string {
		issued, err := jwtService.Issue(u)
		require.NoError(t, err)
		return issued.Token
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health check", http.MethodGet, "/healthz", "", http.StatusOK},
		{"me without token", http.MethodGet, "/api/me", "", http.StatusUnauthorized},
		{"me with token", http.MethodGet, "/api/me", token(yardley), http.StatusOK},
		{"logout without token", http.MethodPost, "/api/auth/logout", "", http.StatusUnauthorized},
		{"categories from another city", http.MethodGet, "/api/categories", token(london), http.StatusForbidden},
		{"admin route as regular user", http.MethodGet, "/api/admin/users", token(yardley), http.StatusForbidden},
		{"seed as regular user", http.MethodPost, "/api/admin/seed", token(london), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCustomValidator(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Email string `validate:"required,email"`
	}

	assert.NoError(t, v.Validate(&payload{Email: "a@b.co"}))
	assert.Error(t, v.Validate(&payload{Email: "nope"}))
}
