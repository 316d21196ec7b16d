package middleware

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "webmail/internal/errors"
	"webmail/internal/model"
)

// RequireClaim rejects principals whose claim name does not equal value.
// It must run behind the guard.
func RequireClaim(name, value string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFromContext(c)
			if !ok {
				return toHTTPError(apperrors.ErrUnauthenticated)
			}
			if got, ok := principal.Claim(name); !ok || got != value {
				return toHTTPError(apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}

// UserLookup loads the account behind a principal.
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.AppUser, error)
}

// RequireAdmin rejects principals whose account does not hold the admin role.
// It must run behind the guard.
func RequireAdmin(users UserLookup, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFromContext(c)
			if !ok {
				return toHTTPError(apperrors.ErrUnauthenticated)
			}

			user, err := users.GetUser(c.Request().Context(), principal.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return toHTTPError(apperrors.ErrUnauthenticated)
				}
				logger.Error("Failed to load user for admin check",
					zap.String("user_id", principal.UserID.String()),
					zap.Error(err))
				return toHTTPError(err)
			}
			if !user.IsAdmin() || !user.IsActive {
				return toHTTPError(apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}
