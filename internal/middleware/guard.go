// Package middleware holds the echo middleware that authenticates requests and
// enforces claim and role policies.
package middleware

import (
	"context"
	"fmt"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"webmail/internal/auth"
	apperrors "webmail/internal/errors"
)

// PrincipalContextKey is where the guard stores the *auth.Principal.
const PrincipalContextKey = "principal"

// Guard authenticates requests from the session cookie or a bearer token.
type Guard struct {
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cookieName string
	logger     *zap.Logger
}

// NewGuard creates a guard reading the token from cookieName, falling back to
// the Authorization header.
func NewGuard(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, cookieName string, logger *zap.Logger) *Guard {
	return &Guard{
		jwtService: jwtService,
		tokenStore: tokenStore,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Middleware returns the echo-jwt middleware configured for this guard.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: fmt.Sprintf("cookie:%s,header:%s:Bearer ", g.cookieName, echo.HeaderAuthorization),
		ContextKey:  PrincipalContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.Authorize(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !g.hasToken(c) {
				return toHTTPError(apperrors.ErrMissingToken)
			}
			g.logger.Debug("Rejected token",
				zap.String("path", c.Path()),
				zap.Error(err))
			return toHTTPError(apperrors.ErrInvalidToken)
		},
	})
}

// Authorize fully validates a raw token and checks it has been neither revoked
// nor superseded by a newer login. Claims are only read after validation.
func (g *Guard) Authorize(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := g.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	principal, err := claims.Principal()
	if err != nil {
		return nil, err
	}

	revoked, _ := g.tokenStore.IsAccessTokenBlacklisted(ctx, principal.TokenID)
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", apperrors.ErrInvalidToken)
	}

	active, _ := g.tokenStore.ActiveSession(ctx, principal.UserID)
	if active != "" && active != principal.TokenID {
		return nil, fmt.Errorf("%w: session superseded", apperrors.ErrInvalidToken)
	}

	return principal, nil
}

func (g *Guard) hasToken(c echo.Context) bool {
	if cookie, err := c.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		return true
	}
	return strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) != ""
}

// PrincipalFromContext returns the principal stored by the guard.
func PrincipalFromContext(c echo.Context) (*auth.Principal, bool) {
	p, ok := c.Get(PrincipalContextKey).(*auth.Principal)
	return p, ok && p != nil
}

func toHTTPError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
