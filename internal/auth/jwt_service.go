package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"webmail/internal/config"
	apperrors "webmail/internal/errors"
	"webmail/internal/model"
)

// Claims represents JWT claims carried by the session token.
type Claims struct {
	Name     string `json:"Name"`
	Surname  string `json:"Surname"`
	City     string `json:"City"`
	Username string `json:"Username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed token with its identifiers.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWTService creates a new JWT service from the signing settings.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      time.Duration(cfg.ExpireMinutes) * time.Minute,
		now:      time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token carrying the user's identity claims and a fresh token ID.
func (s *JWTService) Issue(user *model.AppUser) (*IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	tokenID := generateTokenID()

	claims := &Claims{
		Name:     user.Name,
		Surname:  user.Surname,
		City:     user.City,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{
		Token:     token,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken verifies signature, issuer, audience and lifetime, then returns the claims.
// Every failure wraps ErrInvalidToken.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer", apperrors.ErrInvalidToken)
	}
	if !claims.VerifyAudience(s.audience, true) {
		return nil, fmt.Errorf("%w: unexpected audience", apperrors.ErrInvalidToken)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: token ID not found", apperrors.ErrInvalidToken)
	}

	return claims, nil
}

// Principal converts validated claims into the request principal.
func (c *Claims) Principal() (*Principal, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", apperrors.ErrInvalidToken)
	}
	p := &Principal{
		UserID:   userID,
		Name:     c.Name,
		Surname:  c.Surname,
		City:     c.City,
		Username: c.Username,
		Email:    c.Email,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	return uuid.New().String()
}
