package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"webmail/internal/cache"
)

const (
	sessionKeyPrefix      = "session:"
	accessTokenKeyPrefix  = "blacklist:access_token:"
	resetTokenKeyPrefix   = "password_reset:"
	oauthStateKeyPrefix   = "oauth_state:"
	loginFailureKeyPrefix = "login_failures:"

	// revokedSession never equals a real jti, so every token of the user stops matching.
	revokedSession = "revoked"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	SetActiveSession(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	ActiveSession(ctx context.Context, userID uuid.UUID) (string, error)
	RevokeSessions(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
	StoreOAuthState(ctx context.Context, state string, ttl time.Duration) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}

// TokenStore handles storage and retrieval of short-lived tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// SetActiveSession records the token ID of the user's latest login.
func (s *TokenStore) SetActiveSession(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.cache.Set(ctx, sessionKeyPrefix+userID.String(), []byte(tokenID), ttl)
}

// ActiveSession returns the token ID of the user's latest login, or "" if unknown.
func (s *TokenStore) ActiveSession(ctx context.Context, userID uuid.UUID) (string, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+userID.String())
	if err != nil || data == nil {
		return "", nil
	}
	return string(data), nil
}

// RevokeSessions invalidates every token issued to the user so far. The next
// login replaces the marker. ttl should cover the longest token lifetime.
func (s *TokenStore) RevokeSessions(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	return s.cache.SetStrict(ctx, sessionKeyPrefix+userID.String(), []byte(revokedSession), ttl)
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := accessTokenKeyPrefix + tokenID
	// Store a simple marker
	return s.cache.Set(ctx, key, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	key := accessTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, nil // Not blacklisted if error (fail safe)
	}
	return data != nil, nil
}

// StoreResetToken keeps a password reset token for ttl. Only its hash is used as key.
func (s *TokenStore) StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.cache.SetStrict(ctx, resetTokenKeyPrefix+hashToken(token), []byte(userID.String()), ttl); err != nil {
		return fmt.Errorf("cache reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken returns the user a reset token belongs to and invalidates it.
func (s *TokenStore) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	data, err := s.cache.GetDel(ctx, resetTokenKeyPrefix+hashToken(token))
	if err != nil || data == nil {
		return uuid.Nil, fmt.Errorf("reset token not found")
	}
	userID, err := uuid.Parse(string(data))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in reset token: %w", err)
	}
	return userID, nil
}

// StoreOAuthState remembers a federated login state value for ttl.
func (s *TokenStore) StoreOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.cache.SetStrict(ctx, oauthStateKeyPrefix+state, []byte("1"), ttl); err != nil {
		return fmt.Errorf("cache oauth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState reports whether the state was issued by us, and forgets it.
func (s *TokenStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	data, err := s.cache.GetDel(ctx, oauthStateKeyPrefix+state)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
