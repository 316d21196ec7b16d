package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"webmail/internal/cache"
)

// AttemptTracker counts failed password checks per account.
type AttemptTracker interface {
	IsLockedOut(ctx context.Context, userID uuid.UUID) bool
	RecordFailure(ctx context.Context, userID uuid.UUID) (lockedOut bool)
	Reset(ctx context.Context, userID uuid.UUID)
}

// LoginAttemptTracker locks an account for a window after too many failures.
// Counting is best effort: with redis down nobody is locked out.
type LoginAttemptTracker struct {
	cache       *cache.Client
	maxFailures int64
	window      time.Duration
}

var _ AttemptTracker = (*LoginAttemptTracker)(nil)

// NewLoginAttemptTracker creates a tracker. maxFailures <= 0 disables lockout.
func NewLoginAttemptTracker(cache *cache.Client, maxFailures int, window time.Duration) *LoginAttemptTracker {
	return &LoginAttemptTracker{
		cache:       cache,
		maxFailures: int64(maxFailures),
		window:      window,
	}
}

func (t *LoginAttemptTracker) key(userID uuid.UUID) string {
	return loginFailureKeyPrefix + userID.String()
}

// IsLockedOut reports whether the account reached the failure limit inside the window.
func (t *LoginAttemptTracker) IsLockedOut(ctx context.Context, userID uuid.UUID) bool {
	if t.maxFailures <= 0 {
		return false
	}
	data, _ := t.cache.Get(ctx, t.key(userID))
	if data == nil {
		return false
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return false
	}
	return n >= t.maxFailures
}

// RecordFailure counts a failed attempt and reports whether the account is now locked.
func (t *LoginAttemptTracker) RecordFailure(ctx context.Context, userID uuid.UUID) bool {
	if t.maxFailures <= 0 {
		return false
	}
	n, _ := t.cache.Incr(ctx, t.key(userID), t.window)
	return n >= t.maxFailures
}

// Reset clears the failure counter after a successful login.
func (t *LoginAttemptTracker) Reset(ctx context.Context, userID uuid.UUID) {
	_ = t.cache.Delete(ctx, t.key(userID))
}
