package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLoginAttemptTracker_LocksAtLimit(t *testing.T) {
	c, _ := newRedisCache(t)
	tracker := NewLoginAttemptTracker(c, 3, 5*time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	assert.False(t, tracker.IsLockedOut(ctx, userID))
	assert.False(t, tracker.RecordFailure(ctx, userID))
	assert.False(t, tracker.RecordFailure(ctx, userID))
	assert.False(t, tracker.IsLockedOut(ctx, userID))

	assert.True(t, tracker.RecordFailure(ctx, userID))
	assert.True(t, tracker.IsLockedOut(ctx, userID))

	// Other accounts are unaffected.
	assert.False(t, tracker.IsLockedOut(ctx, uuid.New()))
}

func TestLoginAttemptTracker_WindowExpires(t *testing.T) {
	c, mr := newRedisCache(t)
	tracker := NewLoginAttemptTracker(c, 2, 5*time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	tracker.RecordFailure(ctx, userID)
	tracker.RecordFailure(ctx, userID)
	assert.True(t, tracker.IsLockedOut(ctx, userID))

	mr.FastForward(5*time.Minute + time.Second)
	assert.False(t, tracker.IsLockedOut(ctx, userID))
	assert.False(t, tracker.RecordFailure(ctx, userID))
}

func TestLoginAttemptTracker_ResetClearsCount(t *testing.T) {
	c, _ := newRedisCache(t)
	tracker := NewLoginAttemptTracker(c, 2, 5*time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	tracker.RecordFailure(ctx, userID)
	tracker.Reset(ctx, userID)
	assert.False(t, tracker.RecordFailure(ctx, userID))
	assert.False(t, tracker.IsLockedOut(ctx, userID))

	tracker.RecordFailure(ctx, userID)
	assert.True(t, tracker.IsLockedOut(ctx, userID))
	tracker.Reset(ctx, userID)
	assert.False(t, tracker.IsLockedOut(ctx, userID))
}

func TestLoginAttemptTracker_Disabled(t *testing.T) {
	c, _ := newRedisCache(t)
	tracker := NewLoginAttemptTracker(c, 0, 5*time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		assert.False(t, tracker.RecordFailure(ctx, userID))
	}
	assert.False(t, tracker.IsLockedOut(ctx, userID))
}

func TestLoginAttemptTracker_RedisDownNeverLocks(t *testing.T) {
	c, mr := newRedisCache(t)
	tracker := NewLoginAttemptTracker(c, 1, 5*time.Minute)
	ctx := context.Background()
	userID := uuid.New()
	mr.Close()

	assert.False(t, tracker.RecordFailure(ctx, userID))
	assert.False(t, tracker.IsLockedOut(ctx, userID))
}
