package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRE_MINUTES", "")
	t.Setenv("MODERATION_TIMEOUT", "")
	t.Setenv("CATEGORY_REQUIRED_CITY", "")
	t.Setenv("SESSION_COOKIE_NAME", "")
	t.Setenv("SESSION_COOKIE_SECURE", "")

	cfg := Load()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 60, cfg.JWT.ExpireMinutes)
	assert.Equal(t, 5*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, "Yardley", cfg.CategoryCity)
	assert.Equal(t, "jwtToken", cfg.Cookie.Name)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, 5, cfg.Lockout.MaxFailedAttempts)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRE_MINUTES", "15")
	t.Setenv("MODERATION_TIMEOUT", "2s")
	t.Setenv("SESSION_COOKIE_SECURE", "false")
	t.Setenv("RESET_DB", "true")
	t.Setenv("GOOGLE_CLIENT_ID", "client")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg := Load()

	assert.Equal(t, 15, cfg.JWT.ExpireMinutes)
	assert.Equal(t, 2*time.Second, cfg.Moderation.Timeout)
	assert.False(t, cfg.Cookie.Secure)
	assert.True(t, cfg.ResetDB)
	assert.True(t, cfg.Google.Enabled())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRE_MINUTES", "sixty")
	t.Setenv("MODERATION_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 60, cfg.JWT.ExpireMinutes)
	assert.Equal(t, 5*time.Second, cfg.Moderation.Timeout)
}
