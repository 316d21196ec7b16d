package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	AppURL      string
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string
	ResetDB     bool

	JWT        JWTConfig
	Cookie     CookieConfig
	Moderation ModerationConfig
	Lockout    LockoutConfig
	Google     OAuthConfig
	Mail       MailConfig

	// CategoryCity is the City claim value required to reach category pages.
	CategoryCity     string
	PasswordResetTTL time.Duration
}

// JWTConfig configures token signing and validation.
type JWTConfig struct {
	Key           string
	Issuer        string
	Audience      string
	ExpireMinutes int
}

// CookieConfig configures the session cookie carrying the token.
type CookieConfig struct {
	Name   string
	Secure bool
}

// ModerationConfig points at the translation and toxicity scoring endpoints.
type ModerationConfig struct {
	TranslateURL string
	ToxicityURL  string
	APIKey       string
	Timeout      time.Duration
}

// LockoutConfig controls the repeated-failure login lockout.
type LockoutConfig struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

// OAuthConfig holds the federated login client registration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether the provider has been configured.
func (o OAuthConfig) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// MailConfig selects and configures the outbound mail provider.
type MailConfig struct {
	Provider      string
	FromAddress   string
	FromName      string
	MailgunDomain string
	MailgunAPIKey string
	ResendAPIKey  string
}

// Load builds Config from environment with sensible defaults.
// Outside production a .env.<env> (or .env) file is loaded first.
func Load() *Config {
	env := getEnv("APP_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	return &Config{
		AppEnv:      env,
		AppURL:      getEnv("APP_URL", "http://localhost:8080"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/webmail?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		ResetDB:     getEnvBool("RESET_DB", false),
		JWT: JWTConfig{
			Key:           getEnv("JWT_KEY", "change-me-to-a-long-random-signing-key"),
			Issuer:        getEnv("JWT_ISSUER", "webmail"),
			Audience:      getEnv("JWT_AUDIENCE", "webmail-users"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 60),
		},
		Cookie: CookieConfig{
			Name:   getEnv("SESSION_COOKIE_NAME", "jwtToken"),
			Secure: getEnvBool("SESSION_COOKIE_SECURE", true),
		},
		Moderation: ModerationConfig{
			TranslateURL: os.Getenv("MODERATION_TRANSLATE_URL"),
			ToxicityURL:  os.Getenv("MODERATION_TOXICITY_URL"),
			APIKey:       os.Getenv("MODERATION_API_KEY"),
			Timeout:      getEnvDuration("MODERATION_TIMEOUT", 5*time.Second),
		},
		Lockout: LockoutConfig{
			MaxFailedAttempts: getEnvInt("LOCKOUT_MAX_FAILED_ATTEMPTS", 5),
			Duration:          getEnvDuration("LOCKOUT_DURATION", 5*time.Minute),
		},
		Google: OAuthConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		},
		Mail: MailConfig{
			Provider:      getEnv("MAIL_PROVIDER", "log"),
			FromAddress:   getEnv("MAIL_FROM_ADDRESS", "noreply@localhost"),
			FromName:      getEnv("MAIL_FROM_NAME", "Webmail Admin"),
			MailgunDomain: os.Getenv("MAILGUN_DOMAIN"),
			MailgunAPIKey: os.Getenv("MAILGUN_API_KEY"),
			ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		},
		CategoryCity:     getEnv("CATEGORY_REQUIRED_CITY", "Yardley"),
		PasswordResetTTL: getEnvDuration("PASSWORD_RESET_TTL", 20*time.Minute),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
