package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"webmail/internal/auth"
	apperrors "webmail/internal/errors"
	"webmail/internal/mail"
	"webmail/internal/model"
	"webmail/internal/oauth"
	"webmail/internal/repository"
)

const (
	bcryptCost    = 10
	oauthStateTTL = 10 * time.Minute
)

// RegisterInput carries the fields of a new local account.
type RegisterInput struct {
	Name     string
	Surname  string
	Username string
	Email    string
	City     string
	Password string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.AppUser, error)
	Activate(ctx context.Context, email string, code int) error
	Login(ctx context.Context, username, password string) (*auth.IssuedToken, *model.AppUser, error)
	Logout(ctx context.Context, principal *auth.Principal) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ExternalLoginURL(ctx context.Context) (string, error)
	ExternalLoginCallback(ctx context.Context, state, code string) (*auth.IssuedToken, *model.AppUser, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	attempts   auth.AttemptTracker
	mailer     mail.Sender
	provider   oauth.Provider
	resetTTL   time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. provider may be nil when
// federated login is not configured.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	attempts auth.AttemptTracker,
	mailer mail.Sender,
	provider oauth.Provider,
	resetTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		attempts:   attempts,
		mailer:     mailer,
		provider:   provider,
		resetTTL:   resetTTL,
		logger:     logger,
	}
}

// Register creates an unconfirmed account and mails its activation code.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.AppUser, error) {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := generateActivationCode()
	if err != nil {
		return nil, fmt.Errorf("generate activation code: %w", err)
	}

	user := &model.AppUser{
		Name:           input.Name,
		Surname:        input.Surname,
		Username:       input.Username,
		Email:          input.Email,
		City:           input.City,
		PasswordHash:   string(hashedPassword),
		IsActive:       true,
		EmailConfirmed: false,
		ActivationCode: code,
		Role:           model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendActivationCode(ctx, user.Email, user.Name, code); err != nil {
		s.logger.Error("Failed to send activation code",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return user, nil
}

// Activate confirms the email of the account when code matches.
func (s *authService) Activate(ctx context.Context, email string, code int) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidActivationCode
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.EmailConfirmed {
		return nil
	}
	if user.ActivationCode == 0 || user.ActivationCode != code {
		return apperrors.ErrInvalidActivationCode
	}

	user.EmailConfirmed = true
	user.ActivationCode = 0
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Login checks, in order: the account exists, its email is confirmed, it is
// active, and the password matches. Only then is a token issued.
func (s *authService) Login(ctx context.Context, username, password string) (*auth.IssuedToken, *model.AppUser, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if !user.EmailConfirmed {
		return nil, nil, apperrors.ErrEmailNotConfirmed
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountInactive
	}

	if s.attempts.IsLockedOut(ctx, user.ID) {
		return nil, nil, fmt.Errorf("%w: account is temporarily locked", apperrors.ErrInvalidCredentials)
	}
	if user.PasswordHash == "" {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if s.attempts.RecordFailure(ctx, user.ID) {
			s.logger.Warn("Account locked after repeated login failures",
				zap.String("user_id", user.ID.String()))
		}
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	s.attempts.Reset(ctx, user.ID)

	issued, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return issued, user, nil
}

// startSession issues a token and makes it the user's only valid session.
func (s *authService) startSession(ctx context.Context, user *model.AppUser) (*auth.IssuedToken, error) {
	issued, err := s.jwtService.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.tokenStore.SetActiveSession(ctx, user.ID, issued.TokenID, s.jwtService.TTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("User signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("token_id", issued.TokenID))
	return issued, nil
}

// Logout revokes the principal's token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.ErrUnauthenticated
	}
	ttl := time.Until(principal.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokenStore.BlacklistAccessToken(ctx, principal.TokenID, ttl); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// RequestPasswordReset mails a one-time reset link. Unknown emails succeed silently.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := generateRandomToken(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.tokenStore.StoreResetToken(ctx, token, user.ID, s.resetTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("mail reset token: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokenStore.ConsumeResetToken(ctx, token)
	if err != nil {
		return apperrors.ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return fmt.Errorf("find user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.attempts.Reset(ctx, user.ID)
	return nil
}

// ExternalLoginURL returns the provider consent URL with a freshly stored state.
func (s *authService) ExternalLoginURL(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", apperrors.ErrProviderDisabled
	}
	state, err := generateRandomToken(16)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.tokenStore.StoreOAuthState(ctx, state, oauthStateTTL); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return s.provider.AuthCodeURL(state), nil
}

// ExternalLoginCallback signs in the account linked to the external identity,
// provisioning one on first use.
func (s *authService) ExternalLoginCallback(ctx context.Context, state, code string) (*auth.IssuedToken, *model.AppUser, error) {
	if s.provider == nil {
		return nil, nil, apperrors.ErrProviderDisabled
	}
	ok, err := s.tokenStore.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, nil, fmt.Errorf("check state: %w", err)
	}
	if !ok {
		return nil, nil, apperrors.ErrInvalidOAuthState
	}

	identity, err := s.provider.Identify(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("identify: %w", err)
	}

	user, err := s.userRepo.FindByExternalLogin(ctx, identity.Provider, identity.ProviderKey)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, nil, apperrors.ErrAccountInactive
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.provisionExternalUser(ctx, identity)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("find external login: %w", err)
	}

	issued, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return issued, user, nil
}

func (s *authService) provisionExternalUser(ctx context.Context, identity *oauth.ExternalIdentity) (*model.AppUser, error) {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, identity.Email, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}

	name := identity.GivenName
	if name == "" {
		name = "Google"
	}
	surname := identity.FamilyName
	if surname == "" {
		surname = "User"
	}

	user := &model.AppUser{
		Name:           name,
		Surname:        surname,
		Username:       identity.Email,
		Email:          identity.Email,
		IsActive:       true,
		EmailConfirmed: true,
		Role:           model.RoleUser,
	}
	login := &model.ExternalLogin{
		Provider:    identity.Provider,
		ProviderKey: identity.ProviderKey,
	}
	if err := s.userRepo.CreateWithExternalLogin(ctx, user, login); err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}

	s.logger.Info("Provisioned account from external login",
		zap.String("user_id", user.ID.String()),
		zap.String("provider", identity.Provider))
	return user, nil
}

// generateActivationCode returns a random six digit code.
func generateActivationCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}

func generateRandomToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
