package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"webmail/internal/auth"
	"webmail/internal/config"
	apperrors "webmail/internal/errors"
	"webmail/internal/model"
	"webmail/internal/oauth"
)

type authFixture struct {
	users    *MockUserRepository
	tokens   *MockTokenStore
	attempts *MockAttemptTracker
	mailer   *MockMailer
	provider *MockProvider
	jwt      *auth.JWTService
	svc      AuthService
}

func newAuthFixture(withProvider bool) *authFixture {
	f := &authFixture{
		users:    new(MockUserRepository),
		tokens:   new(MockTokenStore),
		attempts: new(MockAttemptTracker),
		mailer:   new(MockMailer),
		provider: new(MockProvider),
		jwt: auth.NewJWTService(config.JWTConfig{
			Key:           "test-signing-key-with-enough-length",
			Issuer:        "webmail-test",
			Audience:      "webmail-test-users",
			ExpireMinutes: 60,
		}),
	}
	var provider oauth.Provider
	if withProvider {
		provider = f.provider
	}
	f.svc = NewAuthService(f.users, f.jwt, f.tokens, f.attempts, f.mailer, provider, 20*time.Minute, zap.NewNop())
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	correct := "correct-password"

	baseUser := func(t *testing.T) *model.AppUser {
		return &model.AppUser{
			ID:             userID,
			Name:           "Alice",
			Surname:        "Doe",
			City:           "Yardley",
			Username:       "alice",
			Email:          "alice@example.com",
			PasswordHash:   hashed(t, correct),
			IsActive:       true,
			EmailConfirmed: true,
		}
	}

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(t *testing.T, f *authFixture)
		expectedError error
		passwordCheck bool
	}{
		{
			name:     "unknown user",
			username: "nobody",
			password: correct,
			setupMock: func(t *testing.T, f *authFixture) {
				f.users.On("FindByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:     "unconfirmed email is rejected before the password is checked",
			username: "alice",
			password: correct,
			setupMock: func(t *testing.T, f *authFixture) {
				u := baseUser(t)
				u.EmailConfirmed = false
				f.users.On("FindByUsername", mock.Anything, "alice").Return(u, nil)
			},
			expectedError: apperrors.ErrEmailNotConfirmed,
		},
		{
			name:     "unconfirmed email wins over wrong password",
			username: "alice",
			password: "wrong",
			setupMock: func(t *testing.T, f *authFixture) {
				u := baseUser(t)
				u.EmailConfirmed = false
				f.users.On("FindByUsername", mock.Anything, "alice").Return(u, nil)
			},
			expectedError: apperrors.ErrEmailNotConfirmed,
		},
		{
			name:     "inactive account",
			username: "alice",
			password: correct,
			setupMock: func(t *testing.T, f *authFixture) {
				u := baseUser(t)
				u.IsActive = false
				f.users.On("FindByUsername", mock.Anything, "alice").Return(u, nil)
			},
			expectedError: apperrors.ErrAccountInactive,
		},
		{
			name:     "locked out account",
			username: "alice",
			password: correct,
			setupMock: func(t *testing.T, f *authFixture) {
				f.users.On("FindByUsername", mock.Anything, "alice").Return(baseUser(t), nil)
				f.attempts.On("IsLockedOut", mock.Anything, userID).Return(true)
			},
			expectedError: apperrors.ErrInvalidCredentials,
			passwordCheck: true,
		},
		{
			name:     "wrong password records a failure",
			username: "alice",
			password: "wrong",
			setupMock: func(t *testing.T, f *authFixture) {
				f.users.On("FindByUsername", mock.Anything, "alice").Return(baseUser(t), nil)
				f.attempts.On("IsLockedOut", mock.Anything, userID).Return(false)
				f.attempts.On("RecordFailure", mock.Anything, userID).Return(false)
			},
			expectedError: apperrors.ErrInvalidCredentials,
			passwordCheck: true,
		},
		{
			name:     "successful login",
			username: "alice",
			password: correct,
			setupMock: func(t *testing.T, f *authFixture) {
				f.users.On("FindByUsername", mock.Anything, "alice").Return(baseUser(t), nil)
				f.attempts.On("IsLockedOut", mock.Anything, userID).Return(false)
				f.attempts.On("Reset", mock.Anything, userID).Return()
				f.tokens.On("SetActiveSession", mock.Anything, userID, mock.AnythingOfType("string"), time.Hour).Return(nil)
			},
			passwordCheck: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(false)
			tt.setupMock(t, f)

			issued, user, err := f.svc.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, issued)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, issued)
				claims, err := f.jwt.ValidateToken(issued.Token)
				require.NoError(t, err)
				assert.Equal(t, "Yardley", claims.City)
				assert.Equal(t, userID.String(), claims.Subject)
				assert.Equal(t, "alice@example.com", claims.Email)
			}
			if !tt.passwordCheck {
				f.attempts.AssertNotCalled(t, "IsLockedOut", mock.Anything, mock.Anything)
				f.attempts.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything)
			}
			f.users.AssertExpectations(t)
			f.attempts.AssertExpectations(t)
			f.tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	input := RegisterInput{
		Name:     "Bob",
		Surname:  "Builder",
		Username: "bob",
		Email:    "bob@example.com",
		City:     "Yardley",
		Password: "password123",
	}

	t.Run("creates unconfirmed account and mails code", func(t *testing.T) {
		f := newAuthFixture(false)
		f.users.On("ExistsByUsernameOrEmail", mock.Anything, "bob", "bob@example.com").Return(false, nil)
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.AppUser")).Return(nil)
		f.mailer.On("SendActivationCode", mock.Anything, "bob@example.com", "Bob", mock.AnythingOfType("int")).Return(nil)

		user, err := f.svc.Register(context.Background(), input)
		require.NoError(t, err)

		assert.False(t, user.EmailConfirmed)
		assert.True(t, user.IsActive)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.GreaterOrEqual(t, user.ActivationCode, 100000)
		assert.LessOrEqual(t, user.ActivationCode, 999999)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
		f.mailer.AssertExpectations(t)
	})

	t.Run("duplicate username or email", func(t *testing.T) {
		f := newAuthFixture(false)
		f.users.On("ExistsByUsernameOrEmail", mock.Anything, "bob", "bob@example.com").Return(true, nil)

		_, err := f.svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("mail failure does not undo registration", func(t *testing.T) {
		f := newAuthFixture(false)
		f.users.On("ExistsByUsernameOrEmail", mock.Anything, "bob", "bob@example.com").Return(false, nil)
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.AppUser")).Return(nil)
		f.mailer.On("SendActivationCode", mock.Anything, "bob@example.com", "Bob", mock.AnythingOfType("int")).Return(errors.New("mail down"))

		user, err := f.svc.Register(context.Background(), input)
		require.NoError(t, err)
		assert.NotNil(t, user)
	})
}

func TestAuthService_Activate(t *testing.T) {
	tests := []struct {
		name          string
		user          *model.AppUser
		findErr       error
		code          int
		expectUpdate  bool
		expectedError error
	}{
		{
			name:         "matching code confirms email",
			user:         &model.AppUser{Email: "bob@example.com", ActivationCode: 123456},
			code:         123456,
			expectUpdate: true,
		},
		{
			name:          "wrong code",
			user:          &model.AppUser{Email: "bob@example.com", ActivationCode: 123456},
			code:          654321,
			expectedError: apperrors.ErrInvalidActivationCode,
		},
		{
			name:          "unknown email",
			findErr:       gorm.ErrRecordNotFound,
			code:          123456,
			expectedError: apperrors.ErrInvalidActivationCode,
		},
		{
			name: "already confirmed is a no-op",
			user: &model.AppUser{Email: "bob@example.com", EmailConfirmed: true},
			code: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(false)
			if tt.findErr != nil {
				f.users.On("FindByEmail", mock.Anything, "bob@example.com").Return(nil, tt.findErr)
			} else {
				f.users.On("FindByEmail", mock.Anything, "bob@example.com").Return(tt.user, nil)
			}
			if tt.expectUpdate {
				f.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.AppUser) bool {
					return u.EmailConfirmed && u.ActivationCode == 0
				})).Return(nil)
			}

			err := f.svc.Activate(context.Background(), "bob@example.com", tt.code)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			if !tt.expectUpdate {
				f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
			f.users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("blacklists token until expiry", func(t *testing.T) {
		f := newAuthFixture(false)
		p := &auth.Principal{UserID: uuid.New(), TokenID: "jti-1", ExpiresAt: time.Now().Add(30 * time.Minute)}
		f.tokens.On("BlacklistAccessToken", mock.Anything, "jti-1", mock.MatchedBy(func(d time.Duration) bool {
			return d > 29*time.Minute && d <= 30*time.Minute
		})).Return(nil)

		require.NoError(t, f.svc.Logout(context.Background(), p))
		f.tokens.AssertExpectations(t)
	})

	t.Run("expired token needs no blacklist entry", func(t *testing.T) {
		f := newAuthFixture(false)
		p := &auth.Principal{TokenID: "jti-1", ExpiresAt: time.Now().Add(-time.Minute)}

		require.NoError(t, f.svc.Logout(context.Background(), p))
		f.tokens.AssertNotCalled(t, "BlacklistAccessToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no principal", func(t *testing.T) {
		f := newAuthFixture(false)
		assert.ErrorIs(t, f.svc.Logout(context.Background(), nil), apperrors.ErrUnauthenticated)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	userID := uuid.New()
	user := &model.AppUser{ID: userID, Email: "bob@example.com"}

	t.Run("request stores token and mails it", func(t *testing.T) {
		f := newAuthFixture(false)
		var stored string
		f.users.On("FindByEmail", mock.Anything, "bob@example.com").Return(user, nil)
		f.tokens.On("StoreResetToken", mock.Anything, mock.AnythingOfType("string"), userID, 20*time.Minute).
			Run(func(args mock.Arguments) { stored = args.String(1) }).
			Return(nil)
		f.mailer.On("SendPasswordReset", mock.Anything, "bob@example.com", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { assert.Equal(t, stored, args.String(2)) }).
			Return(nil)

		require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "bob@example.com"))
		assert.Len(t, stored, 64)
		f.mailer.AssertExpectations(t)
	})

	t.Run("cache outage is reported and nothing is mailed", func(t *testing.T) {
		f := newAuthFixture(false)
		outage := errors.New("dial tcp: connection refused")
		f.users.On("FindByEmail", mock.Anything, "bob@example.com").Return(user, nil)
		f.tokens.On("StoreResetToken", mock.Anything, mock.AnythingOfType("string"), userID, 20*time.Minute).Return(outage)

		err := f.svc.RequestPasswordReset(context.Background(), "bob@example.com")
		assert.ErrorIs(t, err, outage)
		f.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		f := newAuthFixture(false)
		f.users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
		f.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reset with valid token replaces password", func(t *testing.T) {
		f := newAuthFixture(false)
		f.tokens.On("ConsumeResetToken", mock.Anything, "tok").Return(userID, nil)
		f.users.On("FindByID", mock.Anything, userID).Return(&model.AppUser{ID: userID}, nil)
		f.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.AppUser) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-password")) == nil
		})).Return(nil)
		f.attempts.On("Reset", mock.Anything, userID).Return()

		require.NoError(t, f.svc.ResetPassword(context.Background(), "tok", "new-password"))
		f.users.AssertExpectations(t)
	})

	t.Run("reset with unknown token", func(t *testing.T) {
		f := newAuthFixture(false)
		f.tokens.On("ConsumeResetToken", mock.Anything, "used").Return(uuid.Nil, errors.New("reset token not found"))

		err := f.svc.ResetPassword(context.Background(), "used", "new-password")
		assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
	})
}

func TestAuthService_ExternalLogin(t *testing.T) {
	identity := &oauth.ExternalIdentity{
		Provider:    oauth.ProviderGoogle,
		ProviderKey: "g-42",
		Email:       "carol@example.com",
	}

	t.Run("disabled provider", func(t *testing.T) {
		f := newAuthFixture(false)
		_, err := f.svc.ExternalLoginURL(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrProviderDisabled)
	})

	t.Run("login url stores state", func(t *testing.T) {
		f := newAuthFixture(true)
		f.tokens.On("StoreOAuthState", mock.Anything, mock.AnythingOfType("string"), oauthStateTTL).Return(nil)
		f.provider.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://accounts.example/consent")

		url, err := f.svc.ExternalLoginURL(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://accounts.example/consent", url)
		f.tokens.AssertExpectations(t)
	})

	t.Run("unknown state", func(t *testing.T) {
		f := newAuthFixture(true)
		f.tokens.On("ConsumeOAuthState", mock.Anything, "forged").Return(false, nil)

		_, _, err := f.svc.ExternalLoginCallback(context.Background(), "forged", "code")
		assert.ErrorIs(t, err, apperrors.ErrInvalidOAuthState)
		f.provider.AssertNotCalled(t, "Identify", mock.Anything, mock.Anything)
	})

	t.Run("first login provisions account with defaults", func(t *testing.T) {
		f := newAuthFixture(true)
		f.tokens.On("ConsumeOAuthState", mock.Anything, "state").Return(true, nil)
		f.provider.On("Identify", mock.Anything, "code").Return(identity, nil)
		f.users.On("FindByExternalLogin", mock.Anything, oauth.ProviderGoogle, "g-42").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("ExistsByUsernameOrEmail", mock.Anything, "carol@example.com", "carol@example.com").Return(false, nil)
		f.users.On("CreateWithExternalLogin", mock.Anything,
			mock.MatchedBy(func(u *model.AppUser) bool {
				return u.Name == "Google" && u.Surname == "User" &&
					u.Username == "carol@example.com" && u.EmailConfirmed && u.IsActive
			}),
			mock.MatchedBy(func(l *model.ExternalLogin) bool {
				return l.Provider == oauth.ProviderGoogle && l.ProviderKey == "g-42"
			}),
		).Run(func(args mock.Arguments) {
			args.Get(1).(*model.AppUser).ID = uuid.New()
		}).Return(nil)
		f.tokens.On("SetActiveSession", mock.Anything, mock.Anything, mock.AnythingOfType("string"), time.Hour).Return(nil)

		issued, user, err := f.svc.ExternalLoginCallback(context.Background(), "state", "code")
		require.NoError(t, err)
		assert.NotEmpty(t, issued.Token)
		assert.Equal(t, "carol@example.com", user.Email)
		f.users.AssertExpectations(t)
	})

	t.Run("email held by a local account", func(t *testing.T) {
		f := newAuthFixture(true)
		f.tokens.On("ConsumeOAuthState", mock.Anything, "state").Return(true, nil)
		f.provider.On("Identify", mock.Anything, "code").Return(identity, nil)
		f.users.On("FindByExternalLogin", mock.Anything, oauth.ProviderGoogle, "g-42").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("ExistsByUsernameOrEmail", mock.Anything, "carol@example.com", "carol@example.com").Return(true, nil)

		_, _, err := f.svc.ExternalLoginCallback(context.Background(), "state", "code")
		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})

	t.Run("linked account signs in", func(t *testing.T) {
		f := newAuthFixture(true)
		linked := &model.AppUser{ID: uuid.New(), Email: "carol@example.com", IsActive: true, EmailConfirmed: true}
		f.tokens.On("ConsumeOAuthState", mock.Anything, "state").Return(true, nil)
		f.provider.On("Identify", mock.Anything, "code").Return(identity, nil)
		f.users.On("FindByExternalLogin", mock.Anything, oauth.ProviderGoogle, "g-42").Return(linked, nil)
		f.tokens.On("SetActiveSession", mock.Anything, linked.ID, mock.AnythingOfType("string"), time.Hour).Return(nil)

		_, user, err := f.svc.ExternalLoginCallback(context.Background(), "state", "code")
		require.NoError(t, err)
		assert.Equal(t, linked, user)
		f.users.AssertNotCalled(t, "CreateWithExternalLogin", mock.Anything, mock.Anything, mock.Anything)
	})
}
