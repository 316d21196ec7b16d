// Package oauth implements the Google federated login flow.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"webmail/internal/config"
	apperrors "webmail/internal/errors"
)

// ProviderGoogle is the provider name stored on external logins.
const ProviderGoogle = "Google"

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ExternalIdentity is the profile returned by the identity provider.
type ExternalIdentity struct {
	Provider    string
	ProviderKey string
	Email       string
	GivenName   string
	FamilyName  string
}

// Provider runs the authorization code flow against an identity provider.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*ExternalIdentity, error)
}

// GoogleProvider signs users in with Google.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

var _ Provider = (*GoogleProvider)(nil)

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// NewGoogleProvider returns nil when the client registration is incomplete.
func NewGoogleProvider(cfg config.OAuthConfig) *GoogleProvider {
	if !cfg.Enabled() {
		return nil
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: defaultUserInfoURL,
	}
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

// AuthCodeURL returns the consent page URL carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Identify exchanges the authorization code and loads the user's profile.
func (p *GoogleProvider) Identify(ctx context.Context, code string) (*ExternalIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", apperrors.ErrInvalidToken, err)
	}

	client := p.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch userinfo: status %d: %s", resp.StatusCode, body)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo is missing subject or email")
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("%w: google email is not verified", apperrors.ErrEmailNotConfirmed)
	}

	return &ExternalIdentity{
		Provider:    ProviderGoogle,
		ProviderKey: info.Sub,
		Email:       info.Email,
		GivenName:   info.GivenName,
		FamilyName:  info.FamilyName,
	}, nil
}
