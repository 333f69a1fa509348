// Package identity logs users in through an external OAuth2 identity provider.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/services"
	"golang.org/x/oauth2"
)

// ErrNoIdentity is returned when the provider's user info names nobody.
var ErrNoIdentity = errors.New("identity provider returned no user")

// Provider runs the authorization code flow against one identity provider.
type Provider struct {
	OAuth       *oauth2.Config
	UserInfoURL string
}

// NewProvider builds a Provider from the OAUTH_* settings.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		OAuth: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		UserInfoURL: cfg.OAuthUserInfoURL,
	}
}

// LoginURL returns the provider page the user is redirected to.
func (p *Provider) LoginURL(state string) string {
	return p.OAuth.AuthCodeURL(state)
}

// userInfo accepts both OpenID Connect and Auth0 style profiles.
type userInfo struct {
	Sub          string `json:"sub"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Nickname     string `json:"nickname"`
	UserMetadata struct {
		Secret string `json:"secret"`
	} `json:"user_metadata"`
}

func (u *userInfo) identity() *services.Identity {
	id := u.UserID
	if id == "" {
		id = u.Sub
	}
	name := u.Nickname
	if name == "" {
		name = u.Name
	}
	return &services.Identity{
		ExternalID: id,
		Email:      u.Email,
		Name:       name,
		Secret:     u.UserMetadata.Secret,
	}
}

// Exchange trades an authorization code for the identity of the user.
func (p *Provider) Exchange(ctx context.Context, code string) (*services.Identity, error) {
	token, err := p.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.OAuth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("user info request failed: %s: %s", resp.Status, body)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	identity := info.identity()
	if identity.ExternalID == "" {
		return nil, ErrNoIdentity
	}
	return identity, nil
}
