package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/Tomlord1122/buyareco-backend/internal/config"
)

// ErrProviderNotConfigured is returned for unknown or credential-less providers.
var ErrProviderNotConfigured = errors.New("oauth provider not configured")

// Profile is the identity returned by a provider.
type Profile struct {
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// Provider is one OAuth2 identity provider.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	decode      func(io.Reader) (*Profile, error)
}

// Providers indexes the configured providers by name.
type Providers map[string]*Provider

// NewProviders builds the providers that have credentials in cfg.
func NewProviders(cfg config.OAuthConfig) Providers {
	out := Providers{}
	base := strings.TrimRight(cfg.RedirectBaseURL, "/")
	if c := cfg.Google; c.ClientID != "" {
		out["google"] = NewGoogleProvider(&oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  base + "/auth/oauth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
		}, "https://www.googleapis.com/oauth2/v3/userinfo")
	}
	if c := cfg.Facebook; c.ClientID != "" {
		out["facebook"] = NewFacebookProvider(&oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     facebook.Endpoint,
			RedirectURL:  base + "/auth/oauth/facebook/callback",
			Scopes:       []string{"email", "public_profile"},
		}, "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)")
	}
	return out
}

// NewGoogleProvider creates a provider that reads Google's OpenID userinfo.
func NewGoogleProvider(cfg *oauth2.Config, userInfoURL string) *Provider {
	return &Provider{Name: "google", Config: cfg, UserInfoURL: userInfoURL, decode: decodeGoogle}
}

// NewFacebookProvider creates a provider that reads the Graph API profile.
func NewFacebookProvider(cfg *oauth2.Config, userInfoURL string) *Provider {
	return &Provider{Name: "facebook", Config: cfg, UserInfoURL: userInfoURL, decode: decodeFacebook}
}

// Get returns the named provider.
func (p Providers) Get(name string) (*Provider, error) {
	prov, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}
	return prov, nil
}

// Names lists the configured providers in order.
func (p Providers) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewState returns a random state value for CSRF protection.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL returns the consent page URL for state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades code for a token and fetches the user's profile.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s profile: %w", p.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s profile: unexpected status %d", p.Name, resp.StatusCode)
	}

	profile, err := p.decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s profile: %w", p.Name, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%s profile has no email", p.Name)
	}
	return profile, nil
}

func decodeGoogle(r io.Reader) (*Profile, error) {
	var body struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, err
	}
	return &Profile{Email: body.Email, EmailVerified: body.EmailVerified, Name: body.Name, AvatarURL: body.Picture}, nil
}

func decodeFacebook(r io.Reader) (*Profile, error) {
	var body struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, err
	}
	// The Graph API only returns confirmed email addresses.
	return &Profile{Email: body.Email, EmailVerified: true, Name: body.Name, AvatarURL: body.Picture.Data.URL}, nil
}
