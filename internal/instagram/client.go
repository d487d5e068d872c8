// Package instagram reads a user's Instagram account through the Basic
// Display API: the OAuth code exchange, long-lived token upkeep, and the
// profile and media endpoints.
package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Tomlord1122/buyareco-backend/internal/config"
)

// Public API endpoints.
const (
	AuthURL  = "https://api.instagram.com/oauth/authorize"
	TokenURL = "https://api.instagram.com/oauth/access_token"
	GraphURL = "https://graph.instagram.com"
)

// Media types reported by the media endpoint.
const (
	MediaImage    = "IMAGE"
	MediaVideo    = "VIDEO"
	MediaCarousel = "CAROUSEL_ALBUM"
)

// ErrNotConfigured is returned when no app is registered.
var ErrNotConfigured = errors.New("instagram is not configured")

const mediaFields = "id,media_type,media_url,thumbnail_url,permalink,caption,timestamp"

// LongLivedToken is a token valid for ExpiresIn seconds, usually 60 days.
type LongLivedToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Profile is the account behind a token.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	MediaCount  int    `json:"media_count"`
	AccountType string `json:"account_type"`
}

// Media is one post.
type Media struct {
	ID           string `json:"id"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Permalink    string `json:"permalink"`
	Caption      string `json:"caption"`
	Timestamp    string `json:"timestamp"`
}

// DisplayURL is the image to show for m. Videos use their thumbnail.
func (m Media) DisplayURL() string {
	if m.MediaType == MediaVideo {
		return m.ThumbnailURL
	}
	return m.MediaURL
}

// Client calls the Instagram APIs for one registered app.
type Client struct {
	oauth    *oauth2.Config
	graphURL string
	http     *http.Client
}

// New returns a client for the app in cfg, or nil when no app ID is set.
// redirectURL is where Instagram sends the user back with a code.
func New(cfg config.InstagramConfig, redirectURL string) *Client {
	if cfg.AppID == "" {
		return nil
	}
	return NewClient(&oauth2.Config{
		ClientID:     cfg.AppID,
		ClientSecret: cfg.AppSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      []string{"user_profile,user_media"},
	}, GraphURL, http.DefaultClient)
}

// NewClient builds a client against explicit endpoints.
func NewClient(cfg *oauth2.Config, graphURL string, hc *http.Client) *Client {
	return &Client{oauth: cfg, graphURL: strings.TrimRight(graphURL, "/"), http: hc}
}

// AuthCodeURL returns the consent page URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a short-lived token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("instagram code exchange: %w", err)
	}
	return tok.AccessToken, nil
}

// LongLived swaps a short-lived token for a long-lived one.
func (c *Client) LongLived(ctx context.Context, shortToken string) (*LongLivedToken, error) {
	var tok LongLivedToken
	err := c.get(ctx, "/access_token", url.Values{
		"grant_type":    {"ig_exchange_token"},
		"client_secret": {c.oauth.ClientSecret},
		"access_token":  {shortToken},
	}, &tok)
	if err != nil {
		return nil, fmt.Errorf("instagram long-lived token: %w", err)
	}
	return &tok, nil
}

// Refresh extends a long-lived token that has not yet expired.
func (c *Client) Refresh(ctx context.Context, token string) (*LongLivedToken, error) {
	var tok LongLivedToken
	err := c.get(ctx, "/refresh_access_token", url.Values{
		"grant_type":   {"ig_refresh_token"},
		"access_token": {token},
	}, &tok)
	if err != nil {
		return nil, fmt.Errorf("instagram token refresh: %w", err)
	}
	return &tok, nil
}

// Profile fetches the account the token belongs to.
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	err := c.get(ctx, "/me", url.Values{
		"fields":       {"id,username,media_count,account_type"},
		"access_token": {token},
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("instagram profile: %w", err)
	}
	return &p, nil
}

// Media fetches the newest limit posts.
func (c *Client) Media(ctx context.Context, token string, limit int) ([]Media, error) {
	var body struct {
		Data []Media `json:"data"`
	}
	err := c.get(ctx, "/me/media", url.Values{
		"fields":       {mediaFields},
		"limit":        {strconv.Itoa(limit)},
		"access_token": {token},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("instagram media: %w", err)
	}
	if body.Data == nil {
		return []Media{}, nil
	}
	return body.Data, nil
}

// apiError is the Graph API error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		// The request URL carries the access token; keep it out of errors.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
