package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Tomlord1122/buyareco-backend/internal/config"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"Abcdefg1", nil},
		{"Ab1", ErrPasswordTooShort},
		{"abcdefgh1", ErrPasswordWeak},
		{"ABCDEFGH1", ErrPasswordWeak},
		{"Abcdefghi", ErrPasswordWeak},
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.pw))
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("ana@example.com"))
	assert.True(t, ValidEmail(" ana@example.pt "))
	assert.False(t, ValidEmail("ana@example"))
	assert.False(t, ValidEmail("ana example@x.com"))
	assert.False(t, ValidEmail(""))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword("", "Secret123"))
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	session, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", session.TokenType)

	t.Run("access round trip", func(t *testing.T) {
		sub, err := m.Parse(session.AccessToken, TypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "user-1", sub)
	})

	t.Run("refresh round trip", func(t *testing.T) {
		sub, err := m.Parse(session.RefreshToken, TypeRefresh)
		require.NoError(t, err)
		assert.Equal(t, "user-1", sub)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := m.Parse(session.AccessToken, TypeRefresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other", time.Minute, time.Hour)
		_, err := other.Parse(session.AccessToken, TypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager("test-secret", time.Minute, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err := later.Parse(session.AccessToken, TypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token", TypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("state", func(t *testing.T) {
		state, err := m.IssueState("user-1", 10*time.Minute)
		require.NoError(t, err)
		sub, err := m.Parse(state, TypeState)
		require.NoError(t, err)
		assert.Equal(t, "user-1", sub)

		_, err = m.Parse(state, TypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken, "a state cannot authenticate")
	})
}

func TestNewProviders(t *testing.T) {
	p := NewProviders(config.OAuthConfig{
		RedirectBaseURL: "https://api.example.com/",
		Google:          config.ProviderConfig{ClientID: "gid", ClientSecret: "gsecret"},
	})
	assert.Equal(t, []string{"google"}, p.Names())

	g, err := p.Get("google")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/auth/oauth/google/callback", g.Config.RedirectURL)

	u, err := url.Parse(g.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "gid", u.Query().Get("client_id"))

	_, err = p.Get("facebook")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestProviderExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"email":   "ana@example.com",
			"name":    "Ana",
			"picture": map[string]any{"data": map[string]any{"url": "https://cdn/ana.png"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	prov := NewFacebookProvider(&oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
	}, srv.URL+"/me")

	profile, err := prov.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &Profile{Email: "ana@example.com", EmailVerified: true, Name: "Ana", AvatarURL: "https://cdn/ana.png"}, profile)

	_, err = prov.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}
