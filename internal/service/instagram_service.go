package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lib/pq"

	"github.com/Tomlord1122/buyareco-backend/internal/auth"
	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/instagram"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

const (
	instagramPhotoCount   = 6
	instagramRefreshAhead = 7 * 24 * time.Hour
	instagramStateTTL     = 10 * time.Minute
)

var errInstagramDisabled = fmt.Errorf("%w: %v", domain.ErrNotFound, instagram.ErrNotConfigured)

// InstagramClient is the part of the Instagram API the service calls.
type InstagramClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	LongLived(ctx context.Context, shortToken string) (*instagram.LongLivedToken, error)
	Refresh(ctx context.Context, token string) (*instagram.LongLivedToken, error)
	Profile(ctx context.Context, token string) (*instagram.Profile, error)
	Media(ctx context.Context, token string, limit int) ([]instagram.Media, error)
}

// InstagramConnection summarises a linked account.
type InstagramConnection struct {
	Username   string `json:"username"`
	PhotoCount int    `json:"photo_count"`
}

// InstagramService links Instagram accounts and keeps their photos fresh.
type InstagramService interface {
	// Begin returns the consent page URL for userID.
	Begin(userID string) (string, error)
	// Complete finishes the round trip started by Begin.
	Complete(ctx context.Context, state, code string) (*InstagramConnection, error)
	Disconnect(ctx context.Context, userID string) error
	// RefreshExpiring renews tokens that expire within a week and reports
	// how many were renewed.
	RefreshExpiring(ctx context.Context, now time.Time) (int, error)
}

type instagramService struct {
	users   repository.UserRepository
	client  InstagramClient
	tokens  *auth.TokenManager
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewInstagramService creates the Instagram service. client may be nil when
// no app is configured; every flow then reports not found.
func NewInstagramService(users repository.UserRepository, client InstagramClient, tokens *auth.TokenManager, logger *log.Logger, m *metrics.Metrics) InstagramService {
	return &instagramService{users: users, client: client, tokens: tokens, logger: logger, metrics: m, now: time.Now}
}

func (s *instagramService) enabled() bool {
	return s.client != nil
}

func (s *instagramService) Begin(userID string) (string, error) {
	if !s.enabled() {
		return "", errInstagramDisabled
	}
	state, err := s.tokens.IssueState(userID, instagramStateTTL)
	if err != nil {
		return "", err
	}
	return s.client.AuthCodeURL(state), nil
}

func (s *instagramService) Complete(ctx context.Context, state, code string) (*InstagramConnection, error) {
	if !s.enabled() {
		return nil, errInstagramDisabled
	}
	if strings.TrimSpace(code) == "" {
		return nil, domain.NewValidationError("code", "is required")
	}
	userID, err := s.tokens.Parse(state, auth.TypeState)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	short, err := s.client.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("instagram exchange failed", "user", userID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	long, err := s.client.LongLived(ctx, short)
	if err != nil {
		return nil, err
	}
	profile, err := s.client.Profile(ctx, long.AccessToken)
	if err != nil {
		return nil, err
	}
	media, err := s.client.Media(ctx, long.AccessToken, instagramPhotoCount)
	if err != nil {
		return nil, err
	}

	_, err = s.users.Update(ctx, userID, map[string]any{
		"instagram_access_token":     long.AccessToken,
		"instagram_user_id":          profile.ID,
		"instagram_username":         profile.Username,
		"instagram_token_expires_at": s.expiry(long),
		"instagram_photos":           photoURLs(media),
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Event("instagram_connect")
	s.logger.Info("instagram connected", "user", userID, "photos", len(media))
	return &InstagramConnection{Username: profile.Username, PhotoCount: len(media)}, nil
}

func (s *instagramService) Disconnect(ctx context.Context, userID string) error {
	_, err := s.users.Update(ctx, userID, map[string]any{
		"instagram_access_token":     nil,
		"instagram_user_id":          nil,
		"instagram_username":         nil,
		"instagram_token_expires_at": nil,
		"instagram_photos":           nil,
	})
	return err
}

// RefreshExpiring also re-reads each account's newest photos. A failure for
// one user is logged and the sweep moves on.
func (s *instagramService) RefreshExpiring(ctx context.Context, now time.Time) (int, error) {
	if !s.enabled() {
		return 0, nil
	}
	users, err := s.users.ListInstagramExpiring(ctx, now.Add(instagramRefreshAhead))
	if err != nil {
		return 0, err
	}

	var errs []error
	refreshed := 0
	for _, u := range users {
		if u.InstagramAccessToken == nil {
			continue
		}
		tok, err := s.client.Refresh(ctx, *u.InstagramAccessToken)
		if err != nil {
			s.logger.Warn("instagram token refresh failed", "user", u.ID, "err", err)
			continue
		}
		updates := map[string]any{
			"instagram_access_token":     tok.AccessToken,
			"instagram_token_expires_at": now.Add(time.Duration(tok.ExpiresIn) * time.Second),
		}
		if media, err := s.client.Media(ctx, tok.AccessToken, instagramPhotoCount); err != nil {
			s.logger.Warn("instagram photo sync failed", "user", u.ID, "err", err)
		} else {
			updates["instagram_photos"] = photoURLs(media)
		}
		if _, err := s.users.Update(ctx, u.ID, updates); err != nil {
			errs = append(errs, err)
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

func (s *instagramService) expiry(tok *instagram.LongLivedToken) time.Time {
	return s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
}

// photoURLs keeps the displayable image of each post, skipping blanks.
func photoURLs(media []instagram.Media) pq.StringArray {
	out := make(pq.StringArray, 0, len(media))
	for _, m := range media {
		if u := m.DisplayURL(); u != "" {
			out = append(out, u)
		}
	}
	return out
}
