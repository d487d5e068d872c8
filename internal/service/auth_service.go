package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/buyareco-backend/internal/auth"
	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

// SignUpRequest holds the sign-up form.
type SignUpRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// SignInRequest holds the sign-in form.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest holds the password change form.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse is returned by every flow that starts a session.
type AuthResponse struct {
	User    *domain.User  `json:"user"`
	Session *auth.Session `json:"session"`
}

// AuthService defines account and session operations.
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Session, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
	// Authenticate resolves an access token to its user ID.
	Authenticate(accessToken string) (string, error)
	BeginOAuth(provider string) (redirectURL, state string, err error)
	CompleteOAuth(ctx context.Context, provider, code string) (*AuthResponse, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    *auth.TokenManager
	providers auth.Providers
	logger    *log.Logger
	metrics   *metrics.Metrics
}

// NewAuthService creates the account service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, providers auth.Providers, logger *log.Logger, m *metrics.Metrics) AuthService {
	return &authService{users: users, tokens: tokens, providers: providers, logger: logger, metrics: m}
}

func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var verr domain.ValidationError
	if !auth.ValidEmail(email) {
		verr.Add("email", "must be a valid email address")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		verr.Add("password", err.Error())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         trimmed(req.Name),
		IsTraveler:   true,
		AuthProvider: "email",
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return nil, err
	}
	s.metrics.Event("signup")
	s.logger.Info("user signed up", "user", user.ID)
	return s.session(user)
}

func (s *authService) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, errInvalidCredentials
	}
	return s.session(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*auth.Session, error) {
	userID, err := s.tokens.Parse(refreshToken, auth.TypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown user: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return s.tokens.Issue(userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("account signs in with %s and has no password: %w", user.AuthProvider, domain.ErrForbidden)
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return domain.NewValidationError("new_password", err.Error())
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.Update(ctx, userID, map[string]any{"password_hash": hash})
	return err
}

func (s *authService) Authenticate(accessToken string) (string, error) {
	userID, err := s.tokens.Parse(accessToken, auth.TypeAccess)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return userID, nil
}

func (s *authService) BeginOAuth(provider string) (string, string, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	state := auth.NewState()
	return p.AuthCodeURL(state), state, nil
}

// CompleteOAuth exchanges code and signs in the matching user, creating
// the account on first login.
func (s *authService) CompleteOAuth(ctx context.Context, provider, code string) (*AuthResponse, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	if code == "" {
		return nil, domain.NewValidationError("code", "is required")
	}
	profile, err := p.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("oauth exchange failed", "provider", provider, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	// An unverified address could claim someone else's account.
	if !profile.EmailVerified {
		s.logger.Warn("oauth email not verified", "provider", provider)
		return nil, fmt.Errorf("%s has not verified the email address: %w", provider, domain.ErrUnauthorized)
	}

	email := strings.ToLower(profile.Email)
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.session(user)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	user = &domain.User{
		Email:        email,
		Name:         trimmed(&profile.Name),
		AvatarURL:    trimmed(&profile.AvatarURL),
		IsTraveler:   true,
		AuthProvider: provider,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.metrics.Event("signup")
	s.logger.Info("user signed up", "user", user.ID, "provider", provider)
	return s.session(user)
}

func (s *authService) session(user *domain.User) (*AuthResponse, error) {
	sess, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Session: sess}, nil
}
