package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

// Onboarding roles.
const (
	RoleTraveler = "traveler"
	RoleLocal    = "local"
	RoleBoth     = "both"
)

var (
	usernamePattern  = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
	instagramPattern = regexp.MustCompile(`^@?[A-Za-z0-9_.]{1,30}$`)
)

// Profile is a user plus activity counts.
type Profile struct {
	*domain.User
	repository.ProfileCounts
}

// UpdateProfileRequest is a partial profile update; nil fields are kept.
type UpdateProfileRequest struct {
	Name            *string   `json:"name"`
	Username        *string   `json:"username"`
	AvatarURL       *string   `json:"avatar_url"`
	Bio             *string   `json:"bio"`
	City            *string   `json:"city"`
	InstagramHandle *string   `json:"instagram_handle"`
	PreferredVibes  *[]string `json:"preferred_vibes"`
}

// OnboardingRequest records the role chosen at onboarding and, for locals,
// their local profile.
type OnboardingRequest struct {
	Role            string   `json:"role"`
	LocalCities     []string `json:"local_cities"`
	YearsInCity     *int     `json:"years_in_city"`
	Expertise       []string `json:"expertise"`
	Bio             *string  `json:"bio"`
	InstagramHandle *string  `json:"instagram_handle"`
	PreferredVibes  []string `json:"preferred_vibes"`
}

// UserService defines profile operations.
type UserService interface {
	GetProfile(ctx context.Context, viewerID, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error)
	CompleteOnboarding(ctx context.Context, userID string, req OnboardingRequest) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

// NewUserService creates the profile service.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetProfile(ctx context.Context, viewerID, userID string) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.users.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if viewerID != userID {
		user.Email = ""
	}
	return &Profile{User: user, ProfileCounts: counts}, nil
}

// nullable maps a trimmed optional string to a column value, storing NULL
// for blanks.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]any{}
	var verr domain.ValidationError

	setText := func(col string, v *string, max int) {
		if v == nil {
			return
		}
		t := strings.TrimSpace(*v)
		if len(t) > max {
			verr.Add(col, fmt.Sprintf("must be at most %d characters", max))
			return
		}
		updates[col] = nullable(t)
	}
	setText("name", req.Name, 100)
	setText("avatar_url", req.AvatarURL, 2048)
	setText("bio", req.Bio, 500)
	setText("city", req.City, 100)

	if req.Username != nil {
		u := strings.ToLower(strings.TrimSpace(*req.Username))
		if u != "" && !usernamePattern.MatchString(u) {
			verr.Add("username", "must be 3-30 lowercase letters, digits, '_' or '.'")
		} else {
			updates["username"] = nullable(u)
		}
	}
	if req.InstagramHandle != nil {
		h := strings.TrimSpace(*req.InstagramHandle)
		if h != "" && !instagramPattern.MatchString(h) {
			verr.Add("instagram_handle", "is not a valid handle")
		} else {
			updates["instagram_handle"] = nullable(strings.TrimPrefix(h, "@"))
		}
	}
	if req.PreferredVibes != nil {
		vibes, invalid := domain.NormalizeVibes(*req.PreferredVibes)
		if len(invalid) > 0 {
			verr.Add("preferred_vibes", "unknown vibe: "+strings.Join(invalid, ", "))
		} else {
			updates["preferred_vibes"] = pq.StringArray(vibes)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.Update(ctx, userID, updates)
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	return user, err
}

func (s *userService) CompleteOnboarding(ctx context.Context, userID string, req OnboardingRequest) (*domain.User, error) {
	var verr domain.ValidationError
	isTraveler, isLocal := true, false
	switch req.Role {
	case RoleTraveler:
	case RoleLocal:
		isTraveler, isLocal = false, true
	case RoleBoth:
		isLocal = true
	default:
		verr.Add("role", "must be one of traveler, local, both")
	}

	updates := map[string]any{"is_traveler": isTraveler, "is_local": isLocal}
	if isLocal {
		cities := cleanList(req.LocalCities)
		if len(cities) == 0 {
			verr.Add("local_cities", "at least one city is required for locals")
		}
		if req.YearsInCity != nil && (*req.YearsInCity < 0 || *req.YearsInCity > 100) {
			verr.Add("years_in_city", "must be between 0 and 100")
		}
		updates["local_cities"] = pq.StringArray(cities)
		updates["years_in_city"] = req.YearsInCity
		updates["expertise"] = pq.StringArray(cleanList(req.Expertise))
	}
	if b := trimmed(req.Bio); b != nil {
		updates["bio"] = *b
	}
	if h := trimmed(req.InstagramHandle); h != nil {
		if !instagramPattern.MatchString(*h) {
			verr.Add("instagram_handle", "is not a valid handle")
		}
		updates["instagram_handle"] = strings.TrimPrefix(*h, "@")
	}
	if req.PreferredVibes != nil {
		vibes, invalid := domain.NormalizeVibes(req.PreferredVibes)
		if len(invalid) > 0 {
			verr.Add("preferred_vibes", "unknown vibe: "+strings.Join(invalid, ", "))
		}
		updates["preferred_vibes"] = pq.StringArray(vibes)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, userID, updates)
}

// cleanList trims entries and drops blanks and case-insensitive duplicates.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		k := strings.ToLower(v)
		if v == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
