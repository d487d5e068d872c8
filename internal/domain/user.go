package domain

import (
	"time"

	"github.com/lib/pq"
)

// User is a traveler, a local, or both.
type User struct {
	Base
	Email                   string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash            string         `json:"-"`
	Name                    *string        `json:"name"`
	Username                *string        `gorm:"uniqueIndex" json:"username"`
	AvatarURL               *string        `json:"avatar_url"`
	Bio                     *string        `json:"bio"`
	City                    *string        `json:"city"`
	InstagramHandle         *string        `json:"instagram_handle"`
	PreferredVibes          pq.StringArray `gorm:"type:text[]" json:"preferred_vibes"`
	IsTraveler              bool           `gorm:"not null;default:true" json:"is_traveler"`
	IsLocal                 bool           `gorm:"not null;default:false" json:"is_local"`
	VerifiedLocal           bool           `gorm:"not null;default:false" json:"verified_local"`
	LocalCities             pq.StringArray `gorm:"type:text[]" json:"local_cities"`
	YearsInCity             *int           `json:"years_in_city"`
	Expertise               pq.StringArray `gorm:"type:text[]" json:"expertise"`
	AuthProvider            string         `gorm:"not null;default:'email'" json:"auth_provider"`
	InstagramUserID         *string        `json:"instagram_user_id"`
	InstagramUsername       *string        `json:"instagram_username"`
	InstagramPhotos         pq.StringArray `gorm:"type:text[]" json:"instagram_photos"`
	InstagramAccessToken    *string        `json:"-"`
	InstagramTokenExpiresAt *time.Time     `gorm:"index" json:"-"`
}

// UserSummary is the public slice of a user embedded in feeds, suggestions
// and messages.
type UserSummary struct {
	ID              string  `json:"id"`
	Name            *string `json:"name"`
	Username        *string `json:"username"`
	AvatarURL       *string `json:"avatar_url"`
	InstagramHandle *string `json:"instagram_handle"`
	IsLocal         bool    `json:"is_local"`
	VerifiedLocal   bool    `json:"verified_local"`
}

// Summary returns the public fields of u, or nil for a nil user.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Username:        u.Username,
		AvatarURL:       u.AvatarURL,
		InstagramHandle: u.InstagramHandle,
		IsLocal:         u.IsLocal,
		VerifiedLocal:   u.VerifiedLocal,
	}
}
