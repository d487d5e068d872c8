package domain

import "github.com/lib/pq"

// Suggestion is a local's answer to a request.
type Suggestion struct {
	Base
	RequestID        string                 `gorm:"type:uuid;not null;index" json:"request_id"`
	UserID           string                 `gorm:"type:uuid;not null;index" json:"user_id"`
	PlaceName        string                 `gorm:"not null" json:"place_name"`
	PlaceAddress     *string                `json:"place_address"`
	PlaceLatitude    *float64               `json:"place_latitude"`
	PlaceLongitude   *float64               `json:"place_longitude"`
	GooglePlaceID    *string                `json:"google_place_id"`
	Reason           string                 `gorm:"not null" json:"reason"`
	Tips             *string                `json:"tips"`
	Photos           pq.StringArray         `gorm:"type:text[]" json:"photos"`
	HelpfulCount     int                    `gorm:"not null;default:0" json:"helpful_count"`
	WasHelpful       *bool                  `json:"was_helpful"`
	WasTried         bool                   `gorm:"not null;default:false" json:"was_tried"`
	Rating           *int                   `json:"rating"`
	TravelerFeedback *string                `json:"traveler_feedback"`
	Request          *RecommendationRequest `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
	Suggester        *User                  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// SuggestionWithUser embeds the suggester summary.
type SuggestionWithUser struct {
	Suggestion
	SuggesterSummary *UserSummary `json:"suggester"`
}

// WithSuggester builds the response representation of s.
func (s Suggestion) WithSuggester() SuggestionWithUser {
	return SuggestionWithUser{Suggestion: s, SuggesterSummary: s.Suggester.Summary()}
}

// SavedPlace is a suggestion's place copied into a traveler's collection.
type SavedPlace struct {
	Base
	UserID         string      `gorm:"type:uuid;not null;index" json:"user_id"`
	SuggestionID   *string     `gorm:"type:uuid" json:"suggestion_id"`
	PlaceName      string      `gorm:"not null" json:"place_name"`
	PlaceAddress   *string     `json:"place_address"`
	PlaceLatitude  *float64    `json:"place_latitude"`
	PlaceLongitude *float64    `json:"place_longitude"`
	GooglePlaceID  *string     `json:"google_place_id"`
	Notes          *string     `json:"notes"`
	User           *User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Suggestion     *Suggestion `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}
