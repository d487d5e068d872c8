package domain

import (
	"time"

	"github.com/lib/pq"
)

// Request status values. A request leaves open exactly once.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusClosed   = "closed"
)

// RecommendationRequest is a traveler asking locals for places in a city.
type RecommendationRequest struct {
	Base
	UserID             string         `gorm:"type:uuid;not null;index" json:"user_id"`
	City               string         `gorm:"not null;index" json:"city"`
	Area               *string        `json:"area"`
	Title              string         `gorm:"not null" json:"title"`
	Description        string         `gorm:"not null" json:"description"`
	VibePreferences    pq.StringArray `gorm:"type:text[]" json:"vibe_preferences"`
	PlaceType          *string        `json:"place_type"`
	BudgetLevel        int            `gorm:"not null;default:2" json:"budget_level"`
	TimeConstraints    *string        `json:"time_constraints"`
	AccessibilityNeeds *string        `json:"accessibility_needs"`
	GroupSize          int            `gorm:"not null;default:1" json:"group_size"`
	Status             string         `gorm:"not null;default:'open';index" json:"status"`
	SuggestionsCount   int            `gorm:"not null;default:0" json:"suggestions_count"`
	ViewsCount         int            `gorm:"not null;default:0" json:"views_count"`
	ImageURL           *string        `json:"image_url"`
	ExpiresAt          *time.Time     `gorm:"index" json:"expires_at"`
	Requester          *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name used by the hosted schema.
func (RecommendationRequest) TableName() string {
	return "recommendation_requests"
}

// IsOpen reports whether the request still accepts suggestions and edits.
func (r *RecommendationRequest) IsOpen() bool {
	return r.Status == StatusOpen
}

// RequestWithUser is a feed row: the request plus its requester summary.
type RequestWithUser struct {
	RecommendationRequest
	RequesterSummary *UserSummary `json:"requester"`
}

// WithRequester builds the feed representation of r.
func (r RecommendationRequest) WithRequester() RequestWithUser {
	return RequestWithUser{RecommendationRequest: r, RequesterSummary: r.Requester.Summary()}
}
