package domain

import "github.com/lib/pq"

// Location is a place that can be searched, saved and collected into lists.
type Location struct {
	Base
	Name         string         `gorm:"not null;index" json:"name"`
	Description  *string        `json:"description"`
	Address      string         `gorm:"not null" json:"address"`
	City         string         `gorm:"not null;index" json:"city"`
	Latitude     float64        `gorm:"not null" json:"latitude"`
	Longitude    float64        `gorm:"not null" json:"longitude"`
	Vibes        pq.StringArray `gorm:"type:text[]" json:"vibes"`
	Category     string         `gorm:"not null;index" json:"category"`
	PriceLevel   *int           `json:"price_level"`
	Rating       *float64       `json:"rating"`
	Photos       pq.StringArray `gorm:"type:text[]" json:"photos"`
	Hours        *OpeningHours  `gorm:"type:jsonb;serializer:json" json:"hours"`
	IsExpertPick bool           `gorm:"not null;default:false" json:"is_expert_pick"`
}

// OpeningHours maps weekdays to their opening window.
type OpeningHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

// DayHours uses "HH:MM" strings, e.g. "09:00".
type DayHours struct {
	Open     string `json:"open"`
	Close    string `json:"close"`
	IsClosed bool   `json:"is_closed,omitempty"`
}

// LocationWithDistance is a search hit, with the distance in miles when the
// caller supplied a reference point.
type LocationWithDistance struct {
	Location
	Distance *float64 `gorm:"column:distance;->" json:"distance,omitempty"`
}
