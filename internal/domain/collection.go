package domain

// List privacy values.
const (
	PrivacyPrivate = "private"
	PrivacyPublic  = "public"
	PrivacyShared  = "shared"
)

// Save is a wishlist entry.
type Save struct {
	Base
	UserID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_saves_user_location" json:"user_id"`
	LocationID string    `gorm:"type:uuid;not null;uniqueIndex:idx_saves_user_location" json:"location_id"`
	Location   *Location `gorm:"constraint:OnDelete:CASCADE" json:"location,omitempty"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// List is a named collection of locations.
type List struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string     `gorm:"not null" json:"name"`
	Description *string    `json:"description"`
	Privacy     string     `gorm:"not null;default:'private'" json:"privacy"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Items       []ListItem `json:"items,omitempty"`
}

// ListItem places a location in a list.
type ListItem struct {
	Base
	ListID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_list_items_list_location" json:"list_id"`
	LocationID string    `gorm:"type:uuid;not null;uniqueIndex:idx_list_items_list_location" json:"location_id"`
	AddedBy    string    `gorm:"type:uuid;not null" json:"added_by"`
	List       *List     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Location   *Location `gorm:"constraint:OnDelete:CASCADE" json:"location,omitempty"`
}

// IsValidPrivacy reports whether p is one of the list privacy values.
func IsValidPrivacy(p string) bool {
	switch p {
	case PrivacyPrivate, PrivacyPublic, PrivacyShared:
		return true
	}
	return false
}
