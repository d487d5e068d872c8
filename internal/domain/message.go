package domain

// Notification types.
const (
	NotifyNewSuggestion     = "new_suggestion"
	NotifyNewMessage        = "new_message"
	NotifySuggestionRated   = "suggestion_rated"
	NotifySuggestionHelpful = "suggestion_helpful"
)

// Message is a direct message between two users about a request.
type Message struct {
	Base
	RequestID  string                 `gorm:"type:uuid;not null;index" json:"request_id"`
	SenderID   string                 `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID string                 `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Content    string                 `gorm:"not null" json:"content"`
	IsRead     bool                   `gorm:"not null;default:false" json:"is_read"`
	Request    *RecommendationRequest `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
	Sender     *User                  `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver   *User                  `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
}

// MessageWithUsers embeds sender and receiver summaries.
type MessageWithUsers struct {
	Message
	SenderSummary   *UserSummary `json:"sender"`
	ReceiverSummary *UserSummary `json:"receiver"`
}

// WithUsers builds the response representation of m.
func (m Message) WithUsers() MessageWithUsers {
	return MessageWithUsers{Message: m, SenderSummary: m.Sender.Summary(), ReceiverSummary: m.Receiver.Summary()}
}

// Notification tells a user that something happened on their requests,
// suggestions or messages.
type Notification struct {
	Base
	UserID       string  `gorm:"type:uuid;not null;index" json:"user_id"`
	FromUserID   *string `gorm:"type:uuid" json:"from_user_id"`
	Type         string  `gorm:"not null" json:"type"`
	Title        string  `gorm:"not null" json:"title"`
	Body         *string `json:"body"`
	RequestID    *string `gorm:"type:uuid" json:"request_id"`
	SuggestionID *string `gorm:"type:uuid" json:"suggestion_id"`
	IsRead       bool    `gorm:"not null;default:false;index" json:"is_read"`
	User         *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	FromUser     *User   `gorm:"foreignKey:FromUserID;constraint:OnDelete:SET NULL" json:"-"`
}

// NotificationWithUser embeds the sender summary, if any.
type NotificationWithUser struct {
	Notification
	FromUserSummary *UserSummary `json:"from_user"`
}

// WithFromUser builds the response representation of n.
func (n Notification) WithFromUser() NotificationWithUser {
	return NotificationWithUser{Notification: n, FromUserSummary: n.FromUser.Summary()}
}
