// Package service holds the business rules: input validation, ownership
// checks and the side effects (notifications, realtime pushes) of each
// operation. Services return domain errors; the HTTP layer maps them.
package service

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/realtime"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

// Paging bounds shared by every paginated listing.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Publisher pushes realtime events to a user's open connections.
type Publisher interface {
	SendToUser(userID, event string, data any)
}

type noopPublisher struct{}

func (noopPublisher) SendToUser(string, string, any) {}

// normalizePage clamps page and limit and returns the row offset.
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, (page - 1) * limit
}

func hasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}

// trimmed returns nil for nil or blank input, the trimmed value otherwise.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// actorOrID returns u, or a bare user carrying only id when u is nil, so
// notifications still record who acted.
func actorOrID(u *domain.User, id string) *domain.User {
	if u != nil {
		return u
	}
	return &domain.User{Base: domain.Base{ID: id}}
}

// Notifier stores notifications and pushes them to the recipient. Failures
// are logged and never fail the operation that triggered them.
type Notifier struct {
	repo    repository.NotificationRepository
	pub     Publisher
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewNotifier creates a Notifier. pub may be nil.
func NewNotifier(repo repository.NotificationRepository, pub Publisher, logger *log.Logger, m *metrics.Metrics) *Notifier {
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Notifier{repo: repo, pub: pub, logger: logger, metrics: m}
}

// Notify records n for n.UserID. from is the acting user, if known.
func (n *Notifier) Notify(ctx context.Context, notif *domain.Notification, from *domain.User) {
	if from != nil && notif.FromUserID == nil {
		notif.FromUserID = &from.ID
	}
	if notif.FromUserID != nil && *notif.FromUserID == notif.UserID {
		return
	}
	if err := n.repo.Create(ctx, notif); err != nil {
		n.logger.Error("create notification", "type", notif.Type, "user", notif.UserID, "err", err)
		return
	}
	n.metrics.Event("notification_" + notif.Type)
	notif.FromUser = from
	n.pub.SendToUser(notif.UserID, realtime.EventNotification, notif.WithFromUser())
}

func (n *Notifier) publish(userID, event string, data any) {
	n.pub.SendToUser(userID, event, data)
}
