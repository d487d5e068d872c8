package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// NotificationRepository defines notification data operations.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a gorm notification repository.
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return translate("create notification", r.db.WithContext(ctx).Create(n).Error)
}

func (r *gormNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	tx := r.db.WithContext(ctx).Preload("FromUser").Where("user_id = ?", userID)
	if unreadOnly {
		tx = tx.Where("is_read = ?", false)
	}
	var out []domain.Notification
	if err := tx.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate("list notifications", err)
	}
	return out, nil
}

func (r *gormNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, translate("find notification", err)
	}
	return &n, nil
}

func (r *gormNotificationRepository) MarkRead(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Update("is_read", true).Error
	return translate("mark notification read", err)
}

// MarkAllRead touches only the user's unread rows and reports how many.
func (r *gormNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, translate("mark all notifications read", res.Error)
	}
	return res.RowsAffected, nil
}
