package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// MessageRepository defines direct message data operations.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListByRequest(ctx context.Context, requestID, viewerID string) ([]domain.Message, error)
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	MarkRead(ctx context.Context, id string) error
}

type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a gorm message repository.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create inserts m and loads its sender and receiver.
func (r *gormMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(m).Error; err != nil {
		return translate("create message", err)
	}
	err := db.Preload("Sender").Preload("Receiver").First(m, "id = ?", m.ID).Error
	return translate("load message", err)
}

// ListByRequest returns the thread oldest first, limited to messages the
// viewer sent or received.
func (r *gormMessageRepository) ListByRequest(ctx context.Context, requestID, viewerID string) ([]domain.Message, error) {
	var out []domain.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").Preload("Receiver").
		Where("request_id = ?", requestID).
		Where("sender_id = ? OR receiver_id = ?", viewerID, viewerID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list messages", err)
	}
	return out, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("find message", err)
	}
	return &m, nil
}

func (r *gormMessageRepository) MarkRead(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("id = ?", id).Update("is_read", true).Error
	return translate("mark message read", err)
}
