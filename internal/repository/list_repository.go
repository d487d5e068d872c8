package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// ListRepository defines collection data operations.
type ListRepository interface {
	Create(ctx context.Context, list *domain.List) error
	ListByUser(ctx context.Context, userID string) ([]domain.List, error)
	FindByID(ctx context.Context, id string, withItems bool) (*domain.List, error)
	AddItem(ctx context.Context, item *domain.ListItem) error
	RemoveItem(ctx context.Context, listID, locationID string) error
}

type gormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a gorm list repository.
func NewGormListRepository(db *gorm.DB) ListRepository {
	return &gormListRepository{db: db}
}

func (r *gormListRepository) Create(ctx context.Context, list *domain.List) error {
	return translate("create list", r.db.WithContext(ctx).Create(list).Error)
}

func (r *gormListRepository) ListByUser(ctx context.Context, userID string) ([]domain.List, error) {
	var lists []domain.List
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lists).Error
	if err != nil {
		return nil, translate("list lists", err)
	}
	return lists, nil
}

func (r *gormListRepository) FindByID(ctx context.Context, id string, withItems bool) (*domain.List, error) {
	tx := r.db.WithContext(ctx)
	if withItems {
		tx = tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("list_items.created_at DESC")
		}).Preload("Items.Location")
	}
	var list domain.List
	if err := tx.First(&list, "id = ?", id).Error; err != nil {
		return nil, translate("find list", err)
	}
	return &list, nil
}

func (r *gormListRepository) AddItem(ctx context.Context, item *domain.ListItem) error {
	return translate("add list item", r.db.WithContext(ctx).Create(item).Error)
}

func (r *gormListRepository) RemoveItem(ctx context.Context, listID, locationID string) error {
	err := r.db.WithContext(ctx).
		Where("list_id = ? AND location_id = ?", listID, locationID).
		Delete(&domain.ListItem{}).Error
	return translate("remove list item", err)
}
