package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// SaveRepository defines wishlist data operations.
type SaveRepository interface {
	Create(ctx context.Context, save *domain.Save) error
	Delete(ctx context.Context, userID, locationID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Save, error)
	Exists(ctx context.Context, userID, locationID string) (bool, error)
}

type gormSaveRepository struct {
	db *gorm.DB
}

// NewGormSaveRepository creates a gorm save repository.
func NewGormSaveRepository(db *gorm.DB) SaveRepository {
	return &gormSaveRepository{db: db}
}

func (r *gormSaveRepository) Create(ctx context.Context, save *domain.Save) error {
	return translate("create save", r.db.WithContext(ctx).Create(save).Error)
}

// Delete removes the (user, location) pair. A missing row is not an error.
func (r *gormSaveRepository) Delete(ctx context.Context, userID, locationID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Delete(&domain.Save{}).Error
	return translate("delete save", err)
}

// ListByUser returns saves newest first with their locations.
func (r *gormSaveRepository) ListByUser(ctx context.Context, userID string) ([]domain.Save, error) {
	var saves []domain.Save
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saves).Error
	if err != nil {
		return nil, translate("list saves", err)
	}
	return saves, nil
}

func (r *gormSaveRepository) Exists(ctx context.Context, userID, locationID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Save{}).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Count(&n).Error
	if err != nil {
		return false, translate("check save", err)
	}
	return n > 0, nil
}
