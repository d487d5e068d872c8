package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// SavedPlaceRepository defines saved place data operations.
type SavedPlaceRepository interface {
	Create(ctx context.Context, p *domain.SavedPlace) error
	ListByUser(ctx context.Context, userID string) ([]domain.SavedPlace, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
}

type gormSavedPlaceRepository struct {
	db *gorm.DB
}

// NewGormSavedPlaceRepository creates a gorm saved place repository.
func NewGormSavedPlaceRepository(db *gorm.DB) SavedPlaceRepository {
	return &gormSavedPlaceRepository{db: db}
}

func (r *gormSavedPlaceRepository) Create(ctx context.Context, p *domain.SavedPlace) error {
	return translate("create saved place", r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormSavedPlaceRepository) ListByUser(ctx context.Context, userID string) ([]domain.SavedPlace, error) {
	var out []domain.SavedPlace
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, translate("list saved places", err)
	}
	return out, nil
}

// Delete removes the place only when it belongs to userID.
func (r *gormSavedPlaceRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.SavedPlace{})
	if res.Error != nil {
		return 0, translate("delete saved place", res.Error)
	}
	return res.RowsAffected, nil
}
