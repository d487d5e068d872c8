package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// RequestFilter narrows the request feed.
type RequestFilter struct {
	City   string
	Status string
	UserID string
}

// RequestRepository defines recommendation request data operations.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.RecommendationRequest) error
	List(ctx context.Context, f RequestFilter, offset, limit int) ([]domain.RecommendationRequest, int64, error)
	FindByID(ctx context.Context, id string) (*domain.RecommendationRequest, error)
	UpdateOpen(ctx context.Context, id string, updates map[string]any) (*domain.RecommendationRequest, error)
	IncrementViews(ctx context.Context, id string) error
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

type gormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a gorm request repository.
func NewGormRequestRepository(db *gorm.DB) RequestRepository {
	return &gormRequestRepository{db: db}
}

func (r *gormRequestRepository) Create(ctx context.Context, req *domain.RecommendationRequest) error {
	return translate("create request", r.db.WithContext(ctx).Create(req).Error)
}

func filterRequests(f RequestFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f.City != "" {
			tx = tx.Where("city ILIKE ?", "%"+escapeLike(f.City)+"%")
		}
		if f.Status != "" {
			tx = tx.Where("status = ?", f.Status)
		}
		if f.UserID != "" {
			tx = tx.Where("user_id = ?", f.UserID)
		}
		return tx
	}
}

// List returns a newest-first page with requesters preloaded, plus the
// total match count.
func (r *gormRequestRepository) List(ctx context.Context, f RequestFilter, offset, limit int) ([]domain.RecommendationRequest, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.RecommendationRequest{}).Scopes(filterRequests(f)).Count(&total).Error; err != nil {
		return nil, 0, translate("count requests", err)
	}

	var reqs []domain.RecommendationRequest
	err := db.Scopes(filterRequests(f)).
		Preload("Requester").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, 0, translate("list requests", err)
	}
	return reqs, total, nil
}

func (r *gormRequestRepository) FindByID(ctx context.Context, id string) (*domain.RecommendationRequest, error) {
	var req domain.RecommendationRequest
	if err := r.db.WithContext(ctx).Preload("Requester").First(&req, "id = ?", id).Error; err != nil {
		return nil, translate("find request", err)
	}
	return &req, nil
}

// UpdateOpen applies updates only while the request is still open.
func (r *gormRequestRepository) UpdateOpen(ctx context.Context, id string, updates map[string]any) (*domain.RecommendationRequest, error) {
	res := r.db.WithContext(ctx).Model(&domain.RecommendationRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusOpen).
		Updates(updates)
	if res.Error != nil {
		return nil, translate("update request", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, translate("update request", gorm.ErrRecordNotFound)
	}
	return r.FindByID(ctx, id)
}

func (r *gormRequestRepository) IncrementViews(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&domain.RecommendationRequest{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	return translate("increment views", err)
}

// CloseExpired closes open requests whose expiry is at or before now.
func (r *gormRequestRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.RecommendationRequest{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.StatusOpen, now).
		Update("status", domain.StatusClosed)
	if res.Error != nil {
		return 0, translate("close expired requests", res.Error)
	}
	return res.RowsAffected, nil
}
