package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// SuggestionRepository defines suggestion data operations.
type SuggestionRepository interface {
	Create(ctx context.Context, s *domain.Suggestion) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.Suggestion, error)
	FindByID(ctx context.Context, id string) (*domain.Suggestion, error)
	// SetHelpful reports whether the stored flag changed.
	SetHelpful(ctx context.Context, id string, helpful bool) (*domain.Suggestion, bool, error)
	Rate(ctx context.Context, id string, rating int, feedback *string) (*domain.Suggestion, error)
}

type gormSuggestionRepository struct {
	db *gorm.DB
}

// NewGormSuggestionRepository creates a gorm suggestion repository.
func NewGormSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &gormSuggestionRepository{db: db}
}

// Create inserts s and bumps the parent request's suggestions_count in the
// same transaction.
func (r *gormSuggestionRepository) Create(ctx context.Context, s *domain.Suggestion) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.RecommendationRequest{}).
			Where("id = ?", s.RequestID).
			UpdateColumn("suggestions_count", gorm.Expr("suggestions_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate("create suggestion", err)
}

// ListByRequest returns the most helpful suggestions first.
func (r *gormSuggestionRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	err := r.db.WithContext(ctx).
		Preload("Suggester").
		Where("request_id = ?", requestID).
		Order("helpful_count DESC").Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list suggestions", err)
	}
	return out, nil
}

// FindByID loads a suggestion with its request and suggester.
func (r *gormSuggestionRepository) FindByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	var s domain.Suggestion
	err := r.db.WithContext(ctx).
		Preload("Request").Preload("Suggester").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, translate("find suggestion", err)
	}
	return &s, nil
}

func (r *gormSuggestionRepository) SetHelpful(ctx context.Context, id string, helpful bool) (*domain.Suggestion, bool, error) {
	res := setHelpful(r.db.WithContext(ctx), id, helpful)
	if res.Error != nil {
		return nil, false, translate("mark suggestion helpful", res.Error)
	}
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return s, res.RowsAffected > 0, nil
}

// setHelpful guards the count change on the current flag inside a single
// UPDATE, so two concurrent toggles to the same value count once.
func setHelpful(db *gorm.DB, id string, helpful bool) *gorm.DB {
	tx := db.Model(&domain.Suggestion{}).Where("id = ?", id)
	if helpful {
		return tx.Where("was_helpful IS NOT TRUE").Updates(map[string]any{
			"was_helpful":   true,
			"helpful_count": gorm.Expr("helpful_count + 1"),
		})
	}
	return tx.Where("was_helpful IS NOT FALSE").Updates(map[string]any{
		"was_helpful":   false,
		"helpful_count": gorm.Expr("CASE WHEN was_helpful THEN GREATEST(helpful_count - 1, 0) ELSE helpful_count END"),
	})
}

func (r *gormSuggestionRepository) Rate(ctx context.Context, id string, rating int, feedback *string) (*domain.Suggestion, error) {
	return r.update(ctx, "rate suggestion", id, map[string]any{
		"rating":            rating,
		"traveler_feedback": feedback,
		"was_tried":         true,
	})
}

func (r *gormSuggestionRepository) update(ctx context.Context, op, id string, updates map[string]any) (*domain.Suggestion, error) {
	res := r.db.WithContext(ctx).Model(&domain.Suggestion{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, translate(op, gorm.ErrRecordNotFound)
	}
	return r.FindByID(ctx, id)
}
