package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// ProfileCounts are the activity totals shown on a profile.
type ProfileCounts struct {
	Saved       int64 `json:"saved_count"`
	Lists       int64 `json:"list_count"`
	Suggestions int64 `json:"suggestion_count"`
}

// UserRepository defines the user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, updates map[string]any) (*domain.User, error)
	Counts(ctx context.Context, id string) (ProfileCounts, error)
	// ListInstagramExpiring returns connected users whose Instagram token
	// expires at or before cutoff.
	ListInstagramExpiring(ctx context.Context, cutoff time.Time) ([]domain.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a gorm user repository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "lower(email) = lower(?)", email).Error; err != nil {
		return nil, translate("find user by email", err)
	}
	return &user, nil
}

// Update applies a column map and returns the fresh row.
func (r *gormUserRepository) Update(ctx context.Context, id string, updates map[string]any) (*domain.User, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, translate("update user", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, translate("update user", gorm.ErrRecordNotFound)
		}
	}
	return r.FindByID(ctx, id)
}

func (r *gormUserRepository) Counts(ctx context.Context, id string) (ProfileCounts, error) {
	var c ProfileCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Save{}).Where("user_id = ?", id).Count(&c.Saved).Error; err != nil {
		return c, translate("count saves", err)
	}
	if err := db.Model(&domain.List{}).Where("user_id = ?", id).Count(&c.Lists).Error; err != nil {
		return c, translate("count lists", err)
	}
	if err := db.Model(&domain.Suggestion{}).Where("user_id = ?", id).Count(&c.Suggestions).Error; err != nil {
		return c, translate("count suggestions", err)
	}
	return c, nil
}

func (r *gormUserRepository) ListInstagramExpiring(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("instagram_access_token IS NOT NULL AND instagram_token_expires_at <= ?", cutoff).
		Order("instagram_token_expires_at").
		Find(&users).Error
	if err != nil {
		return nil, translate("list expiring instagram tokens", err)
	}
	return users, nil
}
