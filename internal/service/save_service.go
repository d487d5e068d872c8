package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

// SaveService defines wishlist operations.
type SaveService interface {
	Save(ctx context.Context, userID, locationID string) (*domain.Save, error)
	Unsave(ctx context.Context, userID, locationID string) error
	List(ctx context.Context, userID string) ([]domain.Save, error)
	// IsSaved reports false on any lookup failure.
	IsSaved(ctx context.Context, userID, locationID string) bool
}

type saveService struct {
	saves     repository.SaveRepository
	locations repository.LocationRepository
	logger    *log.Logger
}

// NewSaveService creates the wishlist service.
func NewSaveService(saves repository.SaveRepository, locations repository.LocationRepository, logger *log.Logger) SaveService {
	return &saveService{saves: saves, locations: locations, logger: logger}
}

func (s *saveService) Save(ctx context.Context, userID, locationID string) (*domain.Save, error) {
	loc, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	save := &domain.Save{UserID: userID, LocationID: locationID}
	if err := s.saves.Create(ctx, save); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("location already saved: %w", domain.ErrConflict)
		}
		return nil, err
	}
	save.Location = loc
	return save, nil
}

func (s *saveService) Unsave(ctx context.Context, userID, locationID string) error {
	return s.saves.Delete(ctx, userID, locationID)
}

func (s *saveService) List(ctx context.Context, userID string) ([]domain.Save, error) {
	saves, err := s.saves.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if saves == nil {
		saves = []domain.Save{}
	}
	return saves, nil
}

func (s *saveService) IsSaved(ctx context.Context, userID, locationID string) bool {
	ok, err := s.saves.Exists(ctx, userID, locationID)
	if err != nil {
		s.logger.Warn("save lookup", "user", userID, "location", locationID, "err", err)
		return false
	}
	return ok
}
