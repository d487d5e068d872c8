package service

import (
	"context"
	"fmt"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

// SavedPlaceService defines operations on places kept from suggestions.
type SavedPlaceService interface {
	SaveFromSuggestion(ctx context.Context, userID, suggestionID string, notes *string) (*domain.SavedPlace, error)
	List(ctx context.Context, userID string) ([]domain.SavedPlace, error)
	Remove(ctx context.Context, userID, id string) error
}

type savedPlaceService struct {
	places      repository.SavedPlaceRepository
	suggestions repository.SuggestionRepository
}

// NewSavedPlaceService creates the saved place service.
func NewSavedPlaceService(places repository.SavedPlaceRepository, suggestions repository.SuggestionRepository) SavedPlaceService {
	return &savedPlaceService{places: places, suggestions: suggestions}
}

// SaveFromSuggestion copies the suggestion's place details into the user's
// collection, so the entry survives edits or deletion of the suggestion.
func (s *savedPlaceService) SaveFromSuggestion(ctx context.Context, userID, suggestionID string, notes *string) (*domain.SavedPlace, error) {
	sug, err := s.suggestions.FindByID(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	place := &domain.SavedPlace{
		UserID:         userID,
		SuggestionID:   &sug.ID,
		PlaceName:      sug.PlaceName,
		PlaceAddress:   sug.PlaceAddress,
		PlaceLatitude:  sug.PlaceLatitude,
		PlaceLongitude: sug.PlaceLongitude,
		GooglePlaceID:  sug.GooglePlaceID,
		Notes:          trimmed(notes),
	}
	if err := s.places.Create(ctx, place); err != nil {
		return nil, err
	}
	return place, nil
}

func (s *savedPlaceService) List(ctx context.Context, userID string) ([]domain.SavedPlace, error) {
	places, err := s.places.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []domain.SavedPlace{}
	}
	return places, nil
}

func (s *savedPlaceService) Remove(ctx context.Context, userID, id string) error {
	n, err := s.places.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("saved place %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
