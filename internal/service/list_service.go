package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

// CreateListRequest holds the new list form.
type CreateListRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Privacy     string  `json:"privacy"`
}

// ListService defines collection operations.
type ListService interface {
	Create(ctx context.Context, userID string, req CreateListRequest) (*domain.List, error)
	// ListForUser returns ownerID's lists; other viewers only see public ones.
	ListForUser(ctx context.Context, ownerID, viewerID string) ([]domain.List, error)
	Get(ctx context.Context, viewerID, listID string) (*domain.List, error)
	AddItem(ctx context.Context, userID, listID, locationID string) (*domain.ListItem, error)
	RemoveItem(ctx context.Context, userID, listID, locationID string) error
}

type listService struct {
	lists     repository.ListRepository
	locations repository.LocationRepository
}

// NewListService creates the collection service.
func NewListService(lists repository.ListRepository, locations repository.LocationRepository) ListService {
	return &listService{lists: lists, locations: locations}
}

func (s *listService) Create(ctx context.Context, userID string, req CreateListRequest) (*domain.List, error) {
	name := strings.TrimSpace(req.Name)
	privacy := req.Privacy
	if privacy == "" {
		privacy = domain.PrivacyPrivate
	}

	var verr domain.ValidationError
	if name == "" {
		verr.Add("name", "is required")
	}
	if !domain.IsValidPrivacy(privacy) {
		verr.Add("privacy", "must be one of private, public, shared")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	list := &domain.List{UserID: userID, Name: name, Description: trimmed(req.Description), Privacy: privacy}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *listService) ListForUser(ctx context.Context, ownerID, viewerID string) ([]domain.List, error) {
	lists, err := s.lists.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.List, 0, len(lists))
	for _, l := range lists {
		if ownerID == viewerID || l.Privacy == domain.PrivacyPublic {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *listService) Get(ctx context.Context, viewerID, listID string) (*domain.List, error) {
	list, err := s.lists.FindByID(ctx, listID, true)
	if err != nil {
		return nil, err
	}
	if list.UserID != viewerID && list.Privacy == domain.PrivacyPrivate {
		// Private lists are indistinguishable from missing ones.
		return nil, fmt.Errorf("list %s: %w", listID, domain.ErrNotFound)
	}
	return list, nil
}

func (s *listService) owned(ctx context.Context, userID, listID string) error {
	list, err := s.lists.FindByID(ctx, listID, false)
	if err != nil {
		return err
	}
	if list.UserID != userID {
		return fmt.Errorf("only the list owner can change its items: %w", domain.ErrForbidden)
	}
	return nil
}

func (s *listService) AddItem(ctx context.Context, userID, listID, locationID string) (*domain.ListItem, error) {
	if err := s.owned(ctx, userID, listID); err != nil {
		return nil, err
	}
	loc, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	item := &domain.ListItem{ListID: listID, LocationID: locationID, AddedBy: userID}
	if err := s.lists.AddItem(ctx, item); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("location already in list: %w", domain.ErrConflict)
		}
		return nil, err
	}
	item.Location = loc
	return item, nil
}

func (s *listService) RemoveItem(ctx context.Context, userID, listID, locationID string) error {
	if err := s.owned(ctx, userID, listID); err != nil {
		return err
	}
	return s.lists.RemoveItem(ctx, listID, locationID)
}
