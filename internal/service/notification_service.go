package service

import (
	"context"
	"fmt"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

// NotificationService defines inbox operations.
type NotificationService interface {
	// List returns the whole inbox, newest first.
	List(ctx context.Context, userID string, unreadOnly bool) ([]domain.NotificationWithUser, error)
	MarkRead(ctx context.Context, userID, id string) error
	// MarkAllRead returns the number of notifications that changed.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates the inbox service.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]domain.NotificationWithUser, error) {
	rows, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NotificationWithUser, 0, len(rows))
	for _, n := range rows {
		out = append(out, n.WithFromUser())
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	if n.IsRead {
		return nil
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
