package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/realtime"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

const maxMessageLength = 2000

// SendMessageRequest holds a direct message.
type SendMessageRequest struct {
	RequestID  string `json:"request_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// MessageService defines direct message operations.
type MessageService interface {
	Send(ctx context.Context, senderID string, req SendMessageRequest) (*domain.MessageWithUsers, error)
	// ListForRequest returns the viewer's side of a request thread, oldest first.
	ListForRequest(ctx context.Context, viewerID, requestID string) ([]domain.MessageWithUsers, error)
	MarkRead(ctx context.Context, userID, id string) error
}

type messageService struct {
	messages repository.MessageRepository
	requests repository.RequestRepository
	users    repository.UserRepository
	notifier *Notifier
	metrics  *metrics.Metrics
}

// NewMessageService creates the messaging service.
func NewMessageService(
	messages repository.MessageRepository,
	requests repository.RequestRepository,
	users repository.UserRepository,
	notifier *Notifier,
	m *metrics.Metrics,
) MessageService {
	return &messageService{messages: messages, requests: requests, users: users, notifier: notifier, metrics: m}
}

func (s *messageService) Send(ctx context.Context, senderID string, req SendMessageRequest) (*domain.MessageWithUsers, error) {
	var verr domain.ValidationError
	content := strings.TrimSpace(req.Content)
	checkText(&verr, "content", content, maxMessageLength, true)
	if req.RequestID == "" {
		verr.Add("request_id", "is required")
	}
	switch req.ReceiverID {
	case "":
		verr.Add("receiver_id", "is required")
	case senderID:
		verr.Add("receiver_id", "cannot message yourself")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r, err := s.requests.FindByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("receiver_id", "unknown user")
		}
		return nil, err
	}

	msg := &domain.Message{
		RequestID:  r.ID,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.metrics.Event("message_sent")

	out := msg.WithUsers()
	s.notifier.publish(msg.ReceiverID, realtime.EventMessage, out)

	preview := content
	if runes := []rune(preview); len(runes) > 120 {
		preview = string(runes[:120]) + "…"
	}
	s.notifier.Notify(ctx, &domain.Notification{
		UserID:    msg.ReceiverID,
		Type:      domain.NotifyNewMessage,
		Title:     "New message about " + r.Title,
		Body:      &preview,
		RequestID: &r.ID,
	}, actorOrID(msg.Sender, senderID))
	return &out, nil
}

func (s *messageService) ListForRequest(ctx context.Context, viewerID, requestID string) ([]domain.MessageWithUsers, error) {
	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		return nil, err
	}
	rows, err := s.messages.ListByRequest(ctx, requestID, viewerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MessageWithUsers, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.WithUsers())
	}
	return out, nil
}

func (s *messageService) MarkRead(ctx context.Context, userID, id string) error {
	msg, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.ReceiverID != userID {
		return fmt.Errorf("only the receiver can mark a message read: %w", domain.ErrForbidden)
	}
	if msg.IsRead {
		return nil
	}
	return s.messages.MarkRead(ctx, id)
}
