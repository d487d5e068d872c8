package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

// CreateSuggestionRequest holds a local's suggestion form.
type CreateSuggestionRequest struct {
	PlaceName      string   `json:"place_name"`
	PlaceAddress   *string  `json:"place_address"`
	PlaceLatitude  *float64 `json:"place_latitude"`
	PlaceLongitude *float64 `json:"place_longitude"`
	GooglePlaceID  *string  `json:"google_place_id"`
	Reason         string   `json:"reason"`
	Tips           *string  `json:"tips"`
	Photos         []string `json:"photos"`
}

// RateSuggestionRequest holds the requester's rating.
type RateSuggestionRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback"`
}

// SuggestionService defines suggestion operations.
type SuggestionService interface {
	Create(ctx context.Context, userID, requestID string, req CreateSuggestionRequest) (*domain.SuggestionWithUser, error)
	ListForRequest(ctx context.Context, requestID string) ([]domain.SuggestionWithUser, error)
	MarkHelpful(ctx context.Context, userID, id string, helpful bool) (*domain.Suggestion, error)
	Rate(ctx context.Context, userID, id string, req RateSuggestionRequest) (*domain.Suggestion, error)
}

type suggestionService struct {
	suggestions repository.SuggestionRepository
	requests    repository.RequestRepository
	users       repository.UserRepository
	notifier    *Notifier
	logger      *log.Logger
	metrics     *metrics.Metrics
}

// NewSuggestionService creates the suggestion service.
func NewSuggestionService(
	suggestions repository.SuggestionRepository,
	requests repository.RequestRepository,
	users repository.UserRepository,
	notifier *Notifier,
	logger *log.Logger,
	m *metrics.Metrics,
) SuggestionService {
	return &suggestionService{
		suggestions: suggestions,
		requests:    requests,
		users:       users,
		notifier:    notifier,
		logger:      logger,
		metrics:     m,
	}
}

func (s *suggestionService) Create(ctx context.Context, userID, requestID string, req CreateSuggestionRequest) (*domain.SuggestionWithUser, error) {
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !r.IsOpen() {
		return nil, fmt.Errorf("request is %s: %w", r.Status, domain.ErrConflict)
	}
	if r.UserID == userID {
		return nil, fmt.Errorf("cannot suggest on your own request: %w", domain.ErrForbidden)
	}

	var verr domain.ValidationError
	name := strings.TrimSpace(req.PlaceName)
	reason := strings.TrimSpace(req.Reason)
	checkText(&verr, "place_name", name, 200, true)
	checkText(&verr, "reason", reason, maxDescLength, true)
	if (req.PlaceLatitude == nil) != (req.PlaceLongitude == nil) {
		verr.Add("place_latitude", "latitude and longitude must be given together")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	sug := &domain.Suggestion{
		RequestID:      requestID,
		UserID:         userID,
		PlaceName:      name,
		PlaceAddress:   trimmed(req.PlaceAddress),
		PlaceLatitude:  req.PlaceLatitude,
		PlaceLongitude: req.PlaceLongitude,
		GooglePlaceID:  trimmed(req.GooglePlaceID),
		Reason:         reason,
		Tips:           trimmed(req.Tips),
		Photos:         cleanList(req.Photos),
	}
	if err := s.suggestions.Create(ctx, sug); err != nil {
		return nil, err
	}
	s.metrics.Event("suggestion_created")

	suggester, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("load suggester", "user", userID, "err", err)
	}
	sug.Suggester = suggester

	body := name
	s.notifier.Notify(ctx, &domain.Notification{
		UserID:       r.UserID,
		Type:         domain.NotifyNewSuggestion,
		Title:        "New suggestion for " + r.Title,
		Body:         &body,
		RequestID:    &r.ID,
		SuggestionID: &sug.ID,
	}, actorOrID(suggester, userID))

	out := sug.WithSuggester()
	return &out, nil
}

func (s *suggestionService) ListForRequest(ctx context.Context, requestID string) ([]domain.SuggestionWithUser, error) {
	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		return nil, err
	}
	rows, err := s.suggestions.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SuggestionWithUser, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.WithSuggester())
	}
	return out, nil
}

// forRequester loads suggestion id and checks that userID owns its request.
func (s *suggestionService) forRequester(ctx context.Context, userID, id string) (*domain.Suggestion, error) {
	sug, err := s.suggestions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sug.Request == nil || sug.Request.UserID != userID {
		return nil, fmt.Errorf("only the requester can judge suggestions: %w", domain.ErrForbidden)
	}
	return sug, nil
}

// MarkHelpful sets was_helpful and moves helpful_count by one when the flag
// turns on, or back when a true flag turns off. The store decides whether
// the flag changed, so the outcome does not depend on the earlier read.
func (s *suggestionService) MarkHelpful(ctx context.Context, userID, id string, helpful bool) (*domain.Suggestion, error) {
	sug, err := s.forRequester(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, changed, err := s.suggestions.SetHelpful(ctx, id, helpful)
	if err != nil {
		return nil, err
	}
	if helpful && changed {
		s.notifier.Notify(ctx, &domain.Notification{
			UserID:       sug.UserID,
			Type:         domain.NotifySuggestionHelpful,
			Title:        "Your suggestion was helpful",
			Body:         &sug.PlaceName,
			RequestID:    &sug.RequestID,
			SuggestionID: &sug.ID,
		}, s.actor(ctx, userID))
	}
	return updated, nil
}

func (s *suggestionService) Rate(ctx context.Context, userID, id string, req RateSuggestionRequest) (*domain.Suggestion, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, domain.NewValidationError("rating", "must be between 1 and 5")
	}
	feedback := trimmed(req.Feedback)
	if feedback != nil && len([]rune(*feedback)) > maxDescLength {
		return nil, domain.NewValidationError("feedback", fmt.Sprintf("must be at most %d characters", maxDescLength))
	}
	sug, err := s.forRequester(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.suggestions.Rate(ctx, id, req.Rating, feedback)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("%s was rated %d/5", sug.PlaceName, req.Rating)
	s.notifier.Notify(ctx, &domain.Notification{
		UserID:       sug.UserID,
		Type:         domain.NotifySuggestionRated,
		Title:        "Your suggestion was rated",
		Body:         &body,
		RequestID:    &sug.RequestID,
		SuggestionID: &sug.ID,
	}, s.actor(ctx, userID))
	return updated, nil
}

func (s *suggestionService) actor(ctx context.Context, userID string) *domain.User {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("load acting user", "user", userID, "err", err)
	}
	return actorOrID(u, userID)
}
