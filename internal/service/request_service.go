package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lib/pq"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

const (
	defaultBudget    = 2
	defaultGroupSize = 1
	maxTitleLength   = 200
	maxDescLength    = 2000
)

// CreateRequestRequest holds the new recommendation request form.
type CreateRequestRequest struct {
	City               string     `json:"city"`
	Area               *string    `json:"area"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	VibePreferences    []string   `json:"vibe_preferences"`
	PlaceType          *string    `json:"place_type"`
	BudgetLevel        *int       `json:"budget_level"`
	TimeConstraints    *string    `json:"time_constraints"`
	AccessibilityNeeds *string    `json:"accessibility_needs"`
	GroupSize          *int       `json:"group_size"`
	ImageURL           *string    `json:"image_url"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

// UpdateRequestRequest is a partial update of an open request.
type UpdateRequestRequest struct {
	City               *string    `json:"city"`
	Area               *string    `json:"area"`
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	VibePreferences    *[]string  `json:"vibe_preferences"`
	PlaceType          *string    `json:"place_type"`
	BudgetLevel        *int       `json:"budget_level"`
	TimeConstraints    *string    `json:"time_constraints"`
	AccessibilityNeeds *string    `json:"accessibility_needs"`
	GroupSize          *int       `json:"group_size"`
	ImageURL           *string    `json:"image_url"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

// ListRequestsParams filters and pages the request feed.
type ListRequestsParams struct {
	City   string
	Status string
	UserID string
	Page   int
	Limit  int
}

// RequestList is one page of the request feed.
type RequestList struct {
	Requests []domain.RequestWithUser `json:"requests"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	HasMore  bool                     `json:"has_more"`
}

// RequestService defines recommendation request operations.
type RequestService interface {
	Create(ctx context.Context, userID string, req CreateRequestRequest) (*domain.RecommendationRequest, error)
	List(ctx context.Context, p ListRequestsParams) (*RequestList, error)
	// Get counts a view when viewerID is not the requester.
	Get(ctx context.Context, viewerID, id string) (*domain.RequestWithUser, error)
	Update(ctx context.Context, userID, id string, req UpdateRequestRequest) (*domain.RecommendationRequest, error)
	Close(ctx context.Context, userID, id, status string) (*domain.RecommendationRequest, error)
}

type requestService struct {
	repo    repository.RequestRepository
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRequestService creates the request service.
func NewRequestService(repo repository.RequestRepository, logger *log.Logger, m *metrics.Metrics) RequestService {
	return &requestService{repo: repo, logger: logger, metrics: m, now: time.Now}
}

func (s *requestService) Create(ctx context.Context, userID string, req CreateRequestRequest) (*domain.RecommendationRequest, error) {
	var verr domain.ValidationError
	city := strings.TrimSpace(req.City)
	title := strings.TrimSpace(req.Title)
	desc := strings.TrimSpace(req.Description)
	if city == "" {
		verr.Add("city", "is required")
	}
	checkText(&verr, "title", title, maxTitleLength, true)
	checkText(&verr, "description", desc, maxDescLength, true)

	budget := defaultBudget
	if req.BudgetLevel != nil {
		budget = *req.BudgetLevel
	}
	group := defaultGroupSize
	if req.GroupSize != nil {
		group = *req.GroupSize
	}
	checkBudget(&verr, budget)
	checkGroup(&verr, group)
	vibes := checkVibes(&verr, req.VibePreferences)
	placeType := checkPlaceType(&verr, req.PlaceType)
	s.checkExpiry(&verr, req.ExpiresAt)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r := &domain.RecommendationRequest{
		UserID:             userID,
		City:               city,
		Area:               trimmed(req.Area),
		Title:              title,
		Description:        desc,
		VibePreferences:    vibes,
		PlaceType:          placeType,
		BudgetLevel:        budget,
		TimeConstraints:    trimmed(req.TimeConstraints),
		AccessibilityNeeds: trimmed(req.AccessibilityNeeds),
		GroupSize:          group,
		Status:             domain.StatusOpen,
		ImageURL:           trimmed(req.ImageURL),
		ExpiresAt:          req.ExpiresAt,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.metrics.Event("request_created")
	return r, nil
}

func (s *requestService) List(ctx context.Context, p ListRequestsParams) (*RequestList, error) {
	switch p.Status {
	case "", domain.StatusOpen, domain.StatusResolved, domain.StatusClosed:
	default:
		return nil, domain.NewValidationError("status", "must be one of open, resolved, closed")
	}
	page, limit, offset := normalizePage(p.Page, p.Limit)

	rows, total, err := s.repo.List(ctx, repository.RequestFilter{
		City:   strings.TrimSpace(p.City),
		Status: p.Status,
		UserID: p.UserID,
	}, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RequestWithUser, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.WithRequester())
	}
	return &RequestList{Requests: out, Total: total, Page: page, HasMore: hasMore(offset, limit, total)}, nil
}

func (s *requestService) Get(ctx context.Context, viewerID, id string) (*domain.RequestWithUser, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != r.UserID {
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			s.logger.Warn("count request view", "request", id, "err", err)
		} else {
			r.ViewsCount++
		}
	}
	out := r.WithRequester()
	return &out, nil
}

// ownedOpen loads id and checks that userID owns it and it is still open.
func (s *requestService) ownedOpen(ctx context.Context, userID, id string) (*domain.RecommendationRequest, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, fmt.Errorf("only the requester can change this request: %w", domain.ErrForbidden)
	}
	if !r.IsOpen() {
		return nil, fmt.Errorf("request is %s: %w", r.Status, domain.ErrConflict)
	}
	return r, nil
}

func (s *requestService) Update(ctx context.Context, userID, id string, req UpdateRequestRequest) (*domain.RecommendationRequest, error) {
	if _, err := s.ownedOpen(ctx, userID, id); err != nil {
		return nil, err
	}

	var verr domain.ValidationError
	updates := map[string]any{}
	if req.City != nil {
		city := strings.TrimSpace(*req.City)
		if city == "" {
			verr.Add("city", "is required")
		}
		updates["city"] = city
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		checkText(&verr, "title", title, maxTitleLength, true)
		updates["title"] = title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		checkText(&verr, "description", desc, maxDescLength, true)
		updates["description"] = desc
	}
	if req.BudgetLevel != nil {
		checkBudget(&verr, *req.BudgetLevel)
		updates["budget_level"] = *req.BudgetLevel
	}
	if req.GroupSize != nil {
		checkGroup(&verr, *req.GroupSize)
		updates["group_size"] = *req.GroupSize
	}
	if req.VibePreferences != nil {
		updates["vibe_preferences"] = checkVibes(&verr, *req.VibePreferences)
	}
	if req.PlaceType != nil {
		updates["place_type"] = checkPlaceType(&verr, req.PlaceType)
	}
	if req.ExpiresAt != nil {
		s.checkExpiry(&verr, req.ExpiresAt)
		updates["expires_at"] = *req.ExpiresAt
	}
	for col, v := range map[string]*string{
		"area":                req.Area,
		"time_constraints":    req.TimeConstraints,
		"accessibility_needs": req.AccessibilityNeeds,
		"image_url":           req.ImageURL,
	} {
		if v != nil {
			updates[col] = trimmed(v)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.UpdateOpen(ctx, id, updates)
}

func (s *requestService) Close(ctx context.Context, userID, id, status string) (*domain.RecommendationRequest, error) {
	if status == "" {
		status = domain.StatusClosed
	}
	if status != domain.StatusResolved && status != domain.StatusClosed {
		return nil, domain.NewValidationError("status", "must be resolved or closed")
	}
	if _, err := s.ownedOpen(ctx, userID, id); err != nil {
		return nil, err
	}
	r, err := s.repo.UpdateOpen(ctx, id, map[string]any{"status": status})
	if err != nil {
		return nil, err
	}
	s.metrics.Event("request_" + status)
	return r, nil
}

func checkText(verr *domain.ValidationError, field, v string, max int, required bool) {
	switch {
	case v == "" && required:
		verr.Add(field, "is required")
	case len([]rune(v)) > max:
		verr.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func checkBudget(verr *domain.ValidationError, v int) {
	if v < 1 || v > 4 {
		verr.Add("budget_level", "must be between 1 and 4")
	}
}

func checkGroup(verr *domain.ValidationError, v int) {
	if v < 1 {
		verr.Add("group_size", "must be at least 1")
	}
}

func checkVibes(verr *domain.ValidationError, in []string) pq.StringArray {
	vibes, invalid := domain.NormalizeVibes(in)
	if len(invalid) > 0 {
		verr.Add("vibe_preferences", "unknown vibe: "+strings.Join(invalid, ", "))
	}
	return vibes
}

func checkPlaceType(verr *domain.ValidationError, p *string) *string {
	pt := trimmed(p)
	if pt != nil && !domain.IsValidPlaceType(*pt) {
		verr.Add("place_type", "unknown place type")
	}
	return pt
}

func (s *requestService) checkExpiry(verr *domain.ValidationError, at *time.Time) {
	if at != nil && !at.After(s.now()) {
		verr.Add("expires_at", "must be in the future")
	}
}
