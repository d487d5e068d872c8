package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/buyareco-backend/internal/cache"
	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

const (
	autocompleteMinLength = 2
	autocompleteFetch     = 10
	autocompleteMax       = 8
	recommendDefault      = 20
)

// Autocomplete entry types.
const (
	SuggestLocation = "location"
	SuggestCity     = "city"
)

// SearchParams is a location search with paging.
type SearchParams struct {
	Filter repository.LocationFilter
	Page   int
	Limit  int
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Locations []domain.LocationWithDistance `json:"locations"`
	Total     int64                         `json:"total"`
	Page      int                           `json:"page"`
	HasMore   bool                          `json:"has_more"`
}

// AutocompleteSuggestion is one type-ahead entry. City entries use the
// city name as their ID.
type AutocompleteSuggestion struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
}

const citySubtitle = "City"

// LocationService defines location discovery operations.
type LocationService interface {
	Search(ctx context.Context, p SearchParams) (*SearchResult, error)
	Get(ctx context.Context, id string) (*domain.Location, error)
	// Autocomplete never fails; lookup errors yield an empty slice.
	Autocomplete(ctx context.Context, q string) []AutocompleteSuggestion
	Recommend(ctx context.Context, vibes []string, city string, limit int) ([]domain.Location, error)
	Create(ctx context.Context, loc *domain.Location) error
}

type locationService struct {
	repo    repository.LocationRepository
	cache   cache.Cache
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewLocationService creates the discovery service. c may be nil.
func NewLocationService(repo repository.LocationRepository, c cache.Cache, logger *log.Logger, m *metrics.Metrics) LocationService {
	if c == nil {
		c = cache.Noop{}
	}
	return &locationService{repo: repo, cache: c, logger: logger, metrics: m}
}

func validateFilter(f *repository.LocationFilter) error {
	var verr domain.ValidationError
	if f.Category != "" && !domain.IsValidCategory(f.Category) {
		verr.Add("category", "unknown category")
	}
	for _, p := range f.PriceLevels {
		if p < 1 || p > 4 {
			verr.Add("price_level", "must be between 1 and 4")
		}
	}
	if f.RatingMin != nil && (*f.RatingMin < 0 || *f.RatingMin > 5) {
		verr.Add("rating_min", "must be between 0 and 5")
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		verr.Add("latitude", "latitude and longitude must be given together")
	}
	if f.Latitude != nil && (*f.Latitude < -90 || *f.Latitude > 90) {
		verr.Add("latitude", "must be between -90 and 90")
	}
	if f.Longitude != nil && (*f.Longitude < -180 || *f.Longitude > 180) {
		verr.Add("longitude", "must be between -180 and 180")
	}
	if f.DistanceMax != nil {
		if *f.DistanceMax <= 0 {
			verr.Add("distance_max", "must be positive")
		} else if !f.HasPoint() {
			verr.Add("distance_max", "requires latitude and longitude")
		}
	}
	switch f.Sort {
	case "", repository.SortRelevance, repository.SortDistance, repository.SortRating,
		repository.SortPriceLow, repository.SortPriceHigh, repository.SortNewest:
	default:
		verr.Add("sort", "unknown sort order")
	}
	return verr.OrNil()
}

func (s *locationService) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	if err := validateFilter(&p.Filter); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(p.Page, p.Limit)

	rows, total, err := s.repo.Search(ctx, p.Filter, offset, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.LocationWithDistance{}
	}
	return &SearchResult{
		Locations: rows,
		Total:     total,
		Page:      page,
		HasMore:   hasMore(offset, limit, total),
	}, nil
}

func (s *locationService) Get(ctx context.Context, id string) (*domain.Location, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *locationService) Autocomplete(ctx context.Context, q string) []AutocompleteSuggestion {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < autocompleteMinLength {
		return []AutocompleteSuggestion{}
	}

	// Matching is ILIKE, so the query's case does not change the result.
	key := cache.Key("autocomplete", strings.ToLower(q))
	var cached []AutocompleteSuggestion
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("autocomplete cache read", "err", err)
	}
	s.metrics.CacheLookup(found)
	if found {
		return cached
	}

	locs, err := s.repo.MatchNameOrCity(ctx, q, autocompleteFetch)
	if err != nil {
		s.logger.Error("autocomplete lookup", "q", q, "err", err)
		return []AutocompleteSuggestion{}
	}
	out := buildAutocomplete(locs)
	if err := s.cache.Set(ctx, key, out); err != nil {
		s.logger.Warn("autocomplete cache write", "err", err)
	}
	return out
}

// buildAutocomplete emits each location, plus a city entry the first time
// a city is seen, capped at autocompleteMax.
func buildAutocomplete(locs []domain.Location) []AutocompleteSuggestion {
	out := make([]AutocompleteSuggestion, 0, autocompleteMax)
	seen := make(map[string]bool)
	for _, loc := range locs {
		out = append(out, AutocompleteSuggestion{Type: SuggestLocation, ID: loc.ID, Name: loc.Name, Subtitle: loc.City})
		if loc.City != "" && !seen[loc.City] {
			seen[loc.City] = true
			out = append(out, AutocompleteSuggestion{Type: SuggestCity, ID: loc.City, Name: loc.City, Subtitle: citySubtitle})
		}
	}
	if len(out) > autocompleteMax {
		out = out[:autocompleteMax]
	}
	return out
}

func (s *locationService) Recommend(ctx context.Context, vibes []string, city string, limit int) ([]domain.Location, error) {
	if limit < 1 || limit > MaxLimit {
		limit = recommendDefault
	}
	vibes, invalid := domain.NormalizeVibes(vibes)
	if len(invalid) > 0 {
		return nil, domain.NewValidationError("vibes", "unknown vibe: "+strings.Join(invalid, ", "))
	}
	city = strings.TrimSpace(city)

	key := cache.Key("recommend", strings.Join(vibes, ","), strings.ToLower(city), strconv.Itoa(limit))
	var cached []domain.Location
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("recommendation cache read", "err", err)
	}
	s.metrics.CacheLookup(found)
	if found {
		return cached, nil
	}

	locs, err := s.repo.Recommend(ctx, vibes, city, limit)
	if err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []domain.Location{}
	}
	if err := s.cache.Set(ctx, key, locs); err != nil {
		s.logger.Warn("recommendation cache write", "err", err)
	}
	return locs, nil
}

// Create inserts a location after validating its vocabulary fields.
func (s *locationService) Create(ctx context.Context, loc *domain.Location) error {
	var verr domain.ValidationError
	if strings.TrimSpace(loc.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(loc.City) == "" {
		verr.Add("city", "is required")
	}
	if !domain.IsValidCategory(loc.Category) {
		verr.Add("category", "unknown category")
	}
	vibes, invalid := domain.NormalizeVibes(loc.Vibes)
	if len(invalid) > 0 {
		verr.Add("vibes", "unknown vibe: "+strings.Join(invalid, ", "))
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	loc.Vibes = vibes
	return s.repo.Create(ctx, loc)
}
