package repository

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// Sort orders accepted by Search.
const (
	SortRelevance = "relevance"
	SortDistance  = "distance"
	SortRating    = "rating"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortNewest    = "newest"
)

// haversineSQL is the great circle distance in miles (earth radius 3959)
// between a row and the point given by the arguments lat, lng, lat.
const haversineSQL = "3959 * acos(LEAST(1.0, cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)) + sin(radians(?)) * sin(radians(latitude))))"

// LocationFilter narrows a location search. Zero values mean "no filter".
type LocationFilter struct {
	Query           string
	Vibes           []string
	City            string
	Category        string
	PriceLevels     []int
	RatingMin       *float64
	ExpertPicksOnly bool
	Latitude        *float64
	Longitude       *float64
	DistanceMax     *float64
	Sort            string
}

// HasPoint reports whether a reference point was supplied.
func (f LocationFilter) HasPoint() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// LocationRepository defines the location data operations.
type LocationRepository interface {
	Create(ctx context.Context, loc *domain.Location) error
	FindByID(ctx context.Context, id string) (*domain.Location, error)
	Search(ctx context.Context, f LocationFilter, offset, limit int) ([]domain.LocationWithDistance, int64, error)
	MatchNameOrCity(ctx context.Context, q string, limit int) ([]domain.Location, error)
	Recommend(ctx context.Context, vibes []string, city string, limit int) ([]domain.Location, error)
}

type gormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a gorm location repository.
func NewGormLocationRepository(db *gorm.DB) LocationRepository {
	return &gormLocationRepository{db: db}
}

func (r *gormLocationRepository) Create(ctx context.Context, loc *domain.Location) error {
	return translate("create location", r.db.WithContext(ctx).Create(loc).Error)
}

func (r *gormLocationRepository) FindByID(ctx context.Context, id string) (*domain.Location, error) {
	var loc domain.Location
	if err := r.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, translate("find location", err)
	}
	return &loc, nil
}

func (r *gormLocationRepository) Search(ctx context.Context, f LocationFilter, offset, limit int) ([]domain.LocationWithDistance, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.Location{}).Scopes(filterLocations(f)).Count(&total).Error; err != nil {
		return nil, 0, translate("count locations", err)
	}

	var rows []domain.LocationWithDistance
	if err := searchLocations(db, f, offset, limit).Find(&rows).Error; err != nil {
		return nil, 0, translate("search locations", err)
	}
	return rows, total, nil
}

// searchLocations builds the page query for f.
func searchLocations(db *gorm.DB, f LocationFilter, offset, limit int) *gorm.DB {
	tx := db.Model(&domain.Location{}).Scopes(filterLocations(f))
	if f.HasPoint() {
		tx = tx.Select("locations.*, "+haversineSQL+" AS distance", *f.Latitude, *f.Longitude, *f.Latitude)
	}
	return tx.Scopes(orderLocations(f)).Offset(offset).Limit(limit)
}

func filterLocations(f LocationFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if q := strings.TrimSpace(f.Query); q != "" {
			pattern := "%" + escapeLike(q) + "%"
			tx = tx.Where("name ILIKE ? OR description ILIKE ? OR city ILIKE ?", pattern, pattern, pattern)
		}
		if len(f.Vibes) > 0 {
			tx = tx.Where("vibes && ?", pq.Array(f.Vibes))
		}
		if f.City != "" {
			tx = tx.Where("city = ?", f.City)
		}
		if f.Category != "" {
			tx = tx.Where("category = ?", f.Category)
		}
		if len(f.PriceLevels) > 0 {
			tx = tx.Where("price_level IN ?", f.PriceLevels)
		}
		if f.RatingMin != nil {
			tx = tx.Where("rating >= ?", *f.RatingMin)
		}
		if f.ExpertPicksOnly {
			tx = tx.Where("is_expert_pick = ?", true)
		}
		if f.HasPoint() && f.DistanceMax != nil {
			tx = tx.Where(haversineSQL+" <= ?", *f.Latitude, *f.Longitude, *f.Latitude, *f.DistanceMax)
		}
		return tx
	}
}

func orderLocations(f LocationFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch f.Sort {
		case SortDistance:
			if f.HasPoint() {
				return tx.Order("distance ASC")
			}
		case SortRating:
			return tx.Order("rating DESC NULLS LAST").Order("created_at DESC")
		case SortPriceLow:
			return tx.Order("price_level ASC NULLS LAST").Order("rating DESC NULLS LAST")
		case SortPriceHigh:
			return tx.Order("price_level DESC NULLS LAST").Order("rating DESC NULLS LAST")
		case SortNewest:
			return tx.Order("created_at DESC")
		}
		return tx.Order("is_expert_pick DESC").Order("rating DESC NULLS LAST").Order("created_at DESC")
	}
}

func (r *gormLocationRepository) MatchNameOrCity(ctx context.Context, q string, limit int) ([]domain.Location, error) {
	pattern := "%" + escapeLike(q) + "%"
	var locs []domain.Location
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR city ILIKE ?", pattern, pattern).
		Order("is_expert_pick DESC").Order("rating DESC NULLS LAST").
		Limit(limit).
		Find(&locs).Error
	if err != nil {
		return nil, translate("match locations", err)
	}
	return locs, nil
}

func (r *gormLocationRepository) Recommend(ctx context.Context, vibes []string, city string, limit int) ([]domain.Location, error) {
	var locs []domain.Location
	err := recommendLocations(r.db.WithContext(ctx), vibes, city, limit).Find(&locs).Error
	if err != nil {
		return nil, translate("recommend locations", err)
	}
	return locs, nil
}

// recommendLocations matches any of vibes and the city regardless of case.
func recommendLocations(db *gorm.DB, vibes []string, city string, limit int) *gorm.DB {
	tx := db.Model(&domain.Location{})
	if len(vibes) > 0 {
		tx = tx.Where("vibes && ?", pq.Array(vibes))
	}
	if city != "" {
		tx = tx.Where("lower(city) = lower(?)", city)
	}
	return tx.Order("is_expert_pick DESC").Order("rating DESC NULLS LAST").Limit(limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
