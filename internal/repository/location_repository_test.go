package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func searchSQL(t *testing.T, f LocationFilter, offset, limit int) (string, []any) {
	t.Helper()
	var rows []domain.LocationWithDistance
	stmt := searchLocations(dryRunDB(t), f, offset, limit).Find(&rows).Statement
	return stmt.SQL.String(), stmt.Vars
}

func ptr[T any](v T) *T { return &v }

func TestSearchLocationsSQL(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		sql, _ := searchSQL(t, LocationFilter{}, 0, 20)
		assert.Contains(t, sql, `FROM "locations"`)
		assert.NotContains(t, sql, "WHERE")
		assert.Contains(t, sql, "ORDER BY is_expert_pick DESC,rating DESC NULLS LAST,created_at DESC")
		assert.Contains(t, sql, "LIMIT 20")
		assert.NotContains(t, sql, "distance")
	})

	t.Run("query escapes wildcards", func(t *testing.T) {
		sql, vars := searchSQL(t, LocationFilter{Query: "50%_off"}, 0, 20)
		assert.Regexp(t, `name ILIKE \$\d+ OR description ILIKE \$\d+ OR city ILIKE \$\d+`, sql)
		assert.Contains(t, vars, `%50\%\_off%`)
	})

	t.Run("attribute filters", func(t *testing.T) {
		sql, vars := searchSQL(t, LocationFilter{
			Vibes:           []string{"cozy"},
			City:            "Lisbon",
			Category:        "cafe",
			PriceLevels:     []int{1, 2},
			RatingMin:       ptr(4.0),
			ExpertPicksOnly: true,
		}, 40, 20)
		assert.Regexp(t, `vibes && \$\d+`, sql)
		assert.Regexp(t, `city = \$\d+`, sql)
		assert.Regexp(t, `category = \$\d+`, sql)
		assert.Regexp(t, `price_level IN \(\$\d+,\$\d+\)`, sql)
		assert.Regexp(t, `rating >= \$\d+`, sql)
		assert.Regexp(t, `is_expert_pick = \$\d+`, sql)
		assert.Contains(t, sql, "LIMIT 20 OFFSET 40")
		assert.Contains(t, vars, "Lisbon")
		assert.Contains(t, vars, 4.0)
	})

	t.Run("distance", func(t *testing.T) {
		sql, vars := searchSQL(t, LocationFilter{
			Latitude:    ptr(38.7),
			Longitude:   ptr(-9.1),
			DistanceMax: ptr(5.0),
			Sort:        SortDistance,
		}, 0, 10)
		assert.Contains(t, sql, "AS distance")
		assert.Contains(t, sql, "3959 * acos")
		assert.Regexp(t, `\) <= \$\d+`, sql)
		assert.Contains(t, sql, "ORDER BY distance ASC")
		assert.Contains(t, vars, 5.0)
	})

	t.Run("distance sort without point", func(t *testing.T) {
		sql, _ := searchSQL(t, LocationFilter{Sort: SortDistance}, 0, 10)
		assert.Contains(t, sql, "ORDER BY is_expert_pick DESC")
	})

	t.Run("sort orders", func(t *testing.T) {
		tests := map[string]string{
			SortRating:    "ORDER BY rating DESC NULLS LAST",
			SortPriceLow:  "ORDER BY price_level ASC NULLS LAST",
			SortPriceHigh: "ORDER BY price_level DESC NULLS LAST",
			SortNewest:    "ORDER BY created_at DESC",
		}
		for sort, want := range tests {
			sql, _ := searchSQL(t, LocationFilter{Sort: sort}, 0, 10)
			assert.Contains(t, sql, want, sort)
		}
	})
}

func TestRecommendLocationsSQL(t *testing.T) {
	var locs []domain.Location
	stmt := recommendLocations(dryRunDB(t), []string{"cozy"}, "Lisbon", 5).Find(&locs).Statement
	sql := stmt.SQL.String()
	assert.Regexp(t, `vibes && \$\d+`, sql)
	assert.Regexp(t, `lower\(city\) = lower\(\$\d+\)`, sql)
	assert.Contains(t, sql, "LIMIT 5")
	assert.Contains(t, stmt.Vars, "Lisbon")

	stmt = recommendLocations(dryRunDB(t), nil, "", 5).Find(&locs).Statement
	assert.NotContains(t, stmt.SQL.String(), "WHERE")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
