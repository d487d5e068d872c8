package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

func float(v float64) *float64 { return &v }

func TestSearchPaging(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLocations()
	repo.total = 45
	svc := NewLocationService(repo, nil, discardLogger(), nil)

	res, err := svc.Search(ctx, SearchParams{Page: 2, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastOffset)
	assert.Equal(t, 20, repo.lastLimit)
	assert.Equal(t, 2, res.Page)
	assert.True(t, res.HasMore)
	assert.NotNil(t, res.Locations)

	res, err = svc.Search(ctx, SearchParams{Page: 3, Limit: 20})
	require.NoError(t, err)
	assert.False(t, res.HasMore)

	_, err = svc.Search(ctx, SearchParams{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, repo.lastLimit)
}

func TestSearchValidation(t *testing.T) {
	svc := NewLocationService(newFakeLocations(), nil, discardLogger(), nil)

	tests := []struct {
		name   string
		filter repository.LocationFilter
		field  string
	}{
		{"price level", repository.LocationFilter{PriceLevels: []int{5}}, "price_level"},
		{"rating", repository.LocationFilter{RatingMin: float(7)}, "rating_min"},
		{"half point", repository.LocationFilter{Latitude: float(1)}, "latitude"},
		{"distance without point", repository.LocationFilter{DistanceMax: float(3)}, "distance_max"},
		{"sort", repository.LocationFilter{Sort: "random"}, "sort"},
		{"category", repository.LocationFilter{Category: "spaceport"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), SearchParams{Filter: tt.filter})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestBuildAutocomplete(t *testing.T) {
	locs := []domain.Location{
		{Base: domain.Base{ID: "1"}, Name: "A", City: "Lisbon"},
		{Base: domain.Base{ID: "2"}, Name: "B", City: "Lisbon"},
		{Base: domain.Base{ID: "3"}, Name: "C", City: "Porto"},
		{Base: domain.Base{ID: "4"}, Name: "D", City: "Faro"},
		{Base: domain.Base{ID: "5"}, Name: "E", City: "Braga"},
		{Base: domain.Base{ID: "6"}, Name: "F", City: "Braga"},
	}
	out := buildAutocomplete(locs)
	require.Len(t, out, 8)
	assert.Equal(t, AutocompleteSuggestion{Type: SuggestLocation, ID: "1", Name: "A", Subtitle: "Lisbon"}, out[0])
	assert.Equal(t, AutocompleteSuggestion{Type: SuggestCity, ID: "Lisbon", Name: "Lisbon", Subtitle: "City"}, out[1])
	assert.Equal(t, SuggestLocation, out[2].Type, "second Lisbon row adds no city entry")
	assert.Equal(t, "Porto", out[4].Name)
	assert.Empty(t, buildAutocomplete(nil))
}

func TestAutocomplete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLocations(&domain.Location{Name: "Cafe", City: "Lisbon"})
	svc := NewLocationService(repo, nil, discardLogger(), nil)

	assert.Empty(t, svc.Autocomplete(ctx, "c"))
	assert.NotNil(t, svc.Autocomplete(ctx, " c "))
	assert.Len(t, svc.Autocomplete(ctx, "ca"), 2)

	repo.err = errStore
	out := svc.Autocomplete(ctx, "ca")
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAutocompleteCaches(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLocations(&domain.Location{Name: "Cafe", City: "Lisbon"})
	c := &mapCache{data: map[string]any{}}
	svc := NewLocationService(repo, c, discardLogger(), nil)

	first := svc.Autocomplete(ctx, "Ca")
	require.Len(t, first, 2)
	assert.Equal(t, 1, repo.matches)

	second := svc.Autocomplete(ctx, "ca")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.matches)

	repo.err = errStore
	assert.Empty(t, svc.Autocomplete(ctx, "lis"))
	assert.NotContains(t, c.data, "buyareco:autocomplete:lis", "failures are not cached")
}

func TestRecommendCaches(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLocations(&domain.Location{Name: "Cafe", City: "Lisbon"})
	c := &mapCache{data: map[string]any{}}
	svc := NewLocationService(repo, c, discardLogger(), nil)

	first, err := svc.Recommend(ctx, []string{"Cozy"}, "Lisbon", 0)
	require.NoError(t, err)
	second, err := svc.Recommend(ctx, []string{"cozy"}, "lisbon", 0)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.recommends)

	porto, err := svc.Recommend(ctx, []string{"cozy"}, "Porto", 0)
	require.NoError(t, err)
	assert.Empty(t, porto)
	assert.Equal(t, 2, repo.recommends)

	_, err = svc.Recommend(ctx, []string{"haunted"}, "", 0)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecommendCityCaseSharesResults(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLocations(&domain.Location{Name: "Cafe", City: "Lisbon"})

	for _, order := range [][2]string{{"lisbon", "Lisbon"}, {"LISBON", "lisbon"}} {
		svc := NewLocationService(repo, &mapCache{data: map[string]any{}}, discardLogger(), nil)
		first, err := svc.Recommend(ctx, nil, order[0], 0)
		require.NoError(t, err)
		second, err := svc.Recommend(ctx, nil, order[1], 0)
		require.NoError(t, err)
		assert.Len(t, first, 1, order[0])
		assert.Len(t, second, 1, order[1])
	}
}

func TestCreateLocation(t *testing.T) {
	svc := NewLocationService(newFakeLocations(), nil, discardLogger(), nil)
	loc := &domain.Location{Name: "Miradouro", City: "Lisbon", Category: "viewpoint", Vibes: []string{"Romantic", "romantic"}}
	require.NoError(t, svc.Create(context.Background(), loc))
	assert.Equal(t, []string{"romantic"}, []string(loc.Vibes))

	err := svc.Create(context.Background(), &domain.Location{Name: "x", City: "y", Category: "moon"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
