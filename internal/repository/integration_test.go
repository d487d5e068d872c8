package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// startPostgres runs a throwaway Postgres container. It needs Docker and is
// enabled with BUYARECO_INTEGRATION=1.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() || os.Getenv("BUYARECO_INTEGRATION") == "" {
		t.Skip("set BUYARECO_INTEGRATION=1 to run Postgres integration tests")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("buyareco"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Models()...))
	return db
}

func TestPostgresIntegration(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repos := NewGorm(db)

	traveler := &domain.User{Email: "traveler@example.com"}
	local := &domain.User{Email: "local@example.com", IsLocal: true}
	require.NoError(t, repos.Users.Create(ctx, traveler))
	require.NoError(t, repos.Users.Create(ctx, local))

	t.Run("duplicate email", func(t *testing.T) {
		err := repos.Users.Create(ctx, &domain.User{Email: "traveler@example.com"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	rating := 4.6
	cafe := &domain.Location{
		Name: "Fábrica Coffee", Address: "Rua 1", City: "Lisbon", Category: "cafe",
		Latitude: 38.71, Longitude: -9.14, Vibes: []string{"cozy", "productive"},
		Rating: &rating, IsExpertPick: true,
	}
	bar := &domain.Location{
		Name: "Park Bar", Address: "Rua 2", City: "Lisbon", Category: "bar",
		Latitude: 38.72, Longitude: -9.15, Vibes: []string{"nightlife"},
	}
	require.NoError(t, repos.Locations.Create(ctx, cafe))
	require.NoError(t, repos.Locations.Create(ctx, bar))

	t.Run("search by vibe overlap", func(t *testing.T) {
		rows, total, err := repos.Locations.Search(ctx, LocationFilter{Vibes: []string{"cozy", "calm"}}, 0, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, cafe.ID, rows[0].ID)
		assert.Nil(t, rows[0].Distance)
	})

	t.Run("search with distance", func(t *testing.T) {
		lat, lng, within := 38.71, -9.14, 0.5
		rows, _, err := repos.Locations.Search(ctx, LocationFilter{
			Latitude: &lat, Longitude: &lng, DistanceMax: &within, Sort: SortDistance,
		}, 0, 20)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].Distance)
		assert.InDelta(t, 0, *rows[0].Distance, 0.01)
	})

	t.Run("saves", func(t *testing.T) {
		require.NoError(t, repos.Saves.Create(ctx, &domain.Save{UserID: traveler.ID, LocationID: cafe.ID}))
		err := repos.Saves.Create(ctx, &domain.Save{UserID: traveler.ID, LocationID: cafe.ID})
		assert.ErrorIs(t, err, domain.ErrConflict)

		saves, err := repos.Saves.ListByUser(ctx, traveler.ID)
		require.NoError(t, err)
		require.Len(t, saves, 1)
		require.NotNil(t, saves[0].Location)
		assert.Equal(t, "Fábrica Coffee", saves[0].Location.Name)

		require.NoError(t, repos.Saves.Delete(ctx, traveler.ID, bar.ID))
	})

	t.Run("suggestion bumps request count", func(t *testing.T) {
		req := &domain.RecommendationRequest{UserID: traveler.ID, City: "Lisbon", Title: "Coffee", Description: "Where?"}
		require.NoError(t, repos.Requests.Create(ctx, req))

		s := &domain.Suggestion{RequestID: req.ID, UserID: local.ID, PlaceName: "Fábrica", Reason: "Best flat white"}
		require.NoError(t, repos.Suggestions.Create(ctx, s))

		got, err := repos.Requests.FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SuggestionsCount)
		assert.Equal(t, traveler.ID, got.Requester.ID)

		updated, changed, err := repos.Suggestions.SetHelpful(ctx, s.ID, true)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, updated.HelpfulCount)

		updated, changed, err = repos.Suggestions.SetHelpful(ctx, s.ID, true)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 1, updated.HelpfulCount)

		updated, changed, err = repos.Suggestions.SetHelpful(ctx, s.ID, false)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 0, updated.HelpfulCount)
	})

	t.Run("mark all read", func(t *testing.T) {
		for range 2 {
			require.NoError(t, repos.Notifications.Create(ctx, &domain.Notification{
				UserID: traveler.ID, FromUserID: &local.ID, Type: domain.NotifyNewMessage, Title: "hi",
			}))
		}
		n, err := repos.Notifications.MarkAllRead(ctx, traveler.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = repos.Notifications.MarkAllRead(ctx, traveler.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})
}
