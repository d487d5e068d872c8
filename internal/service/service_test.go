package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/realtime"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name                   string
		page, limit            int
		wantPage, wantLimit, o int
	}{
		{"defaults", 0, 0, 1, DefaultLimit, 0},
		{"second page", 2, 20, 2, 20, 20},
		{"limit capped", 3, 500, 3, MaxLimit, 200},
		{"negative page", -4, 10, 1, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l, o := normalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantLimit, l)
			assert.Equal(t, tt.o, o)
		})
	}
}

func TestHasMore(t *testing.T) {
	assert.True(t, hasMore(0, 20, 21))
	assert.False(t, hasMore(0, 20, 20))
	assert.False(t, hasMore(40, 20, 45))
	assert.True(t, hasMore(20, 20, 45))
	assert.False(t, hasMore(0, 20, 0))
}

func TestTrimmed(t *testing.T) {
	assert.Nil(t, trimmed(nil))
	assert.Nil(t, trimmed(strPtr("   ")))
	assert.Equal(t, "x", *trimmed(strPtr(" x ")))
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	from := &domain.User{Base: domain.Base{ID: "from"}, Name: strPtr("Lia")}

	t.Run("stores and pushes", func(t *testing.T) {
		repo := &fakeNotifications{}
		pub := &fakePublisher{}
		n := NewNotifier(repo, pub, discardLogger(), nil)

		n.Notify(ctx, &domain.Notification{UserID: "to", Type: domain.NotifyNewMessage, Title: "hi"}, from)

		if assert.Len(t, repo.rows, 1) {
			assert.Equal(t, "from", *repo.rows[0].FromUserID)
		}
		events := pub.byEvent(realtime.EventNotification)
		if assert.Len(t, events, 1) {
			assert.Equal(t, "to", events[0].UserID)
			payload := events[0].Data.(domain.NotificationWithUser)
			assert.Equal(t, "Lia", *payload.FromUserSummary.Name)
		}
	})

	t.Run("skips self notifications", func(t *testing.T) {
		repo := &fakeNotifications{}
		n := NewNotifier(repo, nil, discardLogger(), nil)
		n.Notify(ctx, &domain.Notification{UserID: "from", Type: domain.NotifyNewMessage, Title: "hi"}, from)
		assert.Empty(t, repo.rows)
	})

	t.Run("store failure is swallowed", func(t *testing.T) {
		repo := &fakeNotifications{err: errStore}
		pub := &fakePublisher{}
		n := NewNotifier(repo, pub, discardLogger(), nil)
		n.Notify(ctx, &domain.Notification{UserID: "to", Type: domain.NotifyNewMessage, Title: "hi"}, from)
		assert.Empty(t, pub.byEvent(realtime.EventNotification))
	})
}
