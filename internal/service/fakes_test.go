package service

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
)

var errStore = errors.New("store unavailable")

func discardLogger() *log.Logger { return log.New(io.Discard) }

func newID(b *domain.Base) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// --- users ---

type fakeUsers struct {
	byID    map[string]*domain.User
	counts  repository.ProfileCounts
	updates map[string]any
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		newID(&u.Base)
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrConflict
		}
	}
	newID(&u.Base)
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) Update(ctx context.Context, id string, updates map[string]any) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f.updates = updates
	for k, v := range updates {
		switch k {
		case "password_hash":
			u.PasswordHash = v.(string)
		case "username":
			if v == nil {
				u.Username = nil
			} else {
				s := v.(string)
				for _, other := range f.byID {
					if other.ID != id && other.Username != nil && *other.Username == s {
						return nil, domain.ErrConflict
					}
				}
				u.Username = &s
			}
		case "name":
			if v == nil {
				u.Name = nil
			} else {
				s := v.(string)
				u.Name = &s
			}
		case "is_traveler":
			u.IsTraveler = v.(bool)
		case "is_local":
			u.IsLocal = v.(bool)
		case "local_cities":
			u.LocalCities = v.(pq.StringArray)
		case "preferred_vibes":
			u.PreferredVibes = v.(pq.StringArray)
		case "instagram_access_token":
			u.InstagramAccessToken = optString(v)
		case "instagram_user_id":
			u.InstagramUserID = optString(v)
		case "instagram_username":
			u.InstagramUsername = optString(v)
		case "instagram_token_expires_at":
			if v == nil {
				u.InstagramTokenExpiresAt = nil
			} else {
				at := v.(time.Time)
				u.InstagramTokenExpiresAt = &at
			}
		case "instagram_photos":
			if v == nil {
				u.InstagramPhotos = nil
			} else {
				u.InstagramPhotos = v.(pq.StringArray)
			}
		}
	}
	return f.FindByID(ctx, id)
}

func optString(v any) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

func (f *fakeUsers) ListInstagramExpiring(_ context.Context, cutoff time.Time) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.byID {
		if u.InstagramAccessToken != nil && u.InstagramTokenExpiresAt != nil && !u.InstagramTokenExpiresAt.After(cutoff) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) Counts(context.Context, string) (repository.ProfileCounts, error) {
	return f.counts, nil
}

// --- locations ---

type fakeLocations struct {
	byID       map[string]*domain.Location
	total      int64
	lastFilter repository.LocationFilter
	lastOffset int
	lastLimit  int
	err        error
	recommends int
	matches    int
}

func newFakeLocations(locs ...*domain.Location) *fakeLocations {
	f := &fakeLocations{byID: map[string]*domain.Location{}}
	for _, l := range locs {
		newID(&l.Base)
		f.byID[l.ID] = l
	}
	return f
}

func (f *fakeLocations) Create(_ context.Context, l *domain.Location) error {
	newID(&l.Base)
	f.byID[l.ID] = l
	return nil
}

func (f *fakeLocations) FindByID(_ context.Context, id string) (*domain.Location, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeLocations) Search(_ context.Context, filter repository.LocationFilter, offset, limit int) ([]domain.LocationWithDistance, int64, error) {
	f.lastFilter, f.lastOffset, f.lastLimit = filter, offset, limit
	if f.err != nil {
		return nil, 0, f.err
	}
	return nil, f.total, nil
}

func (f *fakeLocations) MatchNameOrCity(context.Context, string, int) ([]domain.Location, error) {
	f.matches++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Location
	for _, l := range f.byID {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Recommend matches the city case-insensitively like the gorm query.
func (f *fakeLocations) Recommend(_ context.Context, _ []string, city string, _ int) ([]domain.Location, error) {
	f.recommends++
	var out []domain.Location
	for _, l := range f.byID {
		if city == "" || strings.EqualFold(l.City, city) {
			out = append(out, *l)
		}
	}
	return out, f.err
}

// --- saves ---

type fakeSaves struct {
	rows []domain.Save
	err  error
}

func (f *fakeSaves) Create(_ context.Context, s *domain.Save) error {
	for _, r := range f.rows {
		if r.UserID == s.UserID && r.LocationID == s.LocationID {
			return domain.ErrConflict
		}
	}
	newID(&s.Base)
	f.rows = append(f.rows, *s)
	return nil
}

func (f *fakeSaves) Delete(_ context.Context, userID, locationID string) error {
	out := f.rows[:0]
	for _, r := range f.rows {
		if r.UserID != userID || r.LocationID != locationID {
			out = append(out, r)
		}
	}
	f.rows = out
	return nil
}

func (f *fakeSaves) ListByUser(_ context.Context, userID string) ([]domain.Save, error) {
	var out []domain.Save
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSaves) Exists(_ context.Context, userID, locationID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.rows {
		if r.UserID == userID && r.LocationID == locationID {
			return true, nil
		}
	}
	return false, nil
}

// --- lists ---

type fakeLists struct {
	byID  map[string]*domain.List
	items []domain.ListItem
}

func newFakeLists() *fakeLists { return &fakeLists{byID: map[string]*domain.List{}} }

func (f *fakeLists) Create(_ context.Context, l *domain.List) error {
	newID(&l.Base)
	f.byID[l.ID] = l
	return nil
}

func (f *fakeLists) ListByUser(_ context.Context, userID string) ([]domain.List, error) {
	var out []domain.List
	for _, l := range f.byID {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeLists) FindByID(_ context.Context, id string, withItems bool) (*domain.List, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	if withItems {
		for _, it := range f.items {
			if it.ListID == id {
				cp.Items = append(cp.Items, it)
			}
		}
	}
	return &cp, nil
}

func (f *fakeLists) AddItem(_ context.Context, it *domain.ListItem) error {
	for _, r := range f.items {
		if r.ListID == it.ListID && r.LocationID == it.LocationID {
			return domain.ErrConflict
		}
	}
	newID(&it.Base)
	f.items = append(f.items, *it)
	return nil
}

func (f *fakeLists) RemoveItem(_ context.Context, listID, locationID string) error {
	out := f.items[:0]
	for _, r := range f.items {
		if r.ListID != listID || r.LocationID != locationID {
			out = append(out, r)
		}
	}
	f.items = out
	return nil
}

// --- requests ---

type fakeRequests struct {
	byID       map[string]*domain.RecommendationRequest
	users      *fakeUsers
	lastFilter repository.RequestFilter
	total      int64
}

func newFakeRequests(users *fakeUsers) *fakeRequests {
	return &fakeRequests{byID: map[string]*domain.RecommendationRequest{}, users: users}
}

func (f *fakeRequests) Create(_ context.Context, r *domain.RecommendationRequest) error {
	newID(&r.Base)
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRequests) List(_ context.Context, filter repository.RequestFilter, offset, limit int) ([]domain.RecommendationRequest, int64, error) {
	f.lastFilter = filter
	var out []domain.RecommendationRequest
	for _, r := range f.byID {
		cp := *r
		if u, ok := f.users.byID[r.UserID]; ok {
			cp.Requester = u
		}
		out = append(out, cp)
	}
	total := f.total
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

func (f *fakeRequests) FindByID(_ context.Context, id string) (*domain.RecommendationRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	if u, ok := f.users.byID[r.UserID]; ok {
		cp.Requester = u
	}
	return &cp, nil
}

func (f *fakeRequests) UpdateOpen(ctx context.Context, id string, updates map[string]any) (*domain.RecommendationRequest, error) {
	r, ok := f.byID[id]
	if !ok || !r.IsOpen() {
		return nil, domain.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "status":
			r.Status = v.(string)
		case "title":
			r.Title = v.(string)
		case "budget_level":
			r.BudgetLevel = v.(int)
		}
	}
	return f.FindByID(ctx, id)
}

func (f *fakeRequests) IncrementViews(_ context.Context, id string) error {
	f.byID[id].ViewsCount++
	return nil
}

func (f *fakeRequests) CloseExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, r := range f.byID {
		if r.IsOpen() && r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
			r.Status = domain.StatusClosed
			n++
		}
	}
	return n, nil
}

// --- suggestions ---

type fakeSuggestions struct {
	byID     map[string]*domain.Suggestion
	requests *fakeRequests
	// beforeSet runs ahead of SetHelpful to stand in for a concurrent writer.
	beforeSet func(s *domain.Suggestion)
}

func newFakeSuggestions(requests *fakeRequests) *fakeSuggestions {
	return &fakeSuggestions{byID: map[string]*domain.Suggestion{}, requests: requests}
}

func (f *fakeSuggestions) Create(_ context.Context, s *domain.Suggestion) error {
	r, ok := f.requests.byID[s.RequestID]
	if !ok {
		return domain.ErrNotFound
	}
	newID(&s.Base)
	f.byID[s.ID] = s
	r.SuggestionsCount++
	return nil
}

func (f *fakeSuggestions) ListByRequest(_ context.Context, requestID string) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	for _, s := range f.byID {
		if s.RequestID == requestID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HelpfulCount > out[j].HelpfulCount })
	return out, nil
}

func (f *fakeSuggestions) FindByID(_ context.Context, id string) (*domain.Suggestion, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Request = f.requests.byID[s.RequestID]
	return &cp, nil
}

func (f *fakeSuggestions) SetHelpful(ctx context.Context, id string, helpful bool) (*domain.Suggestion, bool, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if f.beforeSet != nil {
		f.beforeSet(s)
	}
	was := s.WasHelpful
	changed := was == nil || *was != helpful
	if changed {
		switch {
		case helpful:
			s.HelpfulCount++
		case was != nil && *was:
			s.HelpfulCount = max(s.HelpfulCount-1, 0)
		}
		s.WasHelpful = &helpful
	}
	got, err := f.FindByID(ctx, id)
	return got, changed, err
}

func (f *fakeSuggestions) Rate(ctx context.Context, id string, rating int, feedback *string) (*domain.Suggestion, error) {
	s := f.byID[id]
	s.Rating = &rating
	s.TravelerFeedback = feedback
	s.WasTried = true
	return f.FindByID(ctx, id)
}

// --- messages ---

type fakeMessages struct {
	byID  map[string]*domain.Message
	users *fakeUsers
}

func newFakeMessages(users *fakeUsers) *fakeMessages {
	return &fakeMessages{byID: map[string]*domain.Message{}, users: users}
}

func (f *fakeMessages) Create(_ context.Context, m *domain.Message) error {
	newID(&m.Base)
	m.Sender = f.users.byID[m.SenderID]
	m.Receiver = f.users.byID[m.ReceiverID]
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMessages) ListByRequest(_ context.Context, requestID, viewerID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.byID {
		if m.RequestID == requestID && (m.SenderID == viewerID || m.ReceiverID == viewerID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessages) FindByID(_ context.Context, id string) (*domain.Message, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, id string) error {
	f.byID[id].IsRead = true
	return nil
}

// --- notifications ---

type fakeNotifications struct {
	rows []*domain.Notification
	err  error
}

func (f *fakeNotifications) Create(_ context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	newID(&n.Base)
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	var out []domain.Notification
	for i := len(f.rows) - 1; i >= 0; i-- {
		if n := f.rows[i]; n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	for _, n := range f.rows {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotifications) MarkRead(_ context.Context, id string) error {
	for _, n := range f.rows {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var changed int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

// --- saved places ---

type fakeSavedPlaces struct {
	rows []domain.SavedPlace
}

func (f *fakeSavedPlaces) Create(_ context.Context, p *domain.SavedPlace) error {
	newID(&p.Base)
	f.rows = append(f.rows, *p)
	return nil
}

func (f *fakeSavedPlaces) ListByUser(_ context.Context, userID string) ([]domain.SavedPlace, error) {
	var out []domain.SavedPlace
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSavedPlaces) Delete(_ context.Context, id, userID string) (int64, error) {
	for i, p := range f.rows {
		if p.ID == id && p.UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// --- realtime and cache ---

type published struct {
	UserID string
	Event  string
	Data   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) SendToUser(userID, event string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{userID, event, data})
}

func (p *fakePublisher) byEvent(event string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type mapCache struct {
	data map[string]any
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(v))
	return true, nil
}

func (c *mapCache) Set(_ context.Context, key string, v any) error {
	c.data[key] = v
	return nil
}

func (c *mapCache) Close() error { return nil }
