package store

import (
	"context"
	"sort"
	"sync"

	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/laudier3/urlcurt/internal/user"
	"github.com/laudier3/urlcurt/internal/visits"
)

// MemoryStore is an in-memory implementation of the user, short URL and
// visit repositories. It mirrors the relational semantics the Postgres store
// provides: unique slug/email/phone constraints, cascade deletes and an
// atomic visit counter.
type MemoryStore struct {
	mu sync.RWMutex

	nextUserID  int64
	nextURLID   int64
	nextVisitID int64

	users  map[int64]*user.User
	urls   map[int64]*shortener.ShortURL
	visits map[int64][]*visits.Visit // urlID -> visits
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[int64]*user.User),
		urls:   make(map[int64]*shortener.ShortURL),
		visits: make(map[int64][]*visits.Visit),
	}
}

// --- user.Repository ---

func (m *MemoryStore) SaveUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}

		if u.Phone != "" && existing.Phone == u.Phone {
			return user.ErrPhoneTaken
		}
	}

	m.nextUserID++
	u.ID = m.nextUserID

	clone := *u
	m.users[u.ID] = &clone

	return nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	clone := *u

	return &clone, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			clone := *u

			return &clone, nil
		}
	}

	return nil, user.ErrNotFound
}

func (m *MemoryStore) GetUserByPhone(_ context.Context, phone string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Phone == phone {
			clone := *u

			return &clone, nil
		}
	}

	return nil, user.ErrNotFound
}

func (m *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}

	delete(m.users, id)

	// Cascade: drop the user's URLs and their visits.
	for urlID, u := range m.urls {
		if u.OwnerID == id {
			delete(m.urls, urlID)
			delete(m.visits, urlID)
		}
	}

	return nil
}

// --- shortener.Repository ---

func (m *MemoryStore) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.urls {
		if existing.Slug == shortURL.Slug {
			return shortener.ErrDuplicateSlug
		}
	}

	m.nextURLID++
	shortURL.ID = m.nextURLID

	clone := *shortURL
	m.urls[shortURL.ID] = &clone

	return nil
}

func (m *MemoryStore) GetBySlug(_ context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.urls {
		if u.Slug == slug {
			clone := *u

			return &clone, nil
		}
	}

	return nil, shortener.ErrNotFound
}

func (m *MemoryStore) GetByID(_ context.Context, id int64) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.urls[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	clone := *u

	return &clone, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, ownerID int64) ([]*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*shortener.ShortURL

	for _, u := range m.urls {
		if u.OwnerID == ownerID {
			clone := *u
			out = append(out, &clone)
		}
	}

	// Newest first, id as tiebreaker for same-instant rows.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}

		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (m *MemoryStore) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64

	for _, u := range m.urls {
		if u.OwnerID == ownerID {
			count++
		}
	}

	return count, nil
}

func (m *MemoryStore) SlugExists(_ context.Context, slug shortener.Slug) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.urls {
		if u.Slug == slug {
			return true, nil
		}
	}

	return false, nil
}

func (m *MemoryStore) Update(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.urls[shortURL.ID]
	if !ok {
		return shortener.ErrNotFound
	}

	for id, u := range m.urls {
		if id != shortURL.ID && u.Slug == shortURL.Slug {
			return shortener.ErrDuplicateSlug
		}
	}

	existing.Slug = shortURL.Slug
	existing.OriginalURL = shortURL.OriginalURL
	existing.ShortLink = shortURL.ShortLink

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[id]; !ok {
		return shortener.ErrNotFound
	}

	delete(m.urls, id)
	delete(m.visits, id)

	return nil
}

func (m *MemoryStore) IncrementVisits(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.urls[id]
	if !ok {
		return shortener.ErrNotFound
	}

	u.Visits++

	return nil
}

// --- visits.Store ---

func (m *MemoryStore) Insert(_ context.Context, v *visits.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[v.URLID]; !ok {
		return shortener.ErrNotFound
	}

	m.nextVisitID++
	v.ID = m.nextVisitID

	clone := *v
	m.visits[v.URLID] = append(m.visits[v.URLID], &clone)

	return nil
}

func (m *MemoryStore) TrafficDaily(_ context.Context, urlID int64) ([]visits.DayCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDay := make(map[string]int64)

	for _, v := range m.visits[urlID] {
		byDay[v.Timestamp.UTC().Format("2006-01-02")]++
	}

	out := make([]visits.DayCount, 0, len(byDay))
	for day, count := range byDay {
		out = append(out, visits.DayCount{Date: day, Count: count})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	return out, nil
}

func (m *MemoryStore) GeoBreakdown(_ context.Context, urlID int64) ([]visits.GeoCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type bucket struct{ country, region, city string }

	byGeo := make(map[bucket]int64)

	for _, v := range m.visits[urlID] {
		byGeo[bucket{
			country: orUnknown(v.Country),
			region:  orUnknown(v.Region),
			city:    orUnknown(v.City),
		}]++
	}

	out := make([]visits.GeoCount, 0, len(byGeo))
	for b, count := range byGeo {
		out = append(out, visits.GeoCount{
			Country: b.country,
			Region:  b.region,
			City:    b.city,
			Count:   count,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}

		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}

		return out[i].City < out[j].City
	})

	return out, nil
}

// VisitCount reports the number of visit rows for a URL. Test helper.
func (m *MemoryStore) VisitCount(urlID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.visits[urlID])
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}

	return s
}

// Compile-time checks.
var (
	_ shortener.Repository = (*MemoryStore)(nil)
	_ visits.Store         = (*MemoryStore)(nil)
	_ user.Repository      = (*userRepoAdapter)(nil)
)

// userRepoAdapter exposes MemoryStore's user methods under the
// user.Repository method set.
type userRepoAdapter struct{ *MemoryStore }

// Users returns the store as a user.Repository.
func (m *MemoryStore) Users() user.Repository {
	return &userRepoAdapter{m}
}

func (a *userRepoAdapter) Save(ctx context.Context, u *user.User) error {
	return a.SaveUser(ctx, u)
}

func (a *userRepoAdapter) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return a.GetUserByID(ctx, id)
}

func (a *userRepoAdapter) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return a.GetUserByEmail(ctx, email)
}

func (a *userRepoAdapter) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	return a.GetUserByPhone(ctx, phone)
}

func (a *userRepoAdapter) Delete(ctx context.Context, id int64) error {
	return a.DeleteUser(ctx, id)
}
