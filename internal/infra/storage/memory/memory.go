package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

type MemoryStorage struct {
	profiles  map[string]*domain.Profile
	favorites map[string][]*domain.Favorite
	history   map[string][]*domain.HistoryEntry
	streaks   map[string]*domain.Streak
	mu        sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		profiles:  make(map[string]*domain.Profile),
		favorites: make(map[string][]*domain.Favorite),
		history:   make(map[string][]*domain.HistoryEntry),
		streaks:   make(map[string]*domain.Streak),
	}
}

// Store returns all repositories backed by this storage.
func (s *MemoryStorage) Store() storage.Store {
	return storage.Store{
		Profiles:  NewProfileRepo(s),
		Favorites: NewFavoriteRepo(s),
		History:   NewHistoryRepo(s),
		Streaks:   NewStreakRepo(s),
	}
}

// -----------------------------------------------------------------------------
// Profile Repository
// -----------------------------------------------------------------------------

type ProfileRepo struct {
	store *MemoryStorage
}

func NewProfileRepo(store *MemoryStorage) *ProfileRepo {
	return &ProfileRepo{store: store}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *ProfileRepo) Save(ctx context.Context, profile *domain.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *profile
	if existing, ok := r.store.profiles[profile.UserID]; ok && c.CreatedAt.IsZero() {
		c.CreatedAt = existing.CreatedAt
	}
	r.store.profiles[profile.UserID] = &c
	return nil
}

// -----------------------------------------------------------------------------
// Favorite Repository
// -----------------------------------------------------------------------------

type FavoriteRepo struct {
	store *MemoryStorage
}

func NewFavoriteRepo(store *MemoryStorage) *FavoriteRepo {
	return &FavoriteRepo{store: store}
}

func (r *FavoriteRepo) Add(ctx context.Context, fav *domain.Favorite) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, f := range r.store.favorites[fav.UserID] {
		if f.Recipe.ID == fav.Recipe.ID {
			return storage.ErrDuplicate
		}
	}
	c := *fav
	r.store.favorites[fav.UserID] = append(r.store.favorites[fav.UserID], &c)
	return nil
}

func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	favs := r.store.favorites[userID]
	out := make([]*domain.Favorite, 0, len(favs))
	for _, f := range favs {
		c := *f
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *FavoriteRepo) Delete(ctx context.Context, userID, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	favs := r.store.favorites[userID]
	for i, f := range favs {
		if f.ID == id {
			r.store.favorites[userID] = append(favs[:i], favs[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// -----------------------------------------------------------------------------
// History Repository
// -----------------------------------------------------------------------------

type HistoryRepo struct {
	store *MemoryStorage
}

func NewHistoryRepo(store *MemoryStorage) *HistoryRepo {
	return &HistoryRepo{store: store}
}

func (r *HistoryRepo) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *entry
	r.store.history[entry.UserID] = append(r.store.history[entry.UserID], &c)
	return nil
}

func (r *HistoryRepo) List(ctx context.Context, userID string, limit int) ([]*domain.HistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries := r.store.history[userID]
	out := make([]*domain.HistoryEntry, 0, len(entries))
	// Newest first
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		c := *entries[i]
		out = append(out, &c)
	}
	return out, nil
}

func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var deleted int64
	for user, entries := range r.store.history {
		kept := entries[:0]
		for _, e := range entries {
			if e.CreatedAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(r.store.history, user)
		} else {
			r.store.history[user] = kept
		}
	}
	return deleted, nil
}

// -----------------------------------------------------------------------------
// Streak Repository
// -----------------------------------------------------------------------------

type StreakRepo struct {
	store *MemoryStorage
}

func NewStreakRepo(store *MemoryStorage) *StreakRepo {
	return &StreakRepo{store: store}
}

func (r *StreakRepo) Get(ctx context.Context, userID string) (*domain.Streak, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.streaks[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *StreakRepo) Save(ctx context.Context, streak *domain.Streak) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *streak
	r.store.streaks[streak.UserID] = &c
	return nil
}
