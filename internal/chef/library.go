package chef

import (
	"context"
	"errors"
	"strings"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Profile returns the user's profile, or an empty one if none is stored.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	p, err := s.store.Profiles.Get(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &domain.Profile{UserID: userID}, nil
	}
	return p, err
}

// SaveProfile stores the user's display name and preferences.
func (s *Service) SaveProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if profile.UserID == "" {
		return nil, ErrMissingUser
	}
	now := s.now().UTC()
	existing, err := s.store.Profiles.Get(ctx, profile.UserID)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case errors.Is(err, storage.ErrNotFound):
		profile.CreatedAt = now
	default:
		return nil, err
	}
	profile.UpdatedAt = now
	profile.Preferences.Allergies = cleanList(profile.Preferences.Allergies)

	if err := s.store.Profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// AddFavorite saves recipe for the user. Saving the same recipe twice
// returns storage.ErrDuplicate.
func (s *Service) AddFavorite(ctx context.Context, userID string, recipe domain.Recipe) (*domain.Favorite, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if !recipe.Valid() {
		return nil, ErrInvalidRecipe
	}
	if recipe.ID == "" {
		recipe.ID = s.newID()
	}
	fav := &domain.Favorite{
		ID:        s.newID(),
		UserID:    userID,
		Recipe:    recipe,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Favorites.Add(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *Service) Favorites(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return s.store.Favorites.List(ctx, userID)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return s.store.Favorites.Delete(ctx, userID, id)
}

// History returns the newest entries first. limit is clamped to
// [1, MaxHistoryLimit]; 0 means DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*domain.HistoryEntry, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.store.History.List(ctx, userID, limit)
}

// Streak returns the user's streak with Current reset to 0 when it has lapsed.
func (s *Service) Streak(ctx context.Context, userID string) (*domain.Streak, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	streak, err := s.store.Streaks.Get(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &domain.Streak{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	streak.Current = streak.ActiveAt(s.now())
	return streak, nil
}

// ActiveToday reports whether the streak already counts today.
func (s *Service) ActiveToday(streak *domain.Streak) bool {
	if streak == nil || streak.LastActive.IsZero() {
		return false
	}
	now := s.now()
	y1, m1, d1 := streak.LastActive.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		k := strings.ToLower(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
