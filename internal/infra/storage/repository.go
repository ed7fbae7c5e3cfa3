package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

var (
	// ErrNotFound is returned when a record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique record already exists
	ErrDuplicate = errors.New("already exists")
)

// ProfileRepository handles user profiles
type ProfileRepository interface {
	// Get retrieves a profile by user ID
	Get(ctx context.Context, userID string) (*domain.Profile, error)

	// Save creates or updates a profile
	Save(ctx context.Context, profile *domain.Profile) error
}

// FavoriteRepository handles saved recipes
type FavoriteRepository interface {
	// Add saves a favorite; ErrDuplicate if the recipe is already saved
	Add(ctx context.Context, fav *domain.Favorite) error

	// List returns a user's favorites, newest first
	List(ctx context.Context, userID string) ([]*domain.Favorite, error)

	// Delete removes a favorite owned by the user
	Delete(ctx context.Context, userID, id string) error
}

// HistoryRepository handles the interaction log
type HistoryRepository interface {
	// Append records an entry
	Append(ctx context.Context, entry *domain.HistoryEntry) error

	// List returns at most limit entries, newest first
	List(ctx context.Context, userID string, limit int) ([]*domain.HistoryEntry, error)

	// DeleteOlderThan removes entries created before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// StreakRepository handles daily usage streaks
type StreakRepository interface {
	// Get retrieves a streak; ErrNotFound if the user never cooked
	Get(ctx context.Context, userID string) (*domain.Streak, error)

	// Save creates or updates a streak
	Save(ctx context.Context, streak *domain.Streak) error
}

// Store groups the repositories used by the application.
type Store struct {
	Profiles  ProfileRepository
	Favorites FavoriteRepository
	History   HistoryRepository
	Streaks   StreakRepository
}
