package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

// StreakRepo implements storage.StreakRepository using PostgreSQL.
type StreakRepo struct {
	db *DB
}

// NewStreakRepo creates a new PostgreSQL streak repository.
func NewStreakRepo(db *DB) *StreakRepo {
	return &StreakRepo{db: db}
}

type streakRow struct {
	UserID     string       `db:"user_id"`
	Current    int          `db:"current_days"`
	Longest    int          `db:"longest_days"`
	LastActive sql.NullTime `db:"last_active"`
}

// Get retrieves a streak by user ID.
func (r *StreakRepo) Get(ctx context.Context, userID string) (*domain.Streak, error) {
	var row streakRow
	err := r.db.GetContext(ctx, &row,
		`SELECT user_id, current_days, longest_days, last_active FROM streaks WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	streak := &domain.Streak{
		UserID:  row.UserID,
		Current: row.Current,
		Longest: row.Longest,
	}
	if row.LastActive.Valid {
		streak.LastActive = row.LastActive.Time
	}
	return streak, nil
}

// Save upserts a streak.
func (r *StreakRepo) Save(ctx context.Context, streak *domain.Streak) error {
	lastActive := sql.NullTime{Time: streak.LastActive, Valid: !streak.LastActive.IsZero()}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO streaks (user_id, current_days, longest_days, last_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET current_days = EXCLUDED.current_days,
		    longest_days = EXCLUDED.longest_days,
		    last_active = EXCLUDED.last_active`,
		streak.UserID, streak.Current, streak.Longest, lastActive)
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}
