package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

// ProfileRepo implements storage.ProfileRepository using PostgreSQL.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new PostgreSQL profile repository.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

type profileRow struct {
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Preferences []byte    `db:"preferences"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Get retrieves a profile by user ID.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `
		SELECT user_id, display_name, preferences, created_at, updated_at
		FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := &domain.Profile{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Preferences, &profile.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return profile, nil
}

// Save upserts a profile, preserving created_at.
func (r *ProfileRepo) Save(ctx context.Context, profile *domain.Profile) error {
	prefs, err := json.Marshal(profile.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, preferences, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, now(), now())
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    preferences  = EXCLUDED.preferences,
		    updated_at   = now()`,
		profile.UserID, profile.DisplayName, string(prefs))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
