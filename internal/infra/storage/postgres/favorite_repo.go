package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

// FavoriteRepo implements storage.FavoriteRepository using PostgreSQL.
type FavoriteRepo struct {
	db *DB
}

// NewFavoriteRepo creates a new PostgreSQL favorite repository.
func NewFavoriteRepo(db *DB) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

type favoriteRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Recipe    []byte    `db:"recipe"`
	CreatedAt time.Time `db:"created_at"`
}

// Add saves a favorite recipe.
func (r *FavoriteRepo) Add(ctx context.Context, fav *domain.Favorite) error {
	recipe, err := json.Marshal(fav.Recipe)
	if err != nil {
		return fmt.Errorf("failed to encode recipe: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO favorites (id, user_id, recipe_id, recipe, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)`,
		fav.ID, fav.UserID, fav.Recipe.ID, string(recipe), fav.CreatedAt)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// List returns a user's favorites, newest first.
func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	var rows []favoriteRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, recipe, created_at
		FROM favorites WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	favs := make([]*domain.Favorite, 0, len(rows))
	for _, row := range rows {
		fav := &domain.Favorite{
			ID:        row.ID,
			UserID:    row.UserID,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal(row.Recipe, &fav.Recipe); err != nil {
			return nil, fmt.Errorf("failed to decode favorite %s: %w", row.ID, err)
		}
		favs = append(favs, fav)
	}
	return favs, nil
}

// Delete removes a favorite owned by the user.
func (r *FavoriteRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND id::text = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
