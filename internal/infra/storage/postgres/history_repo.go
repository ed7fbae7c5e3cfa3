package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

// HistoryRepo implements storage.HistoryRepository using PostgreSQL.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new PostgreSQL history repository.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

type historyRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Kind        string    `db:"kind"`
	Ingredients []byte    `db:"ingredients"`
	Recipes     []byte    `db:"recipes"`
	CreatedAt   time.Time `db:"created_at"`
}

// Append records an entry.
func (r *HistoryRepo) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	ingredients, err := marshalList(entry.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}
	recipes, err := marshalList(entry.Recipes)
	if err != nil {
		return fmt.Errorf("failed to encode recipes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO history (id, user_id, kind, ingredients, recipes, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6)`,
		entry.ID, entry.UserID, string(entry.Kind), ingredients, recipes, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// List returns at most limit entries, newest first. limit <= 0 means all.
func (r *HistoryRepo) List(ctx context.Context, userID string, limit int) ([]*domain.HistoryEntry, error) {
	query := `
		SELECT id, user_id, kind, ingredients, recipes, created_at
		FROM history WHERE user_id = $1
		ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]*domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := &domain.HistoryEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			Kind:      domain.HistoryKind(row.Kind),
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal(row.Ingredients, &entry.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode history %s: %w", row.ID, err)
		}
		if err := json.Unmarshal(row.Recipes, &entry.Recipes); err != nil {
			return nil, fmt.Errorf("failed to decode history %s: %w", row.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DeleteOlderThan removes entries created before cutoff.
func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// marshalList encodes a slice, writing [] instead of null for nil.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
