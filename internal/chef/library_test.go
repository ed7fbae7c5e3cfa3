package chef

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

func TestProfile_SaveKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(&fakeGenerator{}, nil)

	empty, err := s.Profile(ctx, "u1")
	if err != nil || empty.UserID != "u1" {
		t.Fatalf("expected empty profile, got %+v (%v)", empty, err)
	}

	first, err := s.SaveProfile(ctx, &domain.Profile{
		UserID:      "u1",
		Preferences: domain.Preferences{Allergies: []string{"Peanut", " peanut ", ""}},
	})
	if err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	if len(first.Preferences.Allergies) != 1 {
		t.Errorf("expected cleaned allergies, got %v", first.Preferences.Allergies)
	}

	s.now = func() time.Time { return fixedNow.Add(time.Hour) }
	second, err := s.SaveProfile(ctx, &domain.Profile{UserID: "u1", DisplayName: "Bo"})
	if err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) || !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("unexpected timestamps %+v", second)
	}
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(&fakeGenerator{}, nil)
	recipe := domain.Recipe{
		ID:          "r1",
		Title:       "Soup",
		Ingredients: []domain.RecipeIngredient{{Name: "leek"}},
		Steps:       []string{"boil"},
	}

	fav, err := s.AddFavorite(ctx, "u1", recipe)
	if err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if _, err := s.AddFavorite(ctx, "u1", recipe); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if _, err := s.AddFavorite(ctx, "u1", domain.Recipe{Title: "x"}); !errors.Is(err, ErrInvalidRecipe) {
		t.Errorf("expected ErrInvalidRecipe, got %v", err)
	}

	favs, _ := s.Favorites(ctx, "u1")
	if len(favs) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(favs))
	}
	if err := s.RemoveFavorite(ctx, "u1", fav.ID); err != nil {
		t.Errorf("RemoveFavorite failed: %v", err)
	}
	if err := s.RemoveFavorite(ctx, "u1", fav.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistory_LimitClamp(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestService(&fakeGenerator{}, nil)
	for i := 0; i < MaxHistoryLimit+5; i++ {
		_ = mem.Store().History.Append(ctx, &domain.HistoryEntry{UserID: "u1", Kind: domain.HistoryGenerate})
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultHistoryLimit},
		{-1, DefaultHistoryLimit},
		{5, 5},
		{1000, MaxHistoryLimit},
	}
	for _, tt := range tests {
		got, err := s.History(ctx, "u1", tt.limit)
		if err != nil || len(got) != tt.want {
			t.Errorf("limit %d: got %d entries (%v), want %d", tt.limit, len(got), err, tt.want)
		}
	}
}

func TestStreak_Lapsed(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestService(&fakeGenerator{}, nil)

	got, err := s.Streak(ctx, "u1")
	if err != nil || got.Current != 0 {
		t.Fatalf("expected empty streak, got %+v (%v)", got, err)
	}

	_ = mem.Store().Streaks.Save(ctx, &domain.Streak{
		UserID:     "u1",
		Current:    4,
		Longest:    6,
		LastActive: fixedNow.AddDate(0, 0, -3),
	})
	got, _ = s.Streak(ctx, "u1")
	if got.Current != 0 || got.Longest != 6 {
		t.Errorf("expected lapsed streak, got %+v", got)
	}

	_ = mem.Store().Streaks.Save(ctx, &domain.Streak{
		UserID:     "u1",
		Current:    4,
		Longest:    6,
		LastActive: fixedNow.AddDate(0, 0, -1),
	})
	got, _ = s.Streak(ctx, "u1")
	if got.Current != 4 {
		t.Errorf("streak from yesterday is still alive, got %+v", got)
	}
}
