package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

func TestProfileRepo_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepo(NewMemoryStorage())

	if _, err := repo.Get(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &domain.Profile{UserID: "u1", DisplayName: "Ana", CreatedAt: created}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Update without CreatedAt keeps the original
	if err := repo.Save(ctx, &domain.Profile{UserID: "u1", DisplayName: "Ana B"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DisplayName != "Ana B" || !got.CreatedAt.Equal(created) {
		t.Errorf("unexpected profile %+v", got)
	}

	// Returned value is a copy
	got.DisplayName = "mutated"
	again, _ := repo.Get(ctx, "u1")
	if again.DisplayName != "Ana B" {
		t.Error("repository returned an aliased profile")
	}
}

func TestFavoriteRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewFavoriteRepo(NewMemoryStorage())
	now := time.Now()

	older := &domain.Favorite{ID: "f1", UserID: "u1", Recipe: domain.Recipe{ID: "r1"}, CreatedAt: now.Add(-time.Hour)}
	newer := &domain.Favorite{ID: "f2", UserID: "u1", Recipe: domain.Recipe{ID: "r2"}, CreatedAt: now}

	if err := repo.Add(ctx, older); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := repo.Add(ctx, newer); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := repo.Add(ctx, &domain.Favorite{ID: "f3", UserID: "u1", Recipe: domain.Recipe{ID: "r1"}}); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	favs, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(favs) != 2 || favs[0].ID != "f2" || favs[1].ID != "f1" {
		t.Errorf("expected newest first, got %+v", favs)
	}

	if err := repo.Delete(ctx, "u2", "f1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleting another user's favorite should fail, got %v", err)
	}
	if err := repo.Delete(ctx, "u1", "f1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	favs, _ = repo.List(ctx, "u1")
	if len(favs) != 1 {
		t.Errorf("expected 1 favorite after delete, got %d", len(favs))
	}
}

func TestHistoryRepo_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepo(NewMemoryStorage())

	for _, id := range []string{"h1", "h2", "h3"} {
		if err := repo.Append(ctx, &domain.HistoryEntry{ID: id, UserID: "u1", Kind: domain.HistoryGenerate}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := repo.List(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "h3" || entries[1].ID != "h2" {
		t.Errorf("unexpected entries %+v", entries)
	}

	all, _ := repo.List(ctx, "u1", 0)
	if len(all) != 3 {
		t.Errorf("expected 3 entries without limit, got %d", len(all))
	}
}

func TestHistoryRepo_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepo(NewMemoryStorage())
	now := time.Now()

	_ = repo.Append(ctx, &domain.HistoryEntry{ID: "old", UserID: "u1", CreatedAt: now.Add(-48 * time.Hour)})
	_ = repo.Append(ctx, &domain.HistoryEntry{ID: "new", UserID: "u1", CreatedAt: now})
	_ = repo.Append(ctx, &domain.HistoryEntry{ID: "other", UserID: "u2", CreatedAt: now.Add(-72 * time.Hour)})

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil || deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d (%v)", deleted, err)
	}
	if left, _ := repo.List(ctx, "u1", 0); len(left) != 1 || left[0].ID != "new" {
		t.Errorf("unexpected remaining entries %+v", left)
	}
	if left, _ := repo.List(ctx, "u2", 0); len(left) != 0 {
		t.Errorf("expected u2 history to be empty, got %d", len(left))
	}
}

func TestStreakRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewStreakRepo(NewMemoryStorage())

	if _, err := repo.Get(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, &domain.Streak{UserID: "u1", Current: 2, Longest: 5}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s, err := repo.Get(ctx, "u1")
	if err != nil || s.Current != 2 || s.Longest != 5 {
		t.Errorf("unexpected streak %+v, err=%v", s, err)
	}
}

func TestRecipeCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewRecipeCache(time.Minute)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []domain.Recipe{{ID: "r1", Title: "Omelette"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || len(got) != 1 || got[0].Title != "Omelette" {
		t.Fatalf("expected hit, got %v %v %v", got, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected miss after ttl")
	}
}

func TestRecipeCache_SetSweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewRecipeCache(time.Minute)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "stale-1", []domain.Recipe{{ID: "r1"}})
	_ = c.Set(ctx, "stale-2", []domain.Recipe{{ID: "r2"}})

	now = now.Add(2 * time.Minute)
	if err := c.Set(ctx, "fresh", []domain.Recipe{{ID: "r3"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if len(c.entries) != 1 {
		t.Errorf("expected only the fresh entry, got %d entries", len(c.entries))
	}
	if _, ok := c.entries["fresh"]; !ok {
		t.Error("fresh entry missing")
	}
}

func TestQuota_DailyLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	q := NewQuota(2)
	q.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		ok, err := q.Allow(ctx, "u1")
		if err != nil || ok != want {
			t.Errorf("call %d: got %v (%v), want %v", i+1, ok, err, want)
		}
	}
	if ok, _ := q.Allow(ctx, "u2"); !ok {
		t.Error("quota must be per user")
	}

	now = now.AddDate(0, 0, 1)
	if ok, _ := q.Allow(ctx, "u1"); !ok {
		t.Error("quota must reset on the next day")
	}

	unlimited := NewQuota(0)
	for i := 0; i < 100; i++ {
		if ok, _ := unlimited.Allow(ctx, "u1"); !ok {
			t.Fatal("limit 0 must disable the quota")
		}
	}
}

func TestQuota_Refund(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	q := NewQuota(1)
	q.now = func() time.Time { return now }

	if ok, _ := q.Allow(ctx, "u1"); !ok {
		t.Fatal("first call must be allowed")
	}
	if err := q.Refund(ctx, "u1"); err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if ok, _ := q.Allow(ctx, "u1"); !ok {
		t.Error("refunded unit should be usable again")
	}
	if ok, _ := q.Allow(ctx, "u1"); ok {
		t.Error("limit must still apply after a refund")
	}

	// Extra refunds never go below zero
	_ = q.Refund(ctx, "u2")
	_ = q.Refund(ctx, "u2")
	if ok, _ := q.Allow(ctx, "u2"); !ok {
		t.Fatal("first call must be allowed")
	}
	if ok, _ := q.Allow(ctx, "u2"); ok {
		t.Error("over-refunding must not raise the limit")
	}
}
