package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"potluck/models"
	"potluck/rdx"
)

type countingStore struct {
	RecipeStore
	finds int
	// afterFind runs once between loading a recipe and returning it.
	afterFind func()
}

func (s *countingStore) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	s.finds++
	r, err := s.RecipeStore.FindByID(ctx, id)
	if hook := s.afterFind; hook != nil {
		s.afterFind = nil
		hook()
	}
	return r, err
}

func newCachedStore() (*CachedRecipeStore, *countingStore, *rdx.MemoryCache) {
	backing := &countingStore{RecipeStore: NewMemoryRecipeStore()}
	cache := rdx.NewMemoryCache()
	return NewCachedRecipeStore(backing, cache, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), backing, cache
}

func TestCachedRecipeStore(t *testing.T) {
	ctx := context.Background()
	s, backing, cache := newCachedStore()

	created := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	if err := s.Insert(ctx, newRecipe("r1", "alice", true, created)); err != nil {
		t.Fatal(err)
	}

	first, err := s.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	second, err := s.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if backing.finds != 1 {
		t.Errorf("backing finds = %d, want 1 (second read should hit cache)", backing.finds)
	}
	if second.Title != first.Title || second.Version != first.Version || !second.CreatedAt.Equal(created) {
		t.Errorf("cached recipe = %+v, want %+v", second, first)
	}

	second.Title = "renamed"
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if raw, _, _ := cache.Get(ctx, recipeKey("r1")); string(raw) != string(staleMarker) {
		t.Errorf("after Save cache holds %s, want the stale marker", raw)
	}

	third, _ := s.FindByID(ctx, "r1")
	if third.Title != "renamed" || third.Version != 2 {
		t.Errorf("after Save FindByID() = %q v%d, want renamed v2", third.Title, third.Version)
	}

	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.FindByID(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() after Delete error = %v, want ErrNotFound", err)
	}
}

func TestCachedRecipeStore_ReadRacingSave(t *testing.T) {
	ctx := context.Background()
	s, backing, _ := newCachedStore()
	created := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	if err := s.Insert(ctx, newRecipe("r1", "alice", true, created)); err != nil {
		t.Fatal(err)
	}

	// The reader loads version 1, then a writer saves version 2 before the
	// reader gets to populate the cache.
	backing.afterFind = func() {
		fresh, err := backing.RecipeStore.FindByID(ctx, "r1")
		if err != nil {
			t.Error(err)
			return
		}
		fresh.IsPublic = false
		if err := s.Save(ctx, fresh); err != nil {
			t.Errorf("Save() error = %v", err)
		}
	}
	stale, err := s.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stale.Version != 1 {
		t.Fatalf("racing read version = %d, want 1", stale.Version)
	}

	got, err := s.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Version != 2 || got.IsPublic {
		t.Errorf("FindByID() after racing save = v%d public=%v, want v2 private", got.Version, got.IsPublic)
	}
}

func TestCachedRecipeStore_DeleteBlocksStaleRepopulate(t *testing.T) {
	ctx := context.Background()
	s, backing, _ := newCachedStore()
	created := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	if err := s.Insert(ctx, newRecipe("r1", "alice", true, created)); err != nil {
		t.Fatal(err)
	}

	backing.afterFind = func() {
		if err := s.Delete(ctx, "r1"); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
	}
	if _, err := s.FindByID(ctx, "r1"); err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if _, err := s.FindByID(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() after racing delete error = %v, want ErrNotFound", err)
	}
}
