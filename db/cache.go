package db

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"potluck/models"
	"potluck/rdx"
)

// writeHoldoff is how long a written recipe stays uncacheable. A reader
// that loaded the previous version before the write cannot repopulate the
// cache until it expires.
const writeHoldoff = 5 * time.Second

var staleMarker = []byte("stale")

// CachedRecipeStore is a read-through cache in front of a RecipeStore.
// Readers only populate an absent key. Writes go to the backing store first
// and then replace the cached copy with a short-lived stale marker.
// Cache failures are logged and never fail the call.
type CachedRecipeStore struct {
	next   RecipeStore
	cache  rdx.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedRecipeStore(next RecipeStore, cache rdx.Cache, ttl time.Duration, logger *slog.Logger) *CachedRecipeStore {
	return &CachedRecipeStore{next: next, cache: cache, ttl: ttl, logger: logger}
}

func recipeKey(id string) string {
	return "recipe:" + id
}

func (s *CachedRecipeStore) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	key := recipeKey(id)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("recipe cache read failed", "recipe_id", id, "error", err)
	} else if ok && !bytes.Equal(raw, staleMarker) {
		var recipe models.Recipe
		if err := json.Unmarshal(raw, &recipe); err == nil {
			return &recipe, nil
		}
		s.evict(ctx, id)
	}

	recipe, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(recipe); err == nil {
		if _, err := s.cache.SetNX(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn("recipe cache write failed", "recipe_id", id, "error", err)
		}
	}
	return recipe, nil
}

func (s *CachedRecipeStore) FindVisibleTo(ctx context.Context, userID string, offset, limit int64) ([]models.Recipe, error) {
	return s.next.FindVisibleTo(ctx, userID, offset, limit)
}

func (s *CachedRecipeStore) Insert(ctx context.Context, r *models.Recipe) error {
	return s.next.Insert(ctx, r)
}

func (s *CachedRecipeStore) Save(ctx context.Context, r *models.Recipe) error {
	err := s.next.Save(ctx, r)
	s.invalidate(ctx, r.ID)
	return err
}

func (s *CachedRecipeStore) Delete(ctx context.Context, id string) error {
	err := s.next.Delete(ctx, id)
	s.invalidate(ctx, id)
	return err
}

func (s *CachedRecipeStore) invalidate(ctx context.Context, id string) {
	holdoff := writeHoldoff
	if s.ttl > 0 && s.ttl < holdoff {
		holdoff = s.ttl
	}
	if err := s.cache.Set(ctx, recipeKey(id), staleMarker, holdoff); err != nil {
		s.logger.Warn("recipe cache invalidate failed", "recipe_id", id, "error", err)
		s.evict(ctx, id)
	}
}

func (s *CachedRecipeStore) evict(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, recipeKey(id)); err != nil {
		s.logger.Warn("recipe cache evict failed", "recipe_id", id, "error", err)
	}
}
