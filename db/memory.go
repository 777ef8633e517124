package db

import (
	"context"
	"sort"
	"sync"

	"potluck/models"
)

// MemoryRecipeStore keeps recipes in process. It honours the same version
// semantics as the Mongo store and is used by tests.
type MemoryRecipeStore struct {
	mu      sync.Mutex
	recipes map[string]*models.Recipe
}

func NewMemoryRecipeStore() *MemoryRecipeStore {
	return &MemoryRecipeStore{recipes: make(map[string]*models.Recipe)}
}

func (s *MemoryRecipeStore) FindByID(_ context.Context, id string) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryRecipeStore) FindVisibleTo(_ context.Context, userID string, offset, limit int64) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Recipe{}
	for _, r := range s.recipes {
		c, _ := r.Collaborator(userID)
		if r.Owner == userID || c != nil || r.IsPublic {
			out = append(out, *r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= int64(len(out)) {
			return []models.Recipe{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryRecipeStore) Insert(_ context.Context, r *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[r.ID]; ok {
		return ErrDuplicate
	}
	if r.Version == 0 {
		r.Version = 1
	}
	s.recipes[r.ID] = r.Clone()
	return nil
}

func (s *MemoryRecipeStore) Save(_ context.Context, r *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.recipes[r.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != r.Version {
		return ErrVersionConflict
	}
	next := r.Clone()
	next.Version++
	s.recipes[r.ID] = next
	r.Version = next.Version
	return nil
}

func (s *MemoryRecipeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

type MemoryUserStore struct {
	mu      sync.Mutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	if _, ok := s.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := s.byID[u.ID]; ok {
		return ErrDuplicate
	}
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}
