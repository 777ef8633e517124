// Package recipes serves recipe documents and routes update requests to a
// direct save or a suggested edit depending on who is asking.
package recipes

import (
	"context"
	"log/slog"

	"potluck/access"
	"potluck/apperr"
	"potluck/db"
	"potluck/models"
	"potluck/mq"
	"potluck/proposals"
	"potluck/utils"
)

type Service struct {
	store  db.RecipeStore
	engine *proposals.Engine
	clock  utils.Clock
	ids    utils.IDGenerator
	events mq.Emitter
	logger *slog.Logger
}

func NewService(store db.RecipeStore, engine *proposals.Engine, clock utils.Clock, ids utils.IDGenerator, events mq.Emitter, logger *slog.Logger) *Service {
	return &Service{store: store, engine: engine, clock: clock, ids: ids, events: events, logger: logger}
}

// UpdateResult reports how an update request was handled. Edit is set only
// for suggestions.
type UpdateResult struct {
	Decision access.Decision
	Recipe   *models.Recipe
	Edit     *models.PendingEdit
}

func (s *Service) load(ctx context.Context, id string) (*models.Recipe, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, db.AppError(err, "recipe")
	}
	return r, nil
}

func (s *Service) Create(ctx context.Context, actorID string, in models.NewRecipe) (*models.Recipe, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	r := &models.Recipe{
		ID:            s.ids.New(),
		Title:         in.Title,
		Description:   in.Description,
		Servings:      in.Servings,
		PrepTime:      in.PrepTime,
		CookTime:      in.CookTime,
		IsPublic:      in.IsPublic,
		Ingredients:   in.Ingredients,
		Steps:         in.Steps,
		Owner:         actorID,
		Collaborators: []models.Collaborator{},
		PendingEdits:  []models.PendingEdit{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Insert(ctx, r); err != nil {
		return nil, db.AppError(err, "recipe")
	}
	s.logger.InfoContext(ctx, "recipe created", "recipe_id", r.ID, "owner", actorID)
	return r, nil
}

// Get returns the recipe if actorID may see it.
func (s *Service) Get(ctx context.Context, actorID, id string) (*models.Recipe, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(r, actorID) {
		return nil, apperr.New(apperr.Forbidden, "not authorized to view this recipe")
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, actorID string, offset, limit int64) ([]models.Recipe, error) {
	recipes, err := s.store.FindVisibleTo(ctx, actorID, offset, limit)
	if err != nil {
		return nil, db.AppError(err, "recipe")
	}
	return recipes, nil
}

// Update applies changes directly for the owner and edit collaborators,
// files them as a pending edit for anyone else on a public recipe, and
// refuses otherwise.
func (s *Service) Update(ctx context.Context, actorID, id string, changes models.RecipePatch) (*UpdateResult, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := access.Classify(r, actorID, changes)
	switch decision {
	case access.Direct:
		if err := changes.Normalize(); err != nil {
			return nil, err
		}
		next := r.Clone()
		proposals.ApplyPatch(next, changes)
		next.UpdatedAt = s.clock.Now()
		if err := s.store.Save(ctx, next); err != nil {
			return nil, db.AppError(err, "recipe")
		}

		s.logger.InfoContext(ctx, "recipe updated", "recipe_id", id, "actor_id", actorID, "fields", changes.Fields())
		mq.Notify(ctx, s.events, s.logger, mq.Event{
			Name:     mq.RecipeUpdated,
			RecipeID: id,
			ActorID:  actorID,
			At:       next.UpdatedAt,
		})
		return &UpdateResult{Decision: decision, Recipe: next}, nil

	case access.Suggest:
		edit, err := s.engine.Propose(ctx, r, actorID, changes)
		if err != nil {
			return nil, err
		}
		return &UpdateResult{Decision: decision, Recipe: r, Edit: edit}, nil

	default:
		return nil, apperr.New(apperr.Forbidden, "not authorized to edit this recipe")
	}
}

// Suggest files changes as a pending edit. Anyone who can see the recipe may
// suggest, including collaborators on a private recipe.
func (s *Service) Suggest(ctx context.Context, actorID, id string, changes models.RecipePatch) (*models.PendingEdit, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(r, actorID) {
		return nil, apperr.New(apperr.Forbidden, "not authorized to suggest edits to this recipe")
	}
	return s.engine.Propose(ctx, r, actorID, changes)
}

func (s *Service) Review(ctx context.Context, actorID, id, editID string, decision models.EditStatus) (*models.Recipe, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Review(ctx, r, actorID, editID, decision)
}

// PendingEdits lists edits on the recipe, optionally filtered by status.
// The owner sees every edit; anyone else only the ones they proposed.
func (s *Service) PendingEdits(ctx context.Context, actorID, id string, status models.EditStatus) ([]models.PendingEdit, error) {
	switch status {
	case "", models.EditPending, models.EditApproved, models.EditRejected:
	default:
		return nil, apperr.Newf(apperr.Invalid, "unknown status %q", status)
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(r, actorID) {
		return nil, apperr.New(apperr.Forbidden, "not authorized to view this recipe")
	}

	owner := access.CanReview(r, actorID)
	out := []models.PendingEdit{}
	for _, pe := range r.PendingEdits {
		if !owner && pe.ProposedBy != actorID {
			continue
		}
		if status != "" && pe.Status != status {
			continue
		}
		out = append(out, pe)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	r, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(r, actorID, "delete this recipe"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return db.AppError(err, "recipe")
	}

	s.logger.InfoContext(ctx, "recipe deleted", "recipe_id", id, "actor_id", actorID)
	mq.Notify(ctx, s.events, s.logger, mq.Event{
		Name:     mq.RecipeDeleted,
		RecipeID: id,
		ActorID:  actorID,
		At:       s.clock.Now(),
	})
	return nil
}
