// Package proposals manages suggested edits: filing them against a recipe
// and reviewing them.
package proposals

import (
	"context"
	"log/slog"

	"potluck/access"
	"potluck/apperr"
	"potluck/db"
	"potluck/models"
	"potluck/mq"
	"potluck/utils"
)

type Engine struct {
	store  db.RecipeStore
	clock  utils.Clock
	ids    utils.IDGenerator
	events mq.Emitter
	logger *slog.Logger
}

func NewEngine(store db.RecipeStore, clock utils.Clock, ids utils.IDGenerator, events mq.Emitter, logger *slog.Logger) *Engine {
	return &Engine{store: store, clock: clock, ids: ids, events: events, logger: logger}
}

// Propose files changes as a pending edit by actorID and persists r. The
// caller has already decided actorID may only suggest; no authorization is
// checked here. On success r reflects the stored document.
func (e *Engine) Propose(ctx context.Context, r *models.Recipe, actorID string, changes models.RecipePatch) (*models.PendingEdit, error) {
	if changes.IsPublic != nil {
		return nil, apperr.New(apperr.Invalid, "suggested edits cannot change visibility")
	}
	if err := changes.Normalize(); err != nil {
		return nil, err
	}

	edit := models.PendingEdit{
		ID:         e.ids.New(),
		ProposedBy: actorID,
		Changes:    changes.Clone(),
		Status:     models.EditPending,
		CreatedAt:  e.clock.Now(),
	}

	next := r.Clone()
	next.PendingEdits = append(next.PendingEdits, edit)
	if err := e.store.Save(ctx, next); err != nil {
		return nil, db.AppError(err, "recipe")
	}
	*r = *next

	e.logger.InfoContext(ctx, "edit proposed", "recipe_id", r.ID, "edit_id", edit.ID, "actor_id", actorID, "fields", changes.Fields())
	mq.Notify(ctx, e.events, e.logger, mq.Event{
		Name:     mq.EditProposed,
		RecipeID: r.ID,
		ActorID:  actorID,
		Data:     map[string]string{"editId": edit.ID},
		At:       edit.CreatedAt,
	})
	return r.PendingEdit(edit.ID), nil
}

// Review approves or rejects a pending edit. Only the owner may review, and
// an edit is reviewed exactly once. Approval merges the stored changes into
// the recipe; rejection only records the outcome. The store's version check
// makes a concurrent second review fail with Conflict instead of applying
// twice. On failure r is left untouched.
func (e *Engine) Review(ctx context.Context, r *models.Recipe, reviewerID, editID string, decision models.EditStatus) (*models.Recipe, error) {
	if !access.CanReview(r, reviewerID) {
		return nil, apperr.New(apperr.Forbidden, "only the recipe owner can review edits")
	}
	if decision != models.EditApproved && decision != models.EditRejected {
		return nil, apperr.Newf(apperr.Invalid, "status must be %q or %q", models.EditApproved, models.EditRejected)
	}

	current := r.PendingEdit(editID)
	if current == nil {
		return nil, apperr.New(apperr.NotFound, "pending edit not found")
	}
	if current.Status != models.EditPending {
		return nil, apperr.Newf(apperr.Conflict, "edit was already %s", current.Status)
	}

	now := e.clock.Now()
	next := r.Clone()
	edit := next.PendingEdit(editID)
	if decision == models.EditApproved {
		ApplyPatch(next, edit.Changes)
		next.UpdatedAt = now
	}
	edit.Status = decision
	edit.ReviewedBy = reviewerID
	edit.ReviewedAt = &now

	if err := e.store.Save(ctx, next); err != nil {
		return nil, db.AppError(err, "recipe")
	}
	*r = *next

	e.logger.InfoContext(ctx, "edit reviewed", "recipe_id", r.ID, "edit_id", editID, "status", decision)
	mq.Notify(ctx, e.events, e.logger, mq.Event{
		Name:     mq.EditReviewed,
		RecipeID: r.ID,
		ActorID:  reviewerID,
		Data:     map[string]string{"editId": editID, "status": string(decision), "proposedBy": edit.ProposedBy},
		At:       now,
	})
	return r, nil
}
