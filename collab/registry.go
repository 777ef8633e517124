// Package collab manages who collaborates on a recipe and at what level.
package collab

import (
	"context"
	"errors"
	"log/slog"

	"potluck/access"
	"potluck/apperr"
	"potluck/db"
	"potluck/models"
	"potluck/mq"
	"potluck/utils"
)

type Registry struct {
	recipes     db.RecipeStore
	users       db.UserStore
	clock       utils.Clock
	defaultPerm models.Permission
	events      mq.Emitter
	logger      *slog.Logger
}

// NewRegistry returns a registry granting defaultPerm on invite. An invalid
// level falls back to models.DefaultPermission.
func NewRegistry(recipes db.RecipeStore, users db.UserStore, clock utils.Clock, defaultPerm models.Permission, events mq.Emitter, logger *slog.Logger) *Registry {
	if !defaultPerm.Valid() {
		defaultPerm = models.DefaultPermission
	}
	return &Registry{
		recipes:     recipes,
		users:       users,
		clock:       clock,
		defaultPerm: defaultPerm,
		events:      events,
		logger:      logger,
	}
}

func (g *Registry) DefaultPermission() models.Permission {
	return g.defaultPerm
}

// Invite adds targetUserID as a collaborator with the default permission.
func (g *Registry) Invite(ctx context.Context, r *models.Recipe, inviterID, targetUserID string) (*models.Collaborator, error) {
	if err := access.RequireOwner(r, inviterID, "invite collaborators"); err != nil {
		return nil, err
	}
	if r.IsOwner(targetUserID) {
		return nil, apperr.New(apperr.Invalid, "the owner cannot be invited to their own recipe")
	}
	if c, _ := r.Collaborator(targetUserID); c != nil {
		return nil, apperr.New(apperr.AlreadyCollaborator, "user is already a collaborator")
	}
	if _, err := g.users.FindByID(ctx, targetUserID); err != nil {
		return nil, lookupError(err)
	}

	now := g.clock.Now()
	next := r.Clone()
	next.Collaborators = append(next.Collaborators, models.Collaborator{
		UserID:     targetUserID,
		Permission: g.defaultPerm,
		AddedAt:    now,
	})
	next.UpdatedAt = now
	if err := g.save(ctx, r, next); err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "collaborator invited", "recipe_id", r.ID, "user_id", targetUserID, "permission", g.defaultPerm)
	g.notify(ctx, mq.CollaboratorInvited, r, inviterID, targetUserID, g.defaultPerm)
	c, _ := r.Collaborator(targetUserID)
	return c, nil
}

// InviteByEmail resolves email to a user and invites them.
func (g *Registry) InviteByEmail(ctx context.Context, r *models.Recipe, inviterID, email string) (*models.Collaborator, error) {
	if err := access.RequireOwner(r, inviterID, "invite collaborators"); err != nil {
		return nil, err
	}
	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err)
	}
	return g.Invite(ctx, r, inviterID, user.ID)
}

// Remove drops targetUserID from the recipe's collaborators.
func (g *Registry) Remove(ctx context.Context, r *models.Recipe, removerID, targetUserID string) error {
	if err := access.RequireOwner(r, removerID, "remove collaborators"); err != nil {
		return err
	}
	_, idx := r.Collaborator(targetUserID)
	if idx < 0 {
		return apperr.New(apperr.NotFound, "user is not a collaborator")
	}

	next := r.Clone()
	next.Collaborators = append(next.Collaborators[:idx], next.Collaborators[idx+1:]...)
	next.UpdatedAt = g.clock.Now()
	if err := g.save(ctx, r, next); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "collaborator removed", "recipe_id", r.ID, "user_id", targetUserID)
	g.notify(ctx, mq.CollaboratorRemoved, r, removerID, targetUserID, "")
	return nil
}

// SetPermission changes the level of an existing collaborator.
func (g *Registry) SetPermission(ctx context.Context, r *models.Recipe, setterID, targetUserID string, level models.Permission) error {
	if err := access.RequireOwner(r, setterID, "change collaborator permissions"); err != nil {
		return err
	}
	if !level.Valid() {
		return apperr.Newf(apperr.Invalid, "permission must be %q or %q", models.PermissionEdit, models.PermissionSuggest)
	}
	_, idx := r.Collaborator(targetUserID)
	if idx < 0 {
		return apperr.New(apperr.NotFound, "user is not a collaborator")
	}

	next := r.Clone()
	next.Collaborators[idx].Permission = level
	next.UpdatedAt = g.clock.Now()
	if err := g.save(ctx, r, next); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "collaborator permission changed", "recipe_id", r.ID, "user_id", targetUserID, "permission", level)
	g.notify(ctx, mq.CollaboratorPermissionChanged, r, setterID, targetUserID, level)
	return nil
}

// save persists next and, on success only, copies it into r.
func (g *Registry) save(ctx context.Context, r, next *models.Recipe) error {
	if err := g.recipes.Save(ctx, next); err != nil {
		return db.AppError(err, "recipe")
	}
	*r = *next
	return nil
}

func (g *Registry) notify(ctx context.Context, name string, r *models.Recipe, actorID, targetUserID string, level models.Permission) {
	data := map[string]string{"userId": targetUserID}
	if level != "" {
		data["permission"] = string(level)
	}
	mq.Notify(ctx, g.events, g.logger, mq.Event{
		Name:     name,
		RecipeID: r.ID,
		ActorID:  actorID,
		Data:     data,
		At:       r.UpdatedAt,
	})
}

func lookupError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return apperr.Wrap(apperr.Internal, "looking up user", err)
}
