// Package collaboration exposes the collaborator registry over HTTP.
package collaboration

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"potluck/apperr"
	"potluck/collab"
	"potluck/db"
	"potluck/models"
	"potluck/utils"
)

type Handler struct {
	recipes  db.RecipeStore
	registry *collab.Registry
	logger   *slog.Logger
}

func NewHandler(recipes db.RecipeStore, registry *collab.Registry, logger *slog.Logger) *Handler {
	return &Handler{recipes: recipes, registry: registry, logger: logger}
}

type inviteRequest struct {
	RecipeID string `json:"recipeId"`
	Email    string `json:"email"`
}

type removeRequest struct {
	RecipeID string `json:"recipeId"`
	UserID   string `json:"userId"`
}

type permissionsRequest struct {
	RecipeID    string `json:"recipeId"`
	UserID      string `json:"userId"`
	Permissions string `json:"permissions"`
}

func (h *Handler) loadRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.New(apperr.Invalid, "recipeId is required")
	}
	r, err := h.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, db.AppError(err, "recipe")
	}
	return r, nil
}

// InviteCollaborator handles POST /api/v1/collaboration/invite.
func (h *Handler) InviteCollaborator(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req inviteRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		utils.RespondWithAppError(w, h.logger, apperr.New(apperr.Invalid, "email is required"))
		return
	}
	recipe, err := h.loadRecipe(r.Context(), req.RecipeID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	c, err := h.registry.InviteByEmail(r.Context(), recipe, utils.GetUserIDFromContext(r.Context()), req.Email)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "Collaborator invited successfully",
		"collaborator": c,
	})
}

// RemoveCollaborator handles POST /api/v1/collaboration/remove.
func (h *Handler) RemoveCollaborator(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req removeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	recipe, err := h.loadRecipe(r.Context(), req.RecipeID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	if err := h.registry.Remove(r.Context(), recipe, utils.GetUserIDFromContext(r.Context()), req.UserID); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Collaborator removed successfully"})
}

// UpdatePermissions handles PATCH /api/v1/collaboration/permissions.
func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req permissionsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	level, err := models.ParsePermission(req.Permissions)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	recipe, err := h.loadRecipe(r.Context(), req.RecipeID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	if err := h.registry.SetPermission(r.Context(), recipe, utils.GetUserIDFromContext(r.Context()), req.UserID, level); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Permissions updated successfully"})
}
