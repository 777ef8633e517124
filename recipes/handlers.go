package recipes

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"potluck/access"
	"potluck/apperr"
	"potluck/models"
	"potluck/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	utils.RespondWithAppError(w, h.logger, err)
}

// CreateRecipe handles POST /api/v1/recipes.
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in models.NewRecipe
	if err := utils.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	recipe, err := h.svc.Create(r.Context(), utils.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, recipe)
}

// GetRecipes handles GET /api/v1/recipes?offset=&limit=.
func (h *Handler) GetRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	offset, err := strconv.ParseInt(q.Get("offset"), 10, 64)
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.ParseInt(q.Get("limit"), 10, 64)
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	recipes, err := h.svc.List(r.Context(), utils.GetUserIDFromContext(r.Context()), offset, limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, recipes)
}

// GetRecipe handles GET /api/v1/recipes/:id, optionally scaled with
// ?servings=N.
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	recipe, err := h.svc.Get(r.Context(), utils.GetUserIDFromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if raw := r.URL.Query().Get("servings"); raw != "" {
		servings, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, apperr.New(apperr.Invalid, "servings must be a whole number"))
			return
		}
		if recipe, err = Scale(recipe, servings); err != nil {
			h.fail(w, err)
			return
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, recipe)
}

// UpdateRecipe handles PATCH /api/v1/recipes/:id.
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var changes models.RecipePatch
	if err := utils.DecodeJSON(r, &changes); err != nil {
		h.fail(w, err)
		return
	}
	res, err := h.svc.Update(r.Context(), utils.GetUserIDFromContext(r.Context()), ps.ByName("id"), changes)
	if err != nil {
		h.fail(w, err)
		return
	}
	if res.Decision == access.Suggest {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"message": "Edit suggestion submitted for owner approval",
			"status":  models.EditPending,
			"edit":    res.Edit,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res.Recipe)
}

// DeleteRecipe handles DELETE /api/v1/recipes/:id.
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Delete(r.Context(), utils.GetUserIDFromContext(r.Context()), ps.ByName("id")); err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Recipe deleted successfully"})
}

// GetPendingEdits handles GET /api/v1/recipes/:id/pending-edits?status=.
func (h *Handler) GetPendingEdits(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	status := models.EditStatus(r.URL.Query().Get("status"))
	edits, err := h.svc.PendingEdits(r.Context(), utils.GetUserIDFromContext(r.Context()), ps.ByName("id"), status)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, edits)
}

// SuggestEdit handles POST /api/v1/recipes/:id/pending-edits.
func (h *Handler) SuggestEdit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var changes models.RecipePatch
	if err := utils.DecodeJSON(r, &changes); err != nil {
		h.fail(w, err)
		return
	}
	edit, err := h.svc.Suggest(r.Context(), utils.GetUserIDFromContext(r.Context()), ps.ByName("id"), changes)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Edit suggestion submitted for approval",
		"status":  models.EditPending,
		"edit":    edit,
	})
}

type reviewRequest struct {
	Status models.EditStatus `json:"status"`
}

// ReviewEdit handles POST /api/v1/recipes/:id/pending-edits/:editid/review.
func (h *Handler) ReviewEdit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req reviewRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	recipe, err := h.svc.Review(r.Context(), utils.GetUserIDFromContext(r.Context()), ps.ByName("id"), ps.ByName("editid"), req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Edit suggestion " + string(req.Status),
		"recipe":  recipe,
	})
}
