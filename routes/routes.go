package routes

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"potluck/auth"
	"potluck/collaboration"
	"potluck/middleware"
	"potluck/ratelim"
	"potluck/recipes"
)

// Handlers bundles everything the routes need.
type Handlers struct {
	Auth          *auth.Handler
	Recipes       *recipes.Handler
	Collaboration *collaboration.Handler
	Authenticator *middleware.Authenticator
	RateLimiter   *ratelim.RateLimiter
}

func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// New builds the router with every route registered.
func New(h Handlers) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	AddAuthRoutes(router, h)
	AddRecipeRoutes(router, h)
	AddCollaborationRoutes(router, h)
	return router
}

func AddAuthRoutes(router *httprouter.Router, h Handlers) {
	router.POST("/api/v1/auth/register", h.RateLimiter.Limit(h.Auth.Register))
	router.POST("/api/v1/auth/login", h.RateLimiter.Limit(h.Auth.Login))
	router.GET("/api/v1/auth/me", h.Authenticator.Authenticate(h.Auth.Me))
}

func AddRecipeRoutes(router *httprouter.Router, h Handlers) {
	authn := h.Authenticator.Authenticate
	limit := h.RateLimiter.Limit

	router.GET("/api/v1/recipes", authn(h.Recipes.GetRecipes))
	router.POST("/api/v1/recipes", limit(authn(h.Recipes.CreateRecipe)))
	router.GET("/api/v1/recipes/:id", authn(h.Recipes.GetRecipe))
	router.PATCH("/api/v1/recipes/:id", limit(authn(h.Recipes.UpdateRecipe)))
	router.DELETE("/api/v1/recipes/:id", limit(authn(h.Recipes.DeleteRecipe)))

	router.GET("/api/v1/recipes/:id/pending-edits", authn(h.Recipes.GetPendingEdits))
	router.POST("/api/v1/recipes/:id/pending-edits", limit(authn(h.Recipes.SuggestEdit)))
	router.POST("/api/v1/recipes/:id/pending-edits/:editid/review", limit(authn(h.Recipes.ReviewEdit)))
}

func AddCollaborationRoutes(router *httprouter.Router, h Handlers) {
	authn := h.Authenticator.Authenticate
	limit := h.RateLimiter.Limit

	router.POST("/api/v1/collaboration/invite", limit(authn(h.Collaboration.InviteCollaborator)))
	router.POST("/api/v1/collaboration/remove", limit(authn(h.Collaboration.RemoveCollaborator)))
	router.PATCH("/api/v1/collaboration/permissions", limit(authn(h.Collaboration.UpdatePermissions)))
}
